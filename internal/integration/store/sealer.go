package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chantierpro/finance/internal/integration/domain"
	"golang.org/x/crypto/chacha20poly1305"
)

const sealedVersion = 1

type sealedPayload struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Sealer encrypts provider credentials with XChaCha20-Poly1305. The provider
// name is bound as additional data so a payload cannot be moved between
// providers.
type Sealer struct {
	key []byte
}

func NewSealer(secret string) (*Sealer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, domain.ErrEncryptionKeyMissing
	}
	sum := sha256.Sum256([]byte(secret))
	return &Sealer{key: sum[:]}, nil
}

// NewEphemeralSealer uses a random key that lives as long as the process.
func NewEphemeralSealer() (*Sealer, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return &Sealer{key: key}, nil
}

func (s *Sealer) Seal(provider domain.Provider, config map[string]any) ([]byte, error) {
	plaintext, err := json.Marshal(config)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, []byte(provider))
	return json.Marshal(sealedPayload{
		Version:    sealedVersion,
		Nonce:      base64.RawStdEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawStdEncoding.EncodeToString(ciphertext),
	})
}

func (s *Sealer) Open(provider domain.Provider, data []byte) (map[string]any, error) {
	var payload sealedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSealedPayload, err)
	}
	if payload.Version != sealedVersion {
		return nil, fmt.Errorf("%w: version %d", domain.ErrSealedPayload, payload.Version)
	}
	nonce, err := base64.RawStdEncoding.DecodeString(payload.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce", domain.ErrSealedPayload)
	}
	ciphertext, err := base64.RawStdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext", domain.ErrSealedPayload)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce size", domain.ErrSealedPayload)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(provider))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSealedPayload, err)
	}
	var config map[string]any
	if err := json.Unmarshal(plaintext, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSealedPayload, err)
	}
	return config, nil
}
