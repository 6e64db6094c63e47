package store

import (
	"encoding/json"
	"time"

	"github.com/chantierpro/finance/internal/integration/domain"
)

// record is the backend-neutral form of a connection with sealed credentials.
type record struct {
	Provider    domain.Provider    `json:"provider"`
	Status      domain.SyncStatus  `json:"status"`
	Sealed      json.RawMessage    `json:"sealed"`
	ConnectedAt time.Time          `json:"connected_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	LastSyncAt  *time.Time         `json:"last_sync_at,omitempty"`
	LastError   string             `json:"last_error,omitempty"`
	LastResult  *domain.SyncResult `json:"last_result,omitempty"`
}

func seal(s *Sealer, conn domain.Connection) (record, error) {
	sealed, err := s.Seal(conn.Provider, conn.Config)
	if err != nil {
		return record{}, err
	}
	return record{
		Provider:    conn.Provider,
		Status:      conn.Status,
		Sealed:      sealed,
		ConnectedAt: conn.ConnectedAt,
		UpdatedAt:   conn.UpdatedAt,
		LastSyncAt:  conn.LastSyncAt,
		LastError:   conn.LastError,
		LastResult:  conn.LastResult,
	}, nil
}

func open(s *Sealer, rec record) (domain.Connection, error) {
	config, err := s.Open(rec.Provider, rec.Sealed)
	if err != nil {
		return domain.Connection{}, err
	}
	return domain.Connection{
		Provider:    rec.Provider,
		Status:      rec.Status,
		Config:      config,
		ConnectedAt: rec.ConnectedAt,
		UpdatedAt:   rec.UpdatedAt,
		LastSyncAt:  rec.LastSyncAt,
		LastError:   rec.LastError,
		LastResult:  rec.LastResult,
	}, nil
}
