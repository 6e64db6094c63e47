package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "****cdef", MaskSecret("pk_live_abcdef"))
}

func TestMaskConfig(t *testing.T) {
	masked := MaskConfig(map[string]any{
		"login":      "acme-sarl",
		"secret_key": "0123456789abcdef",
		"iban":       "FR7630006000011234567890189",
		"options":    map[string]any{"token": "tok_123456789"},
		"retries":    3,
		" ":          "dropped",
	}, "login")

	assert.Equal(t, "acme-sarl", masked["login"])
	assert.Equal(t, "****cdef", masked["secret_key"])
	assert.Equal(t, "****0189", masked["iban"])
	assert.Equal(t, map[string]any{"token": "****6789"}, masked["options"])
	assert.Equal(t, 3, masked["retries"])
	assert.Len(t, masked, 5)

	assert.Nil(t, MaskConfig(nil))
}
