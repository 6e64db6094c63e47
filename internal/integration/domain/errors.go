package domain

import "errors"

var (
	ErrProviderNotFound     = errors.New("provider_not_found")
	ErrExportOnly           = errors.New("provider_export_only")
	ErrInvalidConfig        = errors.New("invalid_config")
	ErrNotConnected         = errors.New("not_connected")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnavailable          = errors.New("provider_unavailable")
	ErrPartialSync          = errors.New("partial_sync")
	ErrSyncInProgress       = errors.New("sync_in_progress")
	ErrEncryptionKeyMissing = errors.New("encryption_key_missing")
	ErrSealedPayload        = errors.New("invalid_sealed_payload")
)
