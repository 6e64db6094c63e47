package domain

import (
	"context"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

// Adapter pushes records to one provider.
type Adapter interface {
	Provider() Provider
	Sync(ctx context.Context, req SyncRequest) (SyncResult, error)
}

// CredentialStore persists connections. Load returns ErrNotConnected when
// the provider has never been connected.
type CredentialStore interface {
	Load(ctx context.Context, provider Provider) (Connection, error)
	Save(ctx context.Context, conn Connection) error
	Remove(ctx context.Context, provider Provider) error
	List(ctx context.Context) ([]Connection, error)
}

// SyncLocker keeps two runs for the same provider from overlapping.
type SyncLocker interface {
	TryLock(ctx context.Context, provider Provider, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, provider Provider, token string) error
}

type Service interface {
	Catalog(ctx context.Context) []CatalogEntry
	List(ctx context.Context) ([]ConnectionSummary, error)
	Connect(ctx context.Context, req ConnectRequest) (ConnectionSummary, error)
	Disconnect(ctx context.Context, provider string) error
	Sync(ctx context.Context, provider string, ds datasetdomain.Dataset, period datasetdomain.Period) (SyncResult, error)
}
