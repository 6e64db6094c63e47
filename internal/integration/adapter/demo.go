package adapter

import (
	"context"
	"time"

	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
)

// Demo accepts every record without leaving the process. It stands in for
// the real providers when the application runs in demo mode.
type Demo struct {
	provider integrationdomain.Provider
	now      func() time.Time
}

func NewDemo(provider integrationdomain.Provider, now func() time.Time) *Demo {
	return &Demo{provider: provider, now: now}
}

func (d *Demo) Provider() integrationdomain.Provider {
	return d.provider
}

func (d *Demo) Sync(ctx context.Context, req integrationdomain.SyncRequest) (integrationdomain.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return integrationdomain.SyncResult{}, err
	}
	var synced integrationdomain.SyncCounts
	switch d.provider {
	case integrationdomain.ProviderPennylane:
		synced.Invoices = len(req.Invoices)
		synced.Expenses = len(req.Expenses)
	case integrationdomain.ProviderIndy:
		synced.Invoices = len(req.Invoices)
	}
	result, err := finish(req, synced, 0, d.now)
	result.Message = "demo"
	return result, err
}
