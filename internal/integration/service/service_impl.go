package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chantierpro/finance/internal/clock"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/chantierpro/finance/internal/integration/adapter"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"github.com/chantierpro/finance/internal/integration/masking"
	obscontext "github.com/chantierpro/finance/internal/observability/context"
	"github.com/chantierpro/finance/internal/observability/logger"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	obstracing "github.com/chantierpro/finance/internal/observability/tracing"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// syncLockTTL outlives the slowest provider run; a crashed run frees the
// lock when it expires.
const syncLockTTL = 2 * time.Minute

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Store      integrationdomain.CredentialStore
	Locker     integrationdomain.SyncLocker
	Adapters   *adapter.Registry
	Clock      clock.Clock               `optional:"true"`
	ObsMetrics *obsmetrics.Metrics       `optional:"true"`
	Reports    *obsmetrics.ReportMetrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	store      integrationdomain.CredentialStore
	locker     integrationdomain.SyncLocker
	adapters   *adapter.Registry
	clock      clock.Clock
	validate   *validator.Validate
	obsMetrics *obsmetrics.Metrics
	reports    *obsmetrics.ReportMetrics
	tracer     trace.Tracer
}

func NewService(p Params) integrationdomain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		log:        p.Log.Named("integration.service"),
		genID:      p.GenID,
		store:      p.Store,
		locker:     p.Locker,
		adapters:   p.Adapters,
		clock:      c,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		obsMetrics: p.ObsMetrics,
		reports:    p.Reports,
		tracer:     otel.Tracer("chantierpro/integration"),
	}
}

func (s *Service) Catalog(ctx context.Context) []integrationdomain.CatalogEntry {
	return integrationdomain.Catalog()
}

// List returns every catalog provider with its connection state. Providers
// that were never connected are reported as not_connected.
func (s *Service) List(ctx context.Context) ([]integrationdomain.ConnectionSummary, error) {
	conns, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	byProvider := make(map[integrationdomain.Provider]integrationdomain.Connection, len(conns))
	for _, conn := range conns {
		byProvider[conn.Provider] = conn
	}

	catalog := integrationdomain.Catalog()
	resp := make([]integrationdomain.ConnectionSummary, 0, len(catalog))
	for _, entry := range catalog {
		conn, ok := byProvider[entry.Provider]
		if !ok {
			resp = append(resp, integrationdomain.ConnectionSummary{
				Provider:    entry.Provider,
				DisplayName: entry.DisplayName,
				Status:      integrationdomain.SyncStatusNotConnected,
			})
			continue
		}
		resp = append(resp, summarize(entry, conn))
	}
	return resp, nil
}

func (s *Service) Connect(ctx context.Context, req integrationdomain.ConnectRequest) (integrationdomain.ConnectionSummary, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return integrationdomain.ConnectionSummary{}, fmt.Errorf("%w: %v", integrationdomain.ErrInvalidConfig, err)
	}
	entry, err := integrationdomain.LookupProvider(req.Provider)
	if err != nil {
		return integrationdomain.ConnectionSummary{}, err
	}
	if entry.ExportOnly {
		return integrationdomain.ConnectionSummary{}, integrationdomain.ErrExportOnly
	}

	config := normalizeConfig(req.Config)
	for _, key := range entry.Credentials {
		if _, ok := config[key].(string); !ok {
			return integrationdomain.ConnectionSummary{}, fmt.Errorf("%w: %s is required", integrationdomain.ErrInvalidConfig, key)
		}
	}

	now := s.clock.Now()
	conn := integrationdomain.Connection{
		Provider:    entry.Provider,
		Status:      integrationdomain.SyncStatusConnected,
		Config:      config,
		ConnectedAt: now,
		UpdatedAt:   now,
	}
	existing, err := s.store.Load(ctx, entry.Provider)
	rotated := err == nil
	switch {
	case rotated:
		// rotating credentials keeps the sync history
		conn.ConnectedAt = existing.ConnectedAt
		conn.LastSyncAt = existing.LastSyncAt
		conn.LastResult = existing.LastResult
	case !errors.Is(err, integrationdomain.ErrNotConnected):
		return integrationdomain.ConnectionSummary{}, err
	}

	if err := s.store.Save(ctx, conn); err != nil {
		return integrationdomain.ConnectionSummary{}, err
	}

	s.log.Info("provider connected",
		zap.String("provider", string(entry.Provider)),
		zap.Bool("rotated", rotated),
		zap.Any("config", masking.MaskConfig(config, integrationdomain.CredentialLogin)),
	)
	return summarize(entry, conn), nil
}

func (s *Service) Disconnect(ctx context.Context, provider string) error {
	entry, err := integrationdomain.LookupProvider(provider)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, entry.Provider); err != nil {
		return err
	}
	s.log.Info("provider disconnected", zap.String("provider", string(entry.Provider)))
	return nil
}

// Sync pushes the invoices and expenses of period to provider. The outcome,
// including failures, is persisted on the connection before returning.
func (s *Service) Sync(ctx context.Context, provider string, ds datasetdomain.Dataset, period datasetdomain.Period) (integrationdomain.SyncResult, error) {
	entry, err := integrationdomain.LookupProvider(provider)
	if err != nil {
		return integrationdomain.SyncResult{}, err
	}
	if entry.ExportOnly {
		return integrationdomain.SyncResult{}, integrationdomain.ErrExportOnly
	}
	a, ok := s.adapters.Get(entry.Provider)
	if !ok {
		return integrationdomain.SyncResult{}, integrationdomain.ErrProviderNotFound
	}

	conn, err := s.store.Load(ctx, entry.Provider)
	if err != nil {
		s.reports.IncSyncError(string(entry.Provider), err)
		return integrationdomain.SyncResult{}, err
	}

	token, acquired, err := s.locker.TryLock(ctx, entry.Provider, syncLockTTL)
	if err != nil {
		return integrationdomain.SyncResult{}, err
	}
	if !acquired {
		return integrationdomain.SyncResult{}, integrationdomain.ErrSyncInProgress
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), entry.Provider, token); err != nil {
			s.log.Warn("release sync lock", zap.String("provider", string(entry.Provider)), zap.Error(err))
		}
	}()

	runID := s.genID.Generate().String()
	ctx = obscontext.WithSyncRun(ctx, string(entry.Provider), runID)
	log := logger.WithContext(ctx, s.log)

	ctx, span := s.tracer.Start(ctx, "integration.sync", trace.WithAttributes(obstracing.SafeAttributes(
		attribute.String("provider", string(entry.Provider)),
		attribute.String("sync_run_id", runID),
		attribute.String("period", period.String()),
	)...))
	defer span.End()

	conn.Status = integrationdomain.SyncStatusSyncing
	conn.UpdatedAt = s.clock.Now()
	if err := s.store.Save(ctx, conn); err != nil {
		return integrationdomain.SyncResult{}, err
	}

	req := integrationdomain.SyncRequest{
		RunID:       runID,
		Provider:    entry.Provider,
		Period:      period,
		Company:     ds.Company,
		Clients:     ds.Clients,
		Invoices:    ds.InvoicesIn(period),
		Expenses:    ds.ExpensesIn(period),
		Credentials: conn,
	}

	start := time.Now()
	result, syncErr := a.Sync(ctx, req)
	s.reports.ObserveOperation(obsmetrics.OperationSync, time.Since(start))
	if result.RunID == "" {
		result.RunID = runID
		result.Provider = entry.Provider
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = s.clock.Now()
	}

	finished := s.clock.Now()
	conn.UpdatedAt = finished
	conn.LastSyncAt = &finished
	conn.LastResult = &result
	if syncErr != nil {
		conn.Status = integrationdomain.SyncStatusError
		conn.LastError = syncErr.Error()
		span.RecordError(obstracing.SafeError(syncErr))
		span.SetStatus(codes.Error, "sync failed")
		s.obsMetrics.RecordIntegrationSync(ctx, string(entry.Provider), obsmetrics.ClassifySyncError(syncErr))
		s.reports.IncSyncError(string(entry.Provider), syncErr)
		log.Warn("sync failed",
			zap.Int("synced", result.Synced.Total()),
			zap.Int("rejected", result.Rejected),
			zap.Error(syncErr),
		)
	} else {
		conn.Status = integrationdomain.SyncStatusUpToDate
		conn.LastError = ""
		s.obsMetrics.RecordIntegrationSync(ctx, string(entry.Provider), "success")
		log.Info("sync completed",
			zap.Int("invoices", result.Synced.Invoices),
			zap.Int("expenses", result.Synced.Expenses),
			zap.Int("transactions", result.Synced.Transactions),
		)
	}

	if err := s.store.Save(context.WithoutCancel(ctx), conn); err != nil {
		return result, errors.Join(syncErr, fmt.Errorf("save sync outcome: %w", err))
	}
	return result, syncErr
}

func summarize(entry integrationdomain.CatalogEntry, conn integrationdomain.Connection) integrationdomain.ConnectionSummary {
	connectedAt := conn.ConnectedAt
	return integrationdomain.ConnectionSummary{
		Provider:    entry.Provider,
		DisplayName: entry.DisplayName,
		Status:      conn.Status,
		Config:      masking.MaskConfig(conn.Config, integrationdomain.CredentialLogin),
		ConnectedAt: &connectedAt,
		LastSyncAt:  conn.LastSyncAt,
		LastError:   conn.LastError,
		LastResult:  conn.LastResult,
	}
}

func normalizeConfig(config map[string]any) map[string]any {
	if len(config) == 0 {
		return nil
	}

	normalized := make(map[string]any, len(config))
	for key, value := range config {
		trimmedKey := strings.ToLower(strings.TrimSpace(key))
		if trimmedKey == "" || value == nil {
			continue
		}

		switch cast := value.(type) {
		case string:
			trimmedValue := strings.TrimSpace(cast)
			if trimmedValue == "" {
				continue
			}
			normalized[trimmedKey] = trimmedValue
		default:
			normalized[trimmedKey] = cast
		}
	}

	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
