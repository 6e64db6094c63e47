package service

import (
	"context"
	"io"
	"time"

	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	fecdomain "github.com/chantierpro/finance/internal/fec/domain"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Analytics  *config.AnalyticsConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics           `optional:"true"`
	Reports    *obsmetrics.ReportMetrics     `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	analytics  *config.AnalyticsConfigHolder
	obsMetrics *obsmetrics.Metrics
	reports    *obsmetrics.ReportMetrics
	tracer     trace.Tracer
}

func NewService(p Params) fecdomain.Service {
	return &Service{
		log:        p.Log.Named("fec.service"),
		analytics:  p.Analytics,
		obsMetrics: p.ObsMetrics,
		reports:    p.Reports,
		tracer:     otel.Tracer("chantierpro/fec"),
	}
}

func (s *Service) Generate(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (fecdomain.Ledger, error) {
	ctx, span := s.tracer.Start(ctx, "fec.generate", trace.WithAttributes(
		attribute.String("period", period.String()),
	))
	defer span.End()

	labels := DefaultLabels()
	if s.analytics != nil {
		labels = LabelsFromConfig(s.analytics.Get().Ledger)
	}

	start := time.Now()
	ledger, err := Generate(ds, period, labels)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unbalanced ledger")
		s.log.Error("ledger generation failed", zap.String("period", period.String()), zap.Error(err))
		return fecdomain.Ledger{}, err
	}
	s.reports.ObserveOperation(obsmetrics.OperationFEC, time.Since(start))

	counts := ledger.LineCount()
	for journal, n := range counts {
		s.obsMetrics.RecordLedgerLines(ctx, journal, n)
	}
	span.SetAttributes(attribute.Int("entries", len(ledger.Entries)))
	s.log.Debug("ledger generated",
		zap.String("period", period.String()),
		zap.Int("entries", len(ledger.Entries)),
		zap.Int("sales_lines", counts[fecdomain.JournalSales.Code]),
		zap.Int("purchase_lines", counts[fecdomain.JournalPurchases.Code]),
	)
	return ledger, nil
}

func (s *Service) Write(ctx context.Context, w io.Writer, ledger fecdomain.Ledger) error {
	if err := Encode(w, ledger); err != nil {
		return err
	}
	s.obsMetrics.RecordExport(ctx, "fec")
	return nil
}
