package service

import (
	"context"
	"time"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Analytics *config.AnalyticsConfigHolder `optional:"true"`
	Reports   *obsmetrics.ReportMetrics     `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	clock     clock.Clock
	analytics *config.AnalyticsConfigHolder
	reports   *obsmetrics.ReportMetrics
	tracer    trace.Tracer
}

func NewService(p Params) vatdomain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		log:       p.Log.Named("vat.service"),
		clock:     c,
		analytics: p.Analytics,
		reports:   p.Reports,
		tracer:    otel.Tracer("chantierpro/vat"),
	}
}

func (s *Service) Summary(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (vatdomain.Summary, error) {
	_, span := s.tracer.Start(ctx, "vat.summary", trace.WithAttributes(
		attribute.String("period", period.String()),
	))
	defer span.End()

	start := time.Now()
	summary := Summarize(ds, period)
	s.reports.ObserveOperation(obsmetrics.OperationVAT, time.Since(start))

	if summary.UnbucketedCount > 0 {
		s.log.Warn("documents with non-standard VAT rates",
			zap.String("period", period.String()),
			zap.Int("count", summary.UnbucketedCount),
		)
	}
	return summary, nil
}

func (s *Service) Declaration(_ context.Context, summary vatdomain.Summary) vatdomain.Declaration {
	return Declare(summary)
}

func (s *Service) NextDeadline(_ context.Context) (vatdomain.Deadline, bool) {
	regime := vatdomain.RegimeQuarterly
	if s.analytics != nil {
		regime = vatdomain.Regime(s.analytics.Get().VATRegime)
	}
	return NextDeadline(regime, s.clock.Now())
}
