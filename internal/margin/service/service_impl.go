package service

import (
	"context"
	"time"

	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Analytics *config.AnalyticsConfigHolder
	Reports   *obsmetrics.ReportMetrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	analytics *config.AnalyticsConfigHolder
	reports   *obsmetrics.ReportMetrics
	tracer    trace.Tracer
}

func NewService(p Params) margindomain.Service {
	return &Service{
		log:       p.Log.Named("margin.service"),
		analytics: p.Analytics,
		reports:   p.Reports,
		tracer:    otel.Tracer("chantierpro/margin"),
	}
}

func (s *Service) Portfolio(ctx context.Context, ds datasetdomain.Dataset) (margindomain.Portfolio, error) {
	_, span := s.tracer.Start(ctx, "margin.portfolio", trace.WithAttributes(
		attribute.Int("projects", len(ds.Projects)),
	))
	defer span.End()

	start := time.Now()
	portfolio := AggregatePortfolio(ds, s.policy())
	s.reports.ObserveOperation(obsmetrics.OperationPortfolio, time.Since(start))
	s.reports.SetPortfolio(obsmetrics.PortfolioSnapshot{
		Revenue:        portfolio.TotalRevenue,
		MarginRate:     portfolio.MarginRate,
		Projects:       portfolio.ProjectCount,
		InProgress:     portfolio.InProgressCount,
		AtRisk:         portfolio.AtRiskCount,
		Profitable:     portfolio.ProfitableCount,
		CriticalAlerts: portfolio.CriticalAlerts,
		WarningAlerts:  portfolio.WarningAlerts,
		TotalAlerts:    portfolio.TotalAlerts,
	})

	span.SetAttributes(attribute.Int("alerts", portfolio.TotalAlerts))
	s.log.Debug("portfolio computed",
		zap.Int("projects", portfolio.ProjectCount),
		zap.Int("alerts", portfolio.TotalAlerts),
		zap.String("margin_rate", portfolio.MarginRate.StringFixed(2)),
	)
	return portfolio, nil
}

func (s *Service) ProjectMargin(ctx context.Context, ds datasetdomain.Dataset, projectID string) (margindomain.ProjectReport, error) {
	_, span := s.tracer.Start(ctx, "margin.project")
	defer span.End()

	idx := datasetdomain.NewIndex(ds)
	project, ok := idx.Project(projectID)
	if !ok {
		return margindomain.ProjectReport{}, datasetdomain.ErrProjectNotFound
	}
	policy := s.policy()
	record := CalculateMargin(idx, project, policy)
	return margindomain.ProjectReport{
		Record:       record,
		Alerts:       GenerateAlerts(record, policy),
		NextStatuses: datasetdomain.Transitions(project.Status),
	}, nil
}

func (s *Service) policy() margindomain.Policy {
	if s.analytics == nil {
		return margindomain.DefaultPolicy()
	}
	return PolicyFromConfig(s.analytics.Get(), s.log)
}

// PolicyFromConfig converts the analytics configuration. Unknown rate sources
// are skipped; an empty result falls back to the default chain.
func PolicyFromConfig(cfg config.AnalyticsConfig, log *zap.Logger) margindomain.Policy {
	sources := make([]datasetdomain.RateSource, 0, len(cfg.RateSources))
	for _, raw := range cfg.RateSources {
		src, err := datasetdomain.ParseRateSource(raw)
		if err != nil {
			if log != nil {
				log.Warn("ignoring rate source", zap.Error(err))
			}
			continue
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		sources = datasetdomain.DefaultRateSources
	}
	return margindomain.Policy{
		Thresholds: margindomain.Thresholds{
			Critical: decimal.NewFromFloat(cfg.Thresholds.Critical),
			Warning:  decimal.NewFromFloat(cfg.Thresholds.Warning),
			Good:     decimal.NewFromFloat(cfg.Thresholds.Good),
		},
		Overrun: margindomain.OverrunPolicy{
			CostRatio: decimal.NewFromFloat(cfg.Overrun.CostRatio),
			Tolerance: decimal.NewFromFloat(cfg.Overrun.Tolerance),
		},
		TopAlerts:   cfg.TopAlerts,
		RateSources: sources,
	}
}
