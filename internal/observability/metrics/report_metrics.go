package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	SyncErrorReasonDeadlineExceeded = "deadline_exceeded"
	SyncErrorReasonUnauthorized     = "unauthorized"
	SyncErrorReasonUnavailable      = "unavailable"
	SyncErrorReasonPartial          = "partial"
	SyncErrorReasonNotConnected     = "not_connected"
	SyncErrorReasonUnknown          = "unknown"
)

const (
	OperationPortfolio = "portfolio"
	OperationVAT       = "vat_summary"
	OperationFEC       = "fec"
	OperationCSV       = "csv"
	OperationXLSX      = "xlsx"
	OperationPDF       = "pdf"
	OperationSync      = "sync"
)

// ReportMetrics exposes the last computed portfolio and report latencies to
// Prometheus.
type ReportMetrics struct {
	portfolioRevenue    prometheus.Gauge
	portfolioMarginRate prometheus.Gauge
	portfolioProjects   *prometheus.GaugeVec
	portfolioAlerts     *prometheus.GaugeVec
	operationDuration   *prometheus.HistogramVec
	exportBytes         *prometheus.CounterVec
	syncErrors          *prometheus.CounterVec
}

var (
	reportMetricsOnce sync.Once
	reportMetrics     *ReportMetrics
)

// Reports returns the process-wide metrics registered on the default registry.
func Reports() *ReportMetrics {
	return ReportsWithConfig(Config{})
}

// ReportsWithConfig returns the process-wide metrics using config labels.
func ReportsWithConfig(cfg Config) *ReportMetrics {
	reportMetricsOnce.Do(func() {
		reportMetrics = NewReportMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reportMetrics
}

// NewReportMetrics registers the collectors on registerer. Tests pass their
// own registry.
func NewReportMetrics(registerer prometheus.Registerer, cfg Config) *ReportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "chantierpro"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	portfolioRevenue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "chantierpro_portfolio_revenue_euros",
		Help:        "Total pre-tax revenue of the last computed portfolio.",
		ConstLabels: constLabels,
	})
	portfolioMarginRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "chantierpro_portfolio_margin_rate_percent",
		Help:        "Portfolio gross margin rate of the last computation.",
		ConstLabels: constLabels,
	})
	portfolioProjects := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "chantierpro_portfolio_projects",
		Help:        "Projects in the last computed portfolio by bucket.",
		ConstLabels: constLabels,
	}, []string{"bucket"})
	portfolioAlerts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "chantierpro_portfolio_alerts",
		Help:        "Alerts raised by the last portfolio computation by severity.",
		ConstLabels: constLabels,
	}, []string{"severity"})
	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "chantierpro_report_duration_seconds",
		Help:        "Latency of report and export operations.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"operation"})
	exportBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "chantierpro_export_bytes_total",
		Help:        "Bytes of export artifacts produced by kind.",
		ConstLabels: constLabels,
	}, []string{"kind"})
	syncErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "chantierpro_integration_sync_errors_total",
		Help:        "Accounting sync failures by provider and low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"provider", "reason"})

	registerer.MustRegister(
		portfolioRevenue,
		portfolioMarginRate,
		portfolioProjects,
		portfolioAlerts,
		operationDuration,
		exportBytes,
		syncErrors,
	)

	return &ReportMetrics{
		portfolioRevenue:    portfolioRevenue,
		portfolioMarginRate: portfolioMarginRate,
		portfolioProjects:   portfolioProjects,
		portfolioAlerts:     portfolioAlerts,
		operationDuration:   operationDuration,
		exportBytes:         exportBytes,
		syncErrors:          syncErrors,
	}
}

// PortfolioSnapshot is the subset of a portfolio published as gauges.
type PortfolioSnapshot struct {
	Revenue        decimal.Decimal
	MarginRate     decimal.Decimal
	Projects       int
	InProgress     int
	AtRisk         int
	Profitable     int
	CriticalAlerts int
	WarningAlerts  int
	TotalAlerts    int
}

// SetPortfolio publishes the last computed portfolio.
func (m *ReportMetrics) SetPortfolio(s PortfolioSnapshot) {
	if m == nil {
		return
	}
	m.portfolioRevenue.Set(s.Revenue.InexactFloat64())
	m.portfolioMarginRate.Set(s.MarginRate.InexactFloat64())
	m.portfolioProjects.WithLabelValues("total").Set(float64(s.Projects))
	m.portfolioProjects.WithLabelValues("in_progress").Set(float64(s.InProgress))
	m.portfolioProjects.WithLabelValues("at_risk").Set(float64(s.AtRisk))
	m.portfolioProjects.WithLabelValues("profitable").Set(float64(s.Profitable))
	m.portfolioAlerts.WithLabelValues("critical").Set(float64(s.CriticalAlerts))
	m.portfolioAlerts.WithLabelValues("warning").Set(float64(s.WarningAlerts))
	m.portfolioAlerts.WithLabelValues("info").Set(float64(s.TotalAlerts - s.CriticalAlerts - s.WarningAlerts))
}

// ObserveOperation records the latency of a report operation in seconds.
func (m *ReportMetrics) ObserveOperation(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// AddExportBytes counts the size of a produced artifact.
func (m *ReportMetrics) AddExportBytes(kind string, size int) {
	if m == nil || size <= 0 {
		return
	}
	m.exportBytes.WithLabelValues(kind).Add(float64(size))
}

// IncSyncError counts a failed accounting sync.
func (m *ReportMetrics) IncSyncError(provider string, err error) {
	if m == nil || err == nil {
		return
	}
	m.syncErrors.WithLabelValues(provider, ClassifySyncError(err)).Inc()
}

// ClassifySyncError maps a sync failure to a low-cardinality reason.
func ClassifySyncError(err error) string {
	switch {
	case err == nil:
		return SyncErrorReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return SyncErrorReasonDeadlineExceeded
	case errors.Is(err, integrationdomain.ErrUnauthorized):
		return SyncErrorReasonUnauthorized
	case errors.Is(err, integrationdomain.ErrUnavailable):
		return SyncErrorReasonUnavailable
	case errors.Is(err, integrationdomain.ErrPartialSync):
		return SyncErrorReasonPartial
	case errors.Is(err, integrationdomain.ErrNotConnected):
		return SyncErrorReasonNotConnected
	default:
		return SyncErrorReasonUnknown
	}
}
