package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const exportInterval = 30 * time.Second

// Config configures the OTLP meter provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

const (
	counterExports         = "chantierpro_exports_generated_total"
	counterLedgerLines     = "chantierpro_ledger_lines_total"
	counterSyncs           = "chantierpro_integration_syncs_total"
	counterDatasetWarnings = "chantierpro_dataset_warnings_total"
)

var counterDescriptions = map[string]string{
	counterExports:         "Export artifacts generated, by kind.",
	counterLedgerLines:     "FEC lines written, by journal.",
	counterSyncs:           "Accounting sync attempts, by provider and outcome.",
	counterDatasetWarnings: "Dataset records repaired at load, by collection.",
}

// Metrics holds the OTLP counters fed by exports, the ledger, syncs and the
// dataset loader. A nil *Metrics records nothing.
type Metrics struct {
	counters map[string]metric.Int64Counter
}

// NewProvider registers the global meter provider. Without OTLP the provider
// is a noop and only the Prometheus collectors remain.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(resource.NewSchemaless(
			semconv.ServiceName(meterName(cfg.ServiceName)),
			semconv.DeploymentEnvironment(strings.TrimSpace(cfg.Environment)),
		)),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{OnStop: provider.Shutdown})
	}
	if log != nil {
		log.Info("otlp metrics enabled",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
			zap.Duration("interval", exportInterval),
		)
	}
	return provider, nil
}

// New creates every counter on the service meter.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName(cfg.ServiceName))
	m := &Metrics{counters: make(map[string]metric.Int64Counter, len(counterDescriptions))}
	for name, description := range counterDescriptions {
		counter, err := meter.Int64Counter(name, metric.WithDescription(description))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", name, err)
		}
		m.counters[name] = counter
	}
	return m, nil
}

// RecordExport counts one generated artifact.
func (m *Metrics) RecordExport(ctx context.Context, kind string) {
	m.add(ctx, counterExports, 1, attribute.String("export_kind", kind))
}

// RecordLedgerLines counts FEC lines written for journal.
func (m *Metrics) RecordLedgerLines(ctx context.Context, journal string, count int) {
	m.add(ctx, counterLedgerLines, count, attribute.String("journal", journal))
}

// RecordIntegrationSync counts one sync attempt.
func (m *Metrics) RecordIntegrationSync(ctx context.Context, provider, outcome string) {
	m.add(ctx, counterSyncs, 1,
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
}

// RecordDatasetWarnings counts records repaired in collection.
func (m *Metrics) RecordDatasetWarnings(ctx context.Context, collection string, count int) {
	m.add(ctx, counterDatasetWarnings, count, attribute.String("collection", collection))
}

func (m *Metrics) add(ctx context.Context, name string, n int, attrs ...attribute.KeyValue) {
	if m == nil || n <= 0 {
		return
	}
	counter, ok := m.counters[name]
	if !ok {
		return
	}
	for i, attr := range attrs {
		attrs[i] = attribute.String(string(attr.Key), strings.TrimSpace(attr.Value.AsString()))
	}
	counter.Add(ctx, int64(n), metric.WithAttributes(FilterAttributes(attrs...)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch p := strings.ToLower(strings.TrimSpace(protocol)); p {
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", p)
	}
}

func meterName(service string) string {
	if service = strings.TrimSpace(service); service != "" {
		return service
	}
	return "chantierpro"
}

// Labels outside this set would put invoice numbers or client names into
// series keys.
var allowedLabelKeys = map[attribute.Key]bool{
	"export_kind": true,
	"journal":     true,
	"provider":    true,
	"outcome":     true,
	"collection":  true,
	"reason":      true,
}

// FilterAttributes keeps only the low-cardinality labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if allowedLabelKeys[attr.Key] {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
