package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("provider", "pennylane"),
		attribute.String("invoice_number", "F-001"),
		attribute.String("journal", "VE"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("provider"))
	assert.Contains(t, keys, attribute.Key("journal"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordExport(ctx, "fec")
	m.RecordLedgerLines(ctx, "VE", 3)
	m.RecordIntegrationSync(ctx, "indy", "success")
	m.RecordDatasetWarnings(ctx, "documents", 1)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "test"}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordExport(context.Background(), "csv")
	m.RecordLedgerLines(context.Background(), "AC", 6)
}

func TestNewRegistersEveryCounter(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.Len(t, m.counters, len(counterDescriptions))
	assert.Equal(t, "chantierpro", meterName("  "))
}

func TestNewProviderDisabledIsNoop(t *testing.T) {
	provider, err := NewProvider(nil, Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, noop.MeterProvider{}, provider)

	_, err = newExporter("carrier-pigeon", "")
	assert.ErrorContains(t, err, "unsupported OTLP protocol")
}
