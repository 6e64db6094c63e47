package observability

import (
	"testing"

	"github.com/chantierpro/finance/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigNarrowsAppConfig(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment: " production ",
		AppVersion:  "1.4.0",
		Observability: config.ObservabilityConfig{
			LogLevel:          "info",
			LogOutput:         "stderr",
			OtelEnabled:       true,
			OtelEndpoint:      " collector:4317 ",
			OtelProtocol:      "grpc",
			OtelSamplingRatio: 3,
		},
	})

	assert.Equal(t, "chantierpro", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio, "out of range ratio falls back")
	assert.False(t, cfg.Debug())

	logCfg := cfg.loggerConfig()
	assert.Equal(t, "stderr", logCfg.Output)
	assert.False(t, logCfg.IncludeCaller)
	assert.True(t, cfg.tracingConfig().Enabled)
	assert.Equal(t, "1.4.0", cfg.tracingConfig().ServiceVersion)
}

func TestDebug(t *testing.T) {
	assert.True(t, Config{LogLevel: "DEBUG", Environment: "production"}.Debug())
	assert.True(t, Config{Environment: "local"}.Debug())
	assert.False(t, Config{Environment: "staging"}.Debug())
}
