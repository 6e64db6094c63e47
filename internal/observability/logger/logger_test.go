package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	obscontext "github.com/chantierpro/finance/internal/observability/context"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from integration_credentials"))
	assert.Equal(t, "DELETE", operationFromSQL("  delete from integration_credentials where provider = ?"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithSyncRun(ctx, "pennylane", "77")
	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "pennylane", fields["provider"])
	assert.Equal(t, "77", fields["sync_run_id"])
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm.query", logs.All()[0].Message)
}

func TestGinMiddlewareSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, obscontext.RequestIDFromContext(c.Request.Context()))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := rec.Header().Get("X-Request-Id")
	assert.Len(t, id, 26, "ulid")
	assert.Equal(t, id, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("http_request").Len())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "given")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Body.String())
}

func TestGinMiddlewareLogsExportFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "not_found", "unknown_artifact" },
	}))
	r.GET("/api/exports/:kind", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/ods?start=2024-01-01&end=2024-03-31", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ods", fields["export_kind"])
	assert.Equal(t, "2024-01-01..2024-03-31", fields["period"])
	assert.Equal(t, "unknown_artifact", fields["error_code"])
}

func TestBuildRejectsUnknownLevel(t *testing.T) {
	_, err := Build(Config{Level: "loud"})
	assert.Error(t, err)

	log, err := Build(Config{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestWithContextSkipsAbsentFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	WithContext(context.Background(), zap.New(core)).Info("bare")

	require.Equal(t, 1, logs.Len())
	assert.Empty(t, logs.All()[0].ContextMap())
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries stay quiet at warn")

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO integration_credentials " + strings.Repeat("x", 600), -1
	}, errors.New("disk I/O error"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "gorm", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "INSERT", fields["operation"])
	assert.Len(t, fields["sql"], maxLoggedSQL+3)
	assert.NotContains(t, fields, "rows_affected")

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "DELETE", 1 }, errors.New("boom"))
	assert.Equal(t, 1, logs.Len())
}
