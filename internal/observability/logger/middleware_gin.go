package logger

import (
	"net/http"
	"strings"
	"time"

	obscontext "github.com/chantierpro/finance/internal/observability/context"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDHeader = "X-Request-Id"

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to a type and a code.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware assigns a request id and logs one http_request entry per
// request. Export and sync routes also log the provider, the artifact kind
// and the requested period.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := requestIDFor(c)
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		fields = append(fields, domainFields(c)...)

		if lastErr := c.Errors.Last(); lastErr != nil {
			errorType, errorCode := "error", ""
			if cfg.ErrorClassifier != nil {
				errorType, errorCode = cfg.ErrorClassifier(lastErr.Err)
			}
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if cfg.Debug {
				fields = append(fields, zap.String("error", lastErr.Err.Error()))
			}
		}

		FromContext(c.Request.Context()).Log(levelFor(route, status), "http_request", fields...)
	}
}

func requestIDFor(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(requestIDHeader)); id != "" {
		return id
	}
	return ulid.Make().String()
}

func domainFields(c *gin.Context) []zap.Field {
	var fields []zap.Field
	if provider := strings.TrimSpace(c.Param("provider")); provider != "" {
		fields = append(fields, zap.String("provider", provider))
	}
	if kind := strings.TrimSpace(c.Param("kind")); kind != "" {
		fields = append(fields, zap.String("export_kind", kind))
	}
	if start, end := c.Query("start"), c.Query("end"); start != "" || end != "" {
		fields = append(fields, zap.String("period", start+".."+end))
	}
	return fields
}

func levelFor(route string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case route == "/health" || route == "/metrics":
		return zapcore.DebugLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
