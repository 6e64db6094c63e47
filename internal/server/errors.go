package server

import (
	"errors"
	"net/http"
	"strings"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/chantierpro/finance/internal/export"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// validationSentinels are reported as 400 with the sentinel text as code.
var validationSentinels = []error{
	ErrInvalidRequest,
	datasetdomain.ErrInvalidPeriod,
	export.ErrUnsupportedEncoding,
	integrationdomain.ErrInvalidConfig,
	integrationdomain.ErrExportOnly,
}

var notFoundSentinels = []error{
	ErrNotFound,
	datasetdomain.ErrProjectNotFound,
	integrationdomain.ErrProviderNotFound,
	reportingdomain.ErrUnknownArtifact,
}

var conflictSentinels = []error{
	integrationdomain.ErrNotConnected,
	integrationdomain.ErrSyncInProgress,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if sentinel := matchSentinel(err, validationSentinels); sentinel != nil {
		code := sentinel.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(err),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case matchSentinel(err, notFoundSentinels) != nil:
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: matchSentinel(err, notFoundSentinels).Error(),
		}
	case matchSentinel(err, conflictSentinels) != nil:
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: matchSentinel(err, conflictSentinels).Error(),
		}
	case errors.Is(err, integrationdomain.ErrUnauthorized):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_unauthorized",
			Message: "provider rejected the credentials",
		}
	case errors.Is(err, integrationdomain.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "provider unavailable",
		}
	case errors.Is(err, datasetdomain.ErrDatasetNotFound),
		errors.Is(err, datasetdomain.ErrInvalidDataset):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "dataset_unavailable",
			Message: "dataset unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func matchSentinel(err error, sentinels []error) error {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "unsupported_encoding":
		return "encoding"
	case "provider_export_only":
		return "provider"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

// validationErrorMessage keeps the detail appended after the sentinel, which
// names the offending value.
func validationErrorMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return "invalid value"
}
