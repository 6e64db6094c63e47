// Package adapter pushes export data to the accounting providers over their
// HTTP APIs.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	obstracing "github.com/chantierpro/finance/internal/observability/tracing"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// apiClient is the JSON transport shared by the provider adapters.
type apiClient struct {
	provider integrationdomain.Provider
	baseURL  string
	client   *http.Client
}

func newAPIClient(provider integrationdomain.Provider, baseURL string, client *http.Client) apiClient {
	return apiClient{
		provider: provider,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:   obstracing.WrapHTTPClient(client),
	}
}

// requestError is a non-2xx answer. Status 422 and 400 reject a single
// record; everything else fails the run.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("%d %s", e.status, e.message)
}

func isRejection(err error) bool {
	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.status == http.StatusBadRequest || reqErr.status == http.StatusUnprocessableEntity
}

func (c apiClient) do(ctx context.Context, method, path string, auth func(*http.Request), body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		auth(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s: %w: %v", c.provider, integrationdomain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", c.provider, integrationdomain.ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: %s", c.provider, integrationdomain.ErrUnavailable, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		return &requestError{status: resp.StatusCode, message: decodeErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return "request_rejected"
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(body.Error); msg != "" {
		return msg
	}
	return "request_rejected"
}

// finish turns per-record outcomes into the run result. A run where some
// records were rejected is reported with ErrPartialSync.
func finish(req integrationdomain.SyncRequest, synced integrationdomain.SyncCounts, rejected int, now func() time.Time) (integrationdomain.SyncResult, error) {
	result := integrationdomain.SyncResult{
		RunID:     req.RunID,
		Provider:  req.Provider,
		Success:   rejected == 0,
		Synced:    synced,
		Rejected:  rejected,
		Timestamp: now(),
	}
	if rejected > 0 {
		result.Message = fmt.Sprintf("%d record(s) rejected", rejected)
		return result, fmt.Errorf("%s: %w: %d rejected", req.Provider, integrationdomain.ErrPartialSync, rejected)
	}
	return result, nil
}
