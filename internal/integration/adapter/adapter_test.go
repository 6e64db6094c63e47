package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = func() time.Time { return time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC) }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func syncRequest(provider integrationdomain.Provider, config map[string]any) integrationdomain.SyncRequest {
	period, _ := datasetdomain.ParsePeriod("2024-01-01", "2024-03-31")
	return integrationdomain.SyncRequest{
		RunID:    "run-1",
		Provider: provider,
		Period:   period,
		Clients:  []datasetdomain.Client{{ID: "c1", Name: "Dupont"}},
		Invoices: []datasetdomain.Document{
			{ID: "i1", Number: "F-001", Type: datasetdomain.DocumentTypeInvoice, ClientID: "c1",
				Date: period.Start, VATRate: d("20"), Lines: []datasetdomain.LineItem{{Quantity: d("1"), UnitPrice: d("1000")}}},
			{ID: "i2", Number: "F-002", Type: datasetdomain.DocumentTypeInvoice, ClientID: "c1",
				Date: period.Start, VATRate: d("10"), Lines: []datasetdomain.LineItem{{Quantity: d("2"), UnitPrice: d("50")}}},
		},
		Expenses: []datasetdomain.Expense{
			{ID: "e1", Date: period.Start, Amount: d("300"), VATRate: d("20"), Supplier: "Point P"},
		},
		Credentials: integrationdomain.Connection{Provider: provider, Config: config},
	}
}

func TestPennylaneSync(t *testing.T) {
	var (
		mu       sync.Mutex
		invoices []pennylaneInvoice
		expenses int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pk", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/customer_invoices":
			var inv pennylaneInvoice
			require.NoError(t, json.NewDecoder(r.Body).Decode(&inv))
			mu.Lock()
			invoices = append(invoices, inv)
			mu.Unlock()
		case "/supplier_invoices":
			atomic.AddInt32(&expenses, 1)
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	a := NewPennylane(srv.URL+"/", srv.Client(), zap.NewNop(), fixedNow)
	result, err := a.Sync(context.Background(), syncRequest(integrationdomain.ProviderPennylane, map[string]any{"api_key": "pk"}))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, integrationdomain.SyncCounts{Invoices: 2, Expenses: 1}, result.Synced)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, fixedNow(), result.Timestamp)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, invoices, 2)
	assert.Equal(t, "Dupont", invoices[0].CustomerName)
	assert.Equal(t, "1200.00", invoices[0].Amount)
	assert.Equal(t, "2024-01-01", invoices[0].Deadline)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expenses))
}

func TestPennylanePartialSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/supplier_invoices" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"supplier unknown"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	a := NewPennylane(srv.URL, srv.Client(), zap.NewNop(), fixedNow)
	result, err := a.Sync(context.Background(), syncRequest(integrationdomain.ProviderPennylane, map[string]any{"api_key": "pk"}))
	require.ErrorIs(t, err, integrationdomain.ErrPartialSync)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Synced.Invoices)
	assert.Equal(t, 1, result.Rejected)
}

func TestPennylaneStatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:       integrationdomain.ErrUnauthorized,
		http.StatusForbidden:          integrationdomain.ErrUnauthorized,
		http.StatusTooManyRequests:    integrationdomain.ErrUnavailable,
		http.StatusServiceUnavailable: integrationdomain.ErrUnavailable,
	}
	for status, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		a := NewPennylane(srv.URL, srv.Client(), zap.NewNop(), fixedNow)
		_, err := a.Sync(context.Background(), syncRequest(integrationdomain.ProviderPennylane, map[string]any{"api_key": "pk"}))
		assert.ErrorIs(t, err, want, status)
		srv.Close()
	}
}

func TestAdapterUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := NewIndy(url, &http.Client{Timeout: time.Second}, zap.NewNop(), fixedNow)
	_, err := a.Sync(context.Background(), syncRequest(integrationdomain.ProviderIndy, map[string]any{"api_key": "k"}))
	assert.ErrorIs(t, err, integrationdomain.ErrUnavailable)
}

func TestAdaptersRequireCredentials(t *testing.T) {
	log := zap.NewNop()
	adapters := []integrationdomain.Adapter{
		NewPennylane("http://unused", nil, log, fixedNow),
		NewIndy("http://unused", nil, log, fixedNow),
		NewQonto("http://unused", nil, log, fixedNow),
	}
	for _, a := range adapters {
		_, err := a.Sync(context.Background(), syncRequest(a.Provider(), map[string]any{}))
		assert.ErrorIs(t, err, integrationdomain.ErrInvalidConfig, a.Provider())
	}
}

func TestIndySyncsInvoicesOnly(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices", r.URL.Path)
		var inv indyInvoice
		require.NoError(t, json.NewDecoder(r.Body).Decode(&inv))
		assert.NotEmpty(t, inv.Lines)
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := NewIndy(srv.URL, srv.Client(), zap.NewNop(), fixedNow)
	result, err := a.Sync(context.Background(), syncRequest(integrationdomain.ProviderIndy, map[string]any{"api_key": "k"}))
	require.NoError(t, err)
	assert.Equal(t, integrationdomain.SyncCounts{Invoices: 2}, result.Synced)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQontoPaginatesTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme:s3cret", r.Header.Get("Authorization"))
		assert.Equal(t, "FR76", r.URL.Query().Get("iban"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("settled_at_from"))
		assert.Equal(t, "2024-03-31T23:59:59Z", r.URL.Query().Get("settled_at_to"))
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"transactions":[{"transaction_id":"t1"},{"transaction_id":"t2"}],"meta":{"next_page":2}}`))
		default:
			_, _ = w.Write([]byte(`{"transactions":[{"transaction_id":"t3"}],"meta":{"next_page":null}}`))
		}
	}))
	defer srv.Close()

	a := NewQonto(srv.URL, srv.Client(), zap.NewNop(), fixedNow)
	result, err := a.Sync(context.Background(), syncRequest(integrationdomain.ProviderQonto, map[string]any{
		"login": "acme", "secret_key": "s3cret", "iban": "FR76",
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Synced.Transactions)
	assert.Equal(t, 3, result.Synced.Total())
}

func TestDemoAdapter(t *testing.T) {
	req := syncRequest(integrationdomain.ProviderPennylane, nil)
	result, err := NewDemo(integrationdomain.ProviderPennylane, fixedNow).Sync(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, integrationdomain.SyncCounts{Invoices: 2, Expenses: 1}, result.Synced)
	assert.Equal(t, "demo", result.Message)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDemo(integrationdomain.ProviderIndy, fixedNow).Sync(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryOf(t *testing.T) {
	r := RegistryOf(NewDemo(integrationdomain.ProviderQonto, fixedNow))
	_, ok := r.Get(integrationdomain.ProviderQonto)
	assert.True(t, ok)
	_, ok = r.Get(integrationdomain.ProviderExportFEC)
	assert.False(t, ok)
}
