package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleDataset = `{
  "company": {"name": "Dupont Renovation", "siret": "12345678900012"},
  "projects": [
    {"id": "p1", "name": "Cuisine", "status": "in_progress", "estimated_budget": "5000", "progress": 40}
  ],
  "documents": [
    {"id": 7, "number": "F-001", "type": "invoice", "status": "paid", "project_id": "p1", "client_id": "c1",
     "date": "2024-03-15", "lines": [{"description": "Pose", "quantity": 2, "unit": "u", "unit_price": "500,50"}]},
    {"id": "d2", "number": "D-002", "type": "estimate", "status": "bogus", "project_id": "p1", "vat_rate": 0,
     "date": "not-a-date", "pre_tax_total": 300}
  ],
  "expenses": [
    {"id": "e1", "project_id": "p1", "date": "2024-03-20", "amount": "abc", "category": "materials", "supplier": "Leroy"}
  ],
  "time_entries": [{"project_id": "p1", "employee_id": "m1", "hours": 8}],
  "team": [{"id": "m1", "name": "Paul", "loaded_hourly_cost": 35}],
  "adjustments": [{"project_id": "p1", "kind": "revenue", "amount_ht": 150}],
  "clients": [{"id": "c1", "name": "Martin", "email": "not-an-email"}]
}`

func decodeSample(t *testing.T) (datasetdomain.Dataset, []datasetdomain.Warning) {
	t.Helper()
	ds, warnings, err := Decode(strings.NewReader(sampleDataset), decimal.NewFromInt(20), nil)
	require.NoError(t, err)
	return ds, warnings
}

func TestDecodeMapsRecords(t *testing.T) {
	ds, _ := decodeSample(t)

	require.Len(t, ds.Projects, 1)
	assert.Equal(t, datasetdomain.ProjectStatusInProgress, ds.Projects[0].Status)
	assert.True(t, ds.Projects[0].EstimatedBudget.Equal(decimal.NewFromInt(5000)))

	require.Len(t, ds.Documents, 2)
	invoice := ds.Documents[0]
	assert.Equal(t, "7", invoice.ID)
	assert.Equal(t, datasetdomain.DocumentTypeInvoice, invoice.Type)
	assert.Equal(t, datasetdomain.DocumentStatusPaid, invoice.Status)
	assert.True(t, invoice.PreTaxTotal().Equal(decimal.RequireFromString("1001")))
	assert.True(t, invoice.VATRate.Equal(decimal.NewFromInt(20)), "missing rate takes the default")
	assert.Equal(t, "2024-03-15", invoice.Date.Format(datasetdomain.DateLayout))

	assert.Equal(t, "123456789", ds.Company.SIREN, "siren derived from siret")
	assert.Equal(t, datasetdomain.DefaultPaymentMethod, ds.Expenses[0].PaymentMethod)
	assert.True(t, ds.Adjustments[0].Amount.Equal(decimal.NewFromInt(150)), "amount_ht fallback")
	assert.True(t, ds.Team[0].LoadedHourlyCost.Equal(decimal.NewFromInt(35)))
}

func TestDecodeRepairsMalformedValues(t *testing.T) {
	ds, warnings := decodeSample(t)

	quote := ds.Documents[1]
	assert.Equal(t, datasetdomain.DocumentTypeQuote, quote.Type)
	assert.Equal(t, datasetdomain.DocumentStatusDraft, quote.Status)
	assert.True(t, quote.VATRate.IsZero(), "explicit zero rate is kept")
	assert.True(t, quote.Date.IsZero())
	assert.True(t, quote.PreTaxTotal().Equal(decimal.NewFromInt(300)), "stored total used without lines")

	assert.True(t, ds.Expenses[0].Amount.IsZero())

	fields := make(map[string]bool)
	for _, w := range warnings {
		fields[w.Collection+"."+w.Field] = true
	}
	assert.True(t, fields["documents.type"])
	assert.True(t, fields["documents.status"])
	assert.True(t, fields["documents.date"])
	assert.True(t, fields["expenses.amount"])
	assert.True(t, fields["clients.Email"])
}

func TestDecodeRejectsBrokenJSON(t *testing.T) {
	_, _, err := Decode(strings.NewReader(`{"projects": [`), decimal.NewFromInt(20), nil)
	assert.ErrorIs(t, err, datasetdomain.ErrInvalidDataset)
}

func TestFileSourceLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0o600))

	cfg := config.DefaultAnalyticsConfig()
	cfg.DefaultVATRate = 10
	src := NewFileSourceAt(path, zap.NewNop(), config.NewStaticAnalyticsConfigHolder(cfg))

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Documents[0].VATRate.Equal(decimal.NewFromInt(10)))
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSourceAt(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop(), nil)
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, datasetdomain.ErrDatasetNotFound)
}
