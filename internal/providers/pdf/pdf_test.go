package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVATReport(t *testing.T) {
	p := New()
	r, err := p.GenerateVATReport(context.Background(), VATReport{
		CompanyName: "Renov Plus",
		CompanyID:   "123456789",
		Period:      "2024-01-01..2024-03-31",
		GeneratedAt: "2024-04-02",
		Deadline:    "2024-05-24 (T1 2024)",
		Buckets: []VATReportBucket{
			{Rate: "20", Base: "1000.00", Collected: "200.00", Deductible: "50.00"},
		},
		Collected:  "200.00",
		Deductible: "50.00",
		NetLabel:   "TVA a payer",
		Net:        "150.00",
		Lines:      []DeclarationLine{{Code: "28", Label: "TVA nette due", Amount: "150.00"}},
	})
	require.NoError(t, err)

	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestGenerateVATReportRequiresPeriod(t *testing.T) {
	_, err := New().GenerateVATReport(context.Background(), VATReport{})
	assert.ErrorIs(t, err, ErrEmptyPeriod)
}
