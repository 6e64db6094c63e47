package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	fecservice "github.com/chantierpro/finance/internal/fec/service"
	"github.com/chantierpro/finance/internal/providers/pdf"
	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	vatservice "github.com/chantierpro/finance/internal/vat/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(encoding string) reportingdomain.Service {
	log := zap.NewNop()
	c := clock.NewFakeClock(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC))
	return NewService(Params{
		Cfg:   config.Config{ExportEncoding: encoding},
		Log:   log,
		FEC:   fecservice.NewService(fecservice.Params{Log: log}),
		VAT:   vatservice.NewService(vatservice.Params{Log: log, Clock: c}),
		PDF:   pdf.New(),
		Clock: c,
	})
}

func sample() (datasetdomain.Dataset, datasetdomain.Period) {
	period, _ := datasetdomain.ParsePeriod("2024-01-01", "2024-03-31")
	day := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	return datasetdomain.Dataset{
		Company: datasetdomain.Company{Name: "Rénov' Plus", SIREN: "123456789"},
		Clients: []datasetdomain.Client{{ID: "c1", Name: "Hélène Durand"}},
		Documents: []datasetdomain.Document{{
			ID: "i1", Number: "F-001", Type: datasetdomain.DocumentTypeInvoice, Status: datasetdomain.DocumentStatusSent,
			ClientID: "c1", Date: day, VATRate: d("20"),
			Lines: []datasetdomain.LineItem{{Quantity: d("1"), UnitPrice: d("1000")}},
		}},
		Expenses: []datasetdomain.Expense{{ID: "e1", Date: day, Amount: d("300"), VATRate: d("20"), Supplier: "Point P"}},
	}, period
}

func TestBundleProducesEveryArtifact(t *testing.T) {
	ds, period := sample()
	artifacts, err := newService("utf-8").Bundle(context.Background(), ds, period, reportingdomain.Options{})
	require.NoError(t, err)
	require.Len(t, artifacts, len(reportingdomain.Kinds))

	names := map[reportingdomain.Kind]string{}
	for _, a := range artifacts {
		assert.NotEmpty(t, a.Data, a.Kind)
		names[a.Kind] = a.FileName
	}
	assert.Equal(t, "123456789FEC20240331.txt", names[reportingdomain.KindFEC])
	assert.Equal(t, "renov-plus-factures-2024-01-01-2024-03-31.csv", names[reportingdomain.KindInvoicesCSV])
	assert.Equal(t, "renov-plus-comptabilite-2024-01-01-2024-03-31.xlsx", names[reportingdomain.KindWorkbook])
	assert.Equal(t, "renov-plus-tva-2024-01-01-2024-03-31.pdf", names[reportingdomain.KindVATPDF])
}

func TestRenderFEC(t *testing.T) {
	ds, period := sample()
	a, err := newService("").Render(context.Background(), ds, period, reportingdomain.KindFEC, reportingdomain.Options{})
	require.NoError(t, err)

	lines := strings.Split(string(a.Data), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "JournalCode|JournalLib|EcritureNum"))
	assert.Len(t, lines, 7, "header + 3 sales lines + 3 purchase lines")
}

func TestRenderCSVEncodings(t *testing.T) {
	ds, period := sample()
	svc := newService("utf-8-bom")

	a, err := svc.Render(context.Background(), ds, period, reportingdomain.KindInvoicesCSV, reportingdomain.Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, a.Data[:3])
	assert.Equal(t, "text/csv; charset=utf-8", a.ContentType)

	a, err = svc.Render(context.Background(), ds, period, reportingdomain.KindInvoicesCSV, reportingdomain.Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Contains(t, string(a.Data), "H\xe9l\xe8ne Durand")
	assert.Equal(t, "text/csv; charset=windows-1252", a.ContentType)

	_, err = svc.Render(context.Background(), ds, period, reportingdomain.KindInvoicesCSV, reportingdomain.Options{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestRenderCA3(t *testing.T) {
	ds, period := sample()
	a, err := newService("").Render(context.Background(), ds, period, reportingdomain.KindCA3CSV, reportingdomain.Options{})
	require.NoError(t, err)
	assert.Contains(t, string(a.Data), "\n28;")
	assert.Contains(t, string(a.Data), ";140.00\n", "200 collected - 60 deductible")
}

func TestRenderUnknownKind(t *testing.T) {
	ds, period := sample()
	_, err := newService("").Render(context.Background(), ds, period, "zip", reportingdomain.Options{})
	assert.ErrorIs(t, err, reportingdomain.ErrUnknownArtifact)
}

func TestFileNameFallsBackWithoutCompany(t *testing.T) {
	_, period := sample()
	assert.Equal(t, "chantierpro-depenses-2024-01-01-2024-03-31.csv", fileName(datasetdomain.Company{}, "depenses", period, "csv"))
}

func TestVATReportCredit(t *testing.T) {
	summary := vatdomain.Summary{Net: d("-25"), IsCredit: true}
	report := VATReport(datasetdomain.Company{}, summary, vatdomain.Declaration{}, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Credit de TVA", report.NetLabel)
	assert.Equal(t, "25.00 EUR", report.Net)
	assert.Equal(t, "2024-04-02", report.GeneratedAt)
}

func TestParseKind(t *testing.T) {
	k, err := reportingdomain.ParseKind(" Workbook.XLSX ")
	require.NoError(t, err)
	assert.Equal(t, reportingdomain.KindWorkbook, k)
	_, err = reportingdomain.ParseKind("fec.zip")
	assert.ErrorIs(t, err, reportingdomain.ErrUnknownArtifact)
}
