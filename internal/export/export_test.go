package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse(datasetdomain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixture() datasetdomain.Dataset {
	due := day("2024-04-14")
	return datasetdomain.Dataset{
		Clients:  []datasetdomain.Client{{ID: "c1", Name: "Dupont; Fils", Email: "dupont@example.fr"}},
		Projects: []datasetdomain.Project{{ID: "p1", Name: "Rénovation cuisine"}},
		Documents: []datasetdomain.Document{
			{
				ID: "i1", Number: "F-2024-001", Type: datasetdomain.DocumentTypeInvoice,
				Status: datasetdomain.DocumentStatusPaid, ClientID: "c1", ProjectID: "p1",
				Date: day("2024-03-15"), DueDate: &due, VATRate: d("20"),
				Lines: []datasetdomain.LineItem{{Quantity: d("2"), UnitPrice: d("500")}},
			},
			{
				ID: "q1", Number: "D-2024-002", Type: datasetdomain.DocumentTypeQuote,
				Status: datasetdomain.DocumentStatusSent, ClientID: "unknown",
				Date: day("2024-03-20"), VATRate: d("5.5"),
				Lines: []datasetdomain.LineItem{{Quantity: d("1"), UnitPrice: d("100")}},
			},
		},
		Expenses: []datasetdomain.Expense{{
			ID: "e1", ProjectID: "p1", Date: day("2024-03-18"), Description: `Carrelage "grand format"`,
			Amount: d("250"), VATRate: d("20"), Category: datasetdomain.ExpenseCategoryMaterials,
			Supplier: "Point P", PaymentMethod: "transfer",
		}},
	}
}

func readCSV(t *testing.T, raw string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = Delimiter
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteInvoices(t *testing.T) {
	ds := fixture()
	rows := InvoiceRows(datasetdomain.NewIndex(ds), ds.Documents)

	var buf bytes.Buffer
	require.NoError(t, WriteInvoices(&buf, rows))

	assert.True(t, strings.HasPrefix(buf.String(),
		"Numero;Date;Date Echeance;Type;Statut;Client;Email Client;Total HT;Taux TVA;Montant TVA;Total TTC\n"))
	assert.Contains(t, buf.String(), `"Dupont; Fils"`)

	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"F-2024-001", "2024-03-15", "2024-04-14", "Facture", "paid",
		"Dupont; Fils", "dupont@example.fr", "1000.00", "20", "200.00", "1200.00",
	}, records[1])
	assert.Equal(t, []string{
		"D-2024-002", "2024-03-20", "2024-03-20", "Devis", "sent",
		"", "", "100.00", "5.5", "5.50", "105.50",
	}, records[2])
}

func TestInvoiceRowsDueDateDefaultsToDocumentDate(t *testing.T) {
	var zero time.Time
	docs := []datasetdomain.Document{
		{Number: "F-1", Type: datasetdomain.DocumentTypeInvoice, Date: day("2024-05-02")},
		{Number: "F-2", Type: datasetdomain.DocumentTypeInvoice, Date: day("2024-05-03"), DueDate: &zero},
	}
	rows := InvoiceRows(datasetdomain.NewIndex(datasetdomain.Dataset{}), docs)

	require.Len(t, rows, 2)
	assert.Equal(t, "2024-05-02", rows[0].DueDate)
	assert.Equal(t, "2024-05-03", rows[1].DueDate)
}

func TestWriteExpenses(t *testing.T) {
	ds := fixture()
	rows := ExpenseRows(datasetdomain.NewIndex(ds), ds.Expenses)

	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, rows))

	assert.Contains(t, buf.String(), `"Carrelage ""grand format"""`)
	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, ExpenseHeader, records[0])
	assert.Equal(t, []string{
		"2024-03-18", `Carrelage "grand format"`, "Point P", "Rénovation cuisine", "materials",
		"250.00", "20", "50.00", "300.00", "transfer",
	}, records[1])
}

func TestWriteEmptyExportsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, nil))
	assert.Equal(t, strings.Join(ExpenseHeader, ";")+"\n", buf.String())
}

func TestWriteDeclaration(t *testing.T) {
	decl := vatdomain.Declaration{Lines: []vatdomain.CA3Line{
		{Code: "08", Label: "TVA 20%", Amount: d("200")},
		{Code: "28", Label: "TVA nette due", Amount: d("-12.5")},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteDeclaration(&buf, decl))
	assert.Equal(t, "Ligne;Libelle;Montant\n08;TVA 20%;200.00\n28;TVA nette due;-12.50\n", buf.String())
}

func TestParseEncoding(t *testing.T) {
	cases := map[string]Encoding{
		"":             EncodingUTF8,
		"UTF-8":        EncodingUTF8,
		"excel":        EncodingUTF8BOM,
		"utf-8-bom":    EncodingUTF8BOM,
		"cp1252":       EncodingWindows1252,
		"windows-1252": EncodingWindows1252,
	}
	for raw, want := range cases {
		got, err := ParseEncoding(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseEncoding("ebcdic")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestNewWriterEncodings(t *testing.T) {
	write := func(enc Encoding, s string) []byte {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, enc)
		require.NoError(t, err)
		_, err = w.Write([]byte(s))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	assert.Equal(t, []byte("é"), write(EncodingUTF8, "é"))
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF, 0xC3, 0xA9}, write(EncodingUTF8BOM, "é"))
	assert.Equal(t, []byte{0xE9, 0x80}, write(EncodingWindows1252, "é€"))
	assert.Equal(t, []byte("?"), write(EncodingWindows1252, "✓"))
}

func TestWriteWorkbook(t *testing.T) {
	ds := fixture()
	idx := datasetdomain.NewIndex(ds)
	wb := Workbook{
		Invoices: InvoiceRows(idx, ds.Documents),
		Expenses: ExpenseRows(idx, ds.Expenses),
		Summary: vatdomain.Summary{
			Collected:  d("200"),
			Deductible: d("50"),
			Net:        d("150"),
			Buckets:    []vatdomain.Bucket{{Rate: d("20"), Base: d("1000"), Collected: d("200"), Deductible: d("50")}},
		},
		Declaration: vatdomain.Declaration{Lines: []vatdomain.CA3Line{{Code: "28", Label: "TVA nette due", Amount: d("150")}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInvoices, SheetExpenses, SheetVAT}, f.GetSheetList())

	number, err := f.GetCellValue(SheetInvoices, "A2")
	require.NoError(t, err)
	assert.Equal(t, "F-2024-001", number)

	raw, err := f.GetCellValue(SheetInvoices, "K2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1200", raw)

	supplier, err := f.GetCellValue(SheetExpenses, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Point P", supplier)

	rows, err := f.GetRows(SheetVAT)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Taux", rows[0][0])
	assert.Equal(t, "TVA a payer", rows[3][0])
	assert.Equal(t, "28", rows[len(rows)-1][0])
}
