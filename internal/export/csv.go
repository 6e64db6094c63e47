// Package export renders invoices, expenses and VAT figures as CSV and XLSX
// files for accountants.
package export

import (
	"encoding/csv"
	"io"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
)

const Delimiter = ';'

var DeclarationHeader = []string{"Ligne", "Libelle", "Montant"}

func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	return cw
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := newCSVWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func WriteInvoices(w io.Writer, rows []InvoiceRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Strings())
	}
	return writeAll(w, InvoiceHeader, records)
}

func WriteExpenses(w io.Writer, rows []ExpenseRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Strings())
	}
	return writeAll(w, ExpenseHeader, records)
}

// WriteDeclaration writes the CA3 boxes, one per row.
func WriteDeclaration(w io.Writer, decl vatdomain.Declaration) error {
	records := make([][]string, 0, len(decl.Lines))
	for _, l := range decl.Lines {
		records = append(records, []string{l.Code, l.Label, Money(l.Amount)})
	}
	return writeAll(w, DeclarationHeader, records)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(datasetdomain.DateLayout)
}
