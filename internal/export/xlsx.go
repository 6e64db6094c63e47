package export

import (
	"fmt"
	"io"

	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetInvoices = "Factures"
	SheetExpenses = "Depenses"
	SheetVAT      = "TVA"

	// numFmtMoney is the built-in "#,##0.00" format.
	numFmtMoney = 4
)

// Workbook is the content of the accountant workbook.
type Workbook struct {
	Invoices    []InvoiceRow
	Expenses    []ExpenseRow
	Summary     vatdomain.Summary
	Declaration vatdomain.Declaration
}

type sheetWriter struct {
	f     *excelize.File
	bold  int
	money int
}

// WriteWorkbook renders wb as an XLSX file with one sheet per collection.
// Amounts are written as numbers so they can be summed in a spreadsheet.
func WriteWorkbook(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return err
	}
	sw := sheetWriter{f: f, bold: bold, money: money}

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		return err
	}
	if err := sw.invoices(wb.Invoices); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetInvoices, err)
	}
	if _, err := f.NewSheet(SheetExpenses); err != nil {
		return err
	}
	if err := sw.expenses(wb.Expenses); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetExpenses, err)
	}
	if _, err := f.NewSheet(SheetVAT); err != nil {
		return err
	}
	if err := sw.vat(wb.Summary, wb.Declaration); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetVAT, err)
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func (sw sheetWriter) header(sheet string, row int, header []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.f.SetSheetRow(sheet, cell, &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), row)
	if err != nil {
		return err
	}
	return sw.f.SetCellStyle(sheet, cell, last, sw.bold)
}

// row writes values starting at column A; decimals become numbers with the
// money format.
func (sw sheetWriter) row(sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if d, ok := v.(decimal.Decimal); ok {
			if err := sw.f.SetCellFloat(sheet, cell, d.InexactFloat64(), -1, 64); err != nil {
				return err
			}
			if err := sw.f.SetCellStyle(sheet, cell, cell, sw.money); err != nil {
				return err
			}
			continue
		}
		if err := sw.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (sw sheetWriter) freezeHeader(sheet string) error {
	return sw.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (sw sheetWriter) invoices(rows []InvoiceRow) error {
	if err := sw.header(SheetInvoices, 1, InvoiceHeader); err != nil {
		return err
	}
	for i, r := range rows {
		err := sw.row(SheetInvoices, i+2,
			r.Number, r.Date, r.DueDate, r.Type, r.Status, r.ClientName, r.ClientEmail,
			r.Amounts.PreTax, r.VATRate.String(), r.Amounts.VAT, r.Amounts.WithTax,
		)
		if err != nil {
			return err
		}
	}
	return sw.freezeHeader(SheetInvoices)
}

func (sw sheetWriter) expenses(rows []ExpenseRow) error {
	if err := sw.header(SheetExpenses, 1, ExpenseHeader); err != nil {
		return err
	}
	for i, r := range rows {
		err := sw.row(SheetExpenses, i+2,
			r.Date, r.Description, r.Supplier, r.Project, r.Category,
			r.Amounts.PreTax, r.VATRate.String(), r.Amounts.VAT, r.Amounts.WithTax, r.PaymentMethod,
		)
		if err != nil {
			return err
		}
	}
	return sw.freezeHeader(SheetExpenses)
}

// vat lays out the per-rate buckets, the totals, then the CA3 boxes.
func (sw sheetWriter) vat(s vatdomain.Summary, decl vatdomain.Declaration) error {
	if err := sw.header(SheetVAT, 1, []string{"Taux", "Base HT", "TVA Collectee", "TVA Deductible"}); err != nil {
		return err
	}
	row := 2
	for _, b := range s.Buckets {
		if err := sw.row(SheetVAT, row, b.Rate.String(), b.Base, b.Collected, b.Deductible); err != nil {
			return err
		}
		row++
	}
	if err := sw.row(SheetVAT, row, "Total", "", s.Collected, s.Deductible); err != nil {
		return err
	}
	row++
	netLabel := "TVA a payer"
	if s.IsCredit {
		netLabel = "Credit de TVA"
	}
	if err := sw.row(SheetVAT, row, netLabel, "", s.Net.Abs()); err != nil {
		return err
	}

	row += 2
	if err := sw.header(SheetVAT, row, DeclarationHeader); err != nil {
		return err
	}
	for _, l := range decl.Lines {
		row++
		if err := sw.row(SheetVAT, row, l.Code, l.Label, l.Amount); err != nil {
			return err
		}
	}
	return sw.freezeHeader(SheetVAT)
}
