package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var ErrEmptyPeriod = errors.New("vat_report_period_required")

// VATReport is the printable VAT position of a period. Amounts are already
// formatted by the caller.
type VATReport struct {
	CompanyName string
	CompanyID   string
	VATNumber   string
	Address     string

	Period      string
	GeneratedAt string
	Deadline    string

	Buckets    []VATReportBucket
	Collected  string
	Deductible string
	NetLabel   string
	Net        string

	Lines []DeclarationLine
}

type VATReportBucket struct {
	Rate       string
	Base       string
	Collected  string
	Deductible string
}

type DeclarationLine struct {
	Code   string
	Label  string
	Amount string
}

func (p *PDFProvider) GenerateVATReport(ctx context.Context, report VATReport) (io.Reader, error) {
	if report.Period == "" {
		return nil, ErrEmptyPeriod
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, "Synthese TVA", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, report.Period, props.Text{
			Size:  10,
			Align: align.Right,
			Top:   4,
		}),
	)

	// Company
	m.AddRow(24,
		col.New(6).Add(
			text.New(report.CompanyName, props.Text{Style: fontstyle.Bold}),
			text.New(report.Address, props.Text{Top: 5}),
			text.New("SIREN: "+report.CompanyID, props.Text{Top: 10}),
			text.New("TVA intracommunautaire: "+report.VATNumber, props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New("Edite le "+report.GeneratedAt, props.Text{Align: align.Right}),
			text.New(deadlineText(report.Deadline), props.Text{Top: 5, Align: align.Right}),
		),
	)

	m.AddRows(bucketRows(report)...)
	m.AddRows(declarationRows(report.Lines)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func deadlineText(deadline string) string {
	if deadline == "" {
		return "Aucune declaration due"
	}
	return "Prochaine echeance: " + deadline
}

var (
	labelText  = props.Text{Size: 9}
	amountText = props.Text{Size: 9, Align: align.Right}
	boldLabel  = props.Text{Size: 9, Style: fontstyle.Bold}
	boldAmount = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
)

func separator() core.Row {
	return row.New(2).Add(line.NewCol(12))
}

func bucketRows(report VATReport) []core.Row {
	rows := []core.Row{
		row.New(12).Add(text.NewCol(12, "TVA par taux", props.Text{Size: 12, Style: fontstyle.Bold, Top: 4})),
		row.New(8).Add(
			text.NewCol(3, "Taux", boldLabel),
			text.NewCol(3, "Base HT", boldAmount),
			text.NewCol(3, "TVA collectee", boldAmount),
			text.NewCol(3, "TVA deductible", boldAmount),
		),
		separator(),
	}
	for _, b := range report.Buckets {
		rows = append(rows, row.New(7).Add(
			text.NewCol(3, b.Rate+" %", labelText),
			text.NewCol(3, b.Base, amountText),
			text.NewCol(3, b.Collected, amountText),
			text.NewCol(3, b.Deductible, amountText),
		))
	}
	return append(rows,
		separator(),
		row.New(8).Add(
			text.NewCol(6, "Total", boldLabel),
			text.NewCol(3, report.Collected, boldAmount),
			text.NewCol(3, report.Deductible, boldAmount),
		),
		row.New(8).Add(
			col.New(6),
			text.NewCol(3, report.NetLabel, boldLabel),
			text.NewCol(3, report.Net, boldAmount),
		),
	)
}

// declarationRows lists the CA3 boxes.
func declarationRows(lines []DeclarationLine) []core.Row {
	if len(lines) == 0 {
		return nil
	}
	rows := []core.Row{
		row.New(12).Add(text.NewCol(12, "Declaration CA3", props.Text{Size: 12, Style: fontstyle.Bold, Top: 4})),
		row.New(8).Add(
			text.NewCol(2, "Ligne", boldLabel),
			text.NewCol(7, "Libelle", boldLabel),
			text.NewCol(3, "Montant", boldAmount),
		),
		separator(),
	}
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			text.NewCol(2, l.Code, labelText),
			text.NewCol(7, l.Label, labelText),
			text.NewCol(3, l.Amount, amountText),
		))
	}
	return rows
}
