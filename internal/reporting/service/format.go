package service

import (
	"strings"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/chantierpro/finance/internal/export"
	"github.com/chantierpro/finance/internal/providers/pdf"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const defaultFilePrefix = "chantierpro"

// fileName builds "{company}-{label}-{start}-{end}.{ext}".
func fileName(company datasetdomain.Company, label string, period datasetdomain.Period, ext string) string {
	prefix := slug.Make(company.Name)
	if prefix == "" {
		prefix = defaultFilePrefix
	}
	return strings.Join([]string{
		prefix,
		label,
		period.Start.Format(datasetdomain.DateLayout),
		period.End.Format(datasetdomain.DateLayout),
	}, "-") + "." + ext
}

func euros(d decimal.Decimal) string {
	return export.Money(d) + " EUR"
}

// VATReport formats a summary and its declaration for printing.
func VATReport(company datasetdomain.Company, summary vatdomain.Summary, decl vatdomain.Declaration, now time.Time) pdf.VATReport {
	report := pdf.VATReport{
		CompanyName: company.Name,
		CompanyID:   company.SIREN,
		VATNumber:   company.VATNumber,
		Address:     company.Address,
		Period:      summary.Period.Start.Format(datasetdomain.DateLayout) + " au " + summary.Period.End.Format(datasetdomain.DateLayout),
		GeneratedAt: now.Format(datasetdomain.DateLayout),
		Collected:   euros(summary.Collected),
		Deductible:  euros(summary.Deductible),
		NetLabel:    "TVA a payer",
		Net:         euros(summary.Net.Abs()),
	}
	if summary.IsCredit {
		report.NetLabel = "Credit de TVA"
	}
	for _, b := range summary.Buckets {
		report.Buckets = append(report.Buckets, pdf.VATReportBucket{
			Rate:       b.Rate.String(),
			Base:       euros(b.Base),
			Collected:  euros(b.Collected),
			Deductible: euros(b.Deductible),
		})
	}
	for _, l := range decl.Lines {
		report.Lines = append(report.Lines, pdf.DeclarationLine{
			Code:   l.Code,
			Label:  l.Label,
			Amount: euros(l.Amount),
		})
	}
	return report
}
