package service

import (
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/shopspring/decimal"
)

const (
	LineTaxableSales     = "01"
	LineStandardRate     = "08"
	LineIntermediateRate = "09"
	LineReducedRate      = "9B"
	LineGrossVAT         = "16"
	LineOtherDeductible  = "19"
	LineTotalDeductible  = "23"
	LineNetVAT           = "28"
)

// Declare maps a summary to CA3 boxes. Box 28 keeps the sign of the net
// position so a credit shows as a negative amount.
//
// Box 16 is the summary's collected total, so it also carries VAT at
// non-standard rates. When UnbucketedCount is positive it exceeds
// 08 + 09 + 9B by that VAT, and box 01 leaves out those bases.
func Declare(s vatdomain.Summary) vatdomain.Declaration {
	bucket := func(i int) vatdomain.Bucket {
		b, _ := s.Bucket(vatdomain.StandardRates[i])
		return b
	}
	standard, intermediate, reduced := bucket(0), bucket(1), bucket(2)
	taxable := decimal.Sum(decimal.Zero, standard.Base, intermediate.Base, reduced.Base)

	return vatdomain.Declaration{
		Period: s.Period,
		Lines: []vatdomain.CA3Line{
			{Code: LineTaxableSales, Label: "Ventes, prestations de services", Amount: taxable},
			{Code: LineStandardRate, Label: "Taux normal 20 %", Amount: standard.Collected},
			{Code: LineIntermediateRate, Label: "Taux reduit 10 %", Amount: intermediate.Collected},
			{Code: LineReducedRate, Label: "Taux reduit 5,5 %", Amount: reduced.Collected},
			{Code: LineGrossVAT, Label: "Total de la TVA brute due", Amount: s.Collected},
			{Code: LineOtherDeductible, Label: "Autres biens et services", Amount: s.Deductible},
			{Code: LineTotalDeductible, Label: "Total TVA deductible", Amount: s.Deductible},
			{Code: LineNetVAT, Label: "TVA nette due", Amount: s.Net},
		},
	}
}
