package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Amounts are the per-document figures shared by the VAT summary, the ledger
// and the CSV exports. PreTax and VAT are rounded to the cent and WithTax is
// their sum, so a ledger entry built from them always balances.
type Amounts struct {
	PreTax  decimal.Decimal
	VAT     decimal.Decimal
	WithTax decimal.Decimal
}

// ComputeAmounts derives cent-rounded totals from a pre-tax amount and a
// percentage rate.
func ComputeAmounts(preTax, rate decimal.Decimal) Amounts {
	base := preTax.Round(2)
	vat := VATOf(preTax, rate)
	return Amounts{
		PreTax:  base,
		VAT:     vat,
		WithTax: base.Add(vat),
	}
}

// VATOf returns preTax × rate / 100 rounded half away from zero to the cent.
func VATOf(preTax, rate decimal.Decimal) decimal.Decimal {
	return preTax.Mul(rate).Div(hundred).Round(2)
}

// Percent returns part / whole × 100, or exactly zero when whole is not
// positive. A negative base would turn a loss into a positive rate.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
