package service

import (
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/shopspring/decimal"
)

// Summarize computes the VAT position of a period. VAT is rounded to the
// cent per document before summing, as on the documents themselves.
func Summarize(ds datasetdomain.Dataset, period datasetdomain.Period) vatdomain.Summary {
	invoices := ds.InvoicesIn(period)
	expenses := ds.ExpensesIn(period)

	buckets := make([]vatdomain.Bucket, len(vatdomain.StandardRates))
	for i, rate := range vatdomain.StandardRates {
		buckets[i] = vatdomain.Bucket{Rate: rate, Base: decimal.Zero, Collected: decimal.Zero, Deductible: decimal.Zero}
	}
	bucketOf := func(rate decimal.Decimal) *vatdomain.Bucket {
		for i := range buckets {
			if buckets[i].Rate.Equal(rate) {
				return &buckets[i]
			}
		}
		return nil
	}

	out := vatdomain.Summary{
		Period:       period,
		Collected:    decimal.Zero,
		Deductible:   decimal.Zero,
		InvoiceCount: len(invoices),
		ExpenseCount: len(expenses),
	}
	for _, inv := range invoices {
		amounts := inv.Amounts()
		out.Collected = out.Collected.Add(amounts.VAT)
		if b := bucketOf(inv.VATRate); b != nil {
			b.Base = b.Base.Add(amounts.PreTax)
			b.Collected = b.Collected.Add(amounts.VAT)
		} else {
			out.UnbucketedCount++
		}
	}
	for _, exp := range expenses {
		amounts := exp.Amounts()
		out.Deductible = out.Deductible.Add(amounts.VAT)
		if b := bucketOf(exp.VATRate); b != nil {
			b.Deductible = b.Deductible.Add(amounts.VAT)
		} else {
			out.UnbucketedCount++
		}
	}

	out.Net = out.Collected.Sub(out.Deductible)
	out.IsCredit = out.Net.IsNegative()
	out.Buckets = buckets
	return out
}
