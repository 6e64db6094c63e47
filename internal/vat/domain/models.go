// Package domain holds the VAT position of a period and the CA3 return
// lines derived from it.
package domain

import (
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/shopspring/decimal"
)

// StandardRates are the French rates reported separately, in display order.
var StandardRates = []decimal.Decimal{
	decimal.NewFromInt(20),
	decimal.NewFromInt(10),
	decimal.RequireFromString("5.5"),
	decimal.Zero,
}

type Bucket struct {
	Rate       decimal.Decimal `json:"rate"`
	Base       decimal.Decimal `json:"base"`
	Collected  decimal.Decimal `json:"collected"`
	Deductible decimal.Decimal `json:"deductible"`
}

type Summary struct {
	Period     datasetdomain.Period `json:"period"`
	Collected  decimal.Decimal      `json:"collected"`
	Deductible decimal.Decimal      `json:"deductible"`
	Net        decimal.Decimal      `json:"net"`
	IsCredit   bool                 `json:"is_credit"`
	Buckets    []Bucket             `json:"buckets"`

	InvoiceCount int `json:"invoice_count"`
	ExpenseCount int `json:"expense_count"`
	// UnbucketedCount counts documents whose rate is not a standard rate.
	// They are included in the totals but in no bucket.
	UnbucketedCount int `json:"unbucketed_count"`
}

// Bucket returns the bucket of a standard rate.
func (s Summary) Bucket(rate decimal.Decimal) (Bucket, bool) {
	for _, b := range s.Buckets {
		if b.Rate.Equal(rate) {
			return b, true
		}
	}
	return Bucket{}, false
}

// CA3Line is one box of the monthly or quarterly VAT return.
type CA3Line struct {
	Code   string          `json:"code"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type Declaration struct {
	Period datasetdomain.Period `json:"period"`
	Lines  []CA3Line            `json:"lines"`
}

// Line returns the line with the given box code.
func (d Declaration) Line(code string) (CA3Line, bool) {
	for _, l := range d.Lines {
		if l.Code == code {
			return l, true
		}
	}
	return CA3Line{}, false
}

type Regime string

const (
	RegimeMonthly   Regime = "monthly"
	RegimeQuarterly Regime = "quarterly"
	RegimeFranchise Regime = "franchise"
)

// Deadline is the next filing date and the period it covers.
type Deadline struct {
	Regime Regime    `json:"regime"`
	Date   time.Time `json:"date"`
	Period string    `json:"period"`
}
