package domain

import "github.com/shopspring/decimal"

type AlertType string

const (
	AlertNegativeMargin AlertType = "negative_margin"
	AlertLowMargin      AlertType = "low_margin"
	AlertUnpaidInvoice  AlertType = "unpaid_invoice"
	AlertBudgetOverrun  AlertType = "budget_overrun"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Alert is a risk signal derived from a Record.
type Alert struct {
	Type      AlertType `json:"type"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ProjectID string    `json:"project_id"`
	// Value is the figure the alert is about: a margin rate, an amount to
	// collect or an overrun percentage. It is nil when the figure is undefined.
	Value *decimal.Decimal `json:"value,omitempty"`
	// Suggestion is the price increase that would bring the margin back to the
	// warning threshold.
	Suggestion *decimal.Decimal `json:"suggestion,omitempty"`
}
