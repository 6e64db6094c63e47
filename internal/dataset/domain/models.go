// Package domain holds the source records the analytics engine reads. The
// records are owned by the caller; nothing in this module mutates them.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a worksite the business is executing for a client.
type Project struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          ProjectStatus   `json:"status"`
	ClientID        string          `json:"client_id,omitempty"`
	EstimatedBudget decimal.Decimal `json:"estimated_budget"`
	Progress        decimal.Decimal `json:"progress"`
}

// LineItem is a priced line on a quote or invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total returns quantity × unit price.
func (l LineItem) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Document is a quote or an invoice. Both share the same shape and are told
// apart by Type and Status.
type Document struct {
	ID        string         `json:"id"`
	Number    string         `json:"number"`
	Type      DocumentType   `json:"type"`
	Status    DocumentStatus `json:"status"`
	ProjectID string         `json:"project_id"`
	ClientID  string         `json:"client_id"`
	Date      time.Time      `json:"date"`
	DueDate   *time.Time     `json:"due_date,omitempty"`
	Lines     []LineItem     `json:"lines"`
	// VATRate is a percentage (20 means 20%). The loader fills in the default
	// rate when the source omits it; an explicit 0 stays 0.
	VATRate decimal.Decimal `json:"vat_rate"`
	// StoredPreTaxTotal is only used when the document carries no lines.
	StoredPreTaxTotal decimal.Decimal `json:"pre_tax_total"`
}

// PreTaxTotal returns Σ(quantity × unit price), or the stored total for
// documents that were imported without their lines.
func (d Document) PreTaxTotal() decimal.Decimal {
	if len(d.Lines) == 0 {
		return d.StoredPreTaxTotal
	}
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.Total())
	}
	return total
}

// Amounts returns the cent-rounded pre-tax, VAT and tax-inclusive totals.
func (d Document) Amounts() Amounts {
	return ComputeAmounts(d.PreTaxTotal(), d.VATRate)
}

// IsInvoice reports whether the document belongs in sales journals.
func (d Document) IsInvoice() bool {
	return d.Type == DocumentTypeInvoice
}

// DefaultPaymentMethod is used when an expense does not say how it was paid.
const DefaultPaymentMethod = "card"

// Expense is a purchase booked against a project.
type Expense struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"project_id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	Category      ExpenseCategory `json:"category"`
	Supplier      string          `json:"supplier"`
	PaymentMethod string          `json:"payment_method"`
}

// Amounts returns the cent-rounded pre-tax, VAT and tax-inclusive totals.
func (e Expense) Amounts() Amounts {
	return ComputeAmounts(e.Amount, e.VATRate)
}

// TimeEntry is a timesheet line.
type TimeEntry struct {
	ProjectID  string          `json:"project_id"`
	EmployeeID string          `json:"employee_id"`
	Hours      decimal.Decimal `json:"hours"`
}

// TeamMember carries the hourly cost used to price labor. HourlyRate is the
// current field; LoadedHourlyCost is kept for records written before it
// existed. A zero value means the field is unset.
type TeamMember struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	HourlyRate       decimal.Decimal `json:"hourly_rate"`
	LoadedHourlyCost decimal.Decimal `json:"loaded_hourly_cost"`
}

// Adjustment is a manual correction outside normal documents.
type Adjustment struct {
	ProjectID string          `json:"project_id"`
	Kind      AdjustmentKind  `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
}

// Client is the customer a document is addressed to.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	SIRET   string `json:"siret"`
}

// Company is the profile of the business issuing the exports.
type Company struct {
	Name      string `json:"name"`
	SIRET     string `json:"siret"`
	SIREN     string `json:"siren"`
	VATNumber string `json:"vat_number"`
	Address   string `json:"address"`
}

// Dataset bundles every collection handed to the engine.
type Dataset struct {
	Company     Company      `json:"company"`
	Projects    []Project    `json:"projects"`
	Documents   []Document   `json:"documents"`
	Expenses    []Expense    `json:"expenses"`
	TimeEntries []TimeEntry  `json:"time_entries"`
	Team        []TeamMember `json:"team"`
	Adjustments []Adjustment `json:"adjustments"`
	Clients     []Client     `json:"clients"`
}
