package service

import (
	"strings"

	"github.com/chantierpro/finance/internal/config"
)

// Labels are the EcritureLib templates.
type Labels struct {
	Invoice         string
	InvoiceVAT      string
	ExpenseFallback string
	ExpenseVAT      string
}

func DefaultLabels() Labels {
	return LabelsFromConfig(config.DefaultAnalyticsConfig().Ledger)
}

func LabelsFromConfig(cfg config.LedgerConfig) Labels {
	defaults := config.DefaultAnalyticsConfig().Ledger
	return Labels{
		Invoice:         firstNonEmpty(cfg.InvoiceLabel, defaults.InvoiceLabel),
		InvoiceVAT:      firstNonEmpty(cfg.InvoiceVATLabel, defaults.InvoiceVATLabel),
		ExpenseFallback: firstNonEmpty(cfg.ExpenseFallback, defaults.ExpenseFallback),
		ExpenseVAT:      firstNonEmpty(cfg.ExpenseVATLabel, defaults.ExpenseVATLabel),
	}
}

func (l Labels) invoice(number string) string {
	return strings.ReplaceAll(l.Invoice, "{number}", number)
}

func (l Labels) invoiceVAT(number string) string {
	return strings.ReplaceAll(l.InvoiceVAT, "{number}", number)
}

func (l Labels) expense(description string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return l.ExpenseFallback
}

func (l Labels) expenseVAT(description string) string {
	return strings.ReplaceAll(l.ExpenseVAT, "{label}", l.expense(description))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
