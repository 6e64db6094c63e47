package service

import (
	"fmt"

	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateAlerts derives the risk signals of one record. The order is fixed:
// at most one margin alert, then the collection alert, then the overrun alert.
func GenerateAlerts(record margindomain.Record, policy margindomain.Policy) []margindomain.Alert {
	alerts := make([]margindomain.Alert, 0, 3)
	if alert, ok := marginAlert(record, policy.Thresholds); ok {
		alerts = append(alerts, alert)
	}
	if record.PendingRevenue.IsPositive() {
		alerts = append(alerts, margindomain.Alert{
			Type:      margindomain.AlertUnpaidInvoice,
			Severity:  margindomain.SeverityInfo,
			Title:     "Factures en attente",
			Message:   fmt.Sprintf("%s EUR a encaisser sur %q", record.PendingRevenue.StringFixed(0), record.ProjectName),
			ProjectID: record.ProjectID,
			Value:     ptr(record.PendingRevenue),
		})
	}
	if alert, ok := overrunAlert(record, policy.Overrun); ok {
		alerts = append(alerts, alert)
	}
	return alerts
}

func marginAlert(record margindomain.Record, t margindomain.Thresholds) (margindomain.Alert, bool) {
	rate := record.GrossMarginRate
	switch {
	case rate.IsNegative():
		return margindomain.Alert{
			Type:      margindomain.AlertNegativeMargin,
			Severity:  margindomain.SeverityCritical,
			Title:     "Marge negative",
			Message:   fmt.Sprintf("Le chantier %q est en perte de %s EUR", record.ProjectName, record.GrossMargin.Abs().StringFixed(0)),
			ProjectID: record.ProjectID,
			Value:     ptr(rate),
		}, true
	case rate.LessThan(t.Critical):
		suggestion := t.Warning.Sub(rate).Mul(record.TotalRevenue).Div(hundred).Round(2)
		return margindomain.Alert{
			Type:     margindomain.AlertLowMargin,
			Severity: margindomain.SeverityCritical,
			Title:    "Marge tres faible",
			Message: fmt.Sprintf("Marge de seulement %s%% sur %q, augmentez le devis de %s EUR pour atteindre %s%%",
				rate.StringFixed(1), record.ProjectName, suggestion.StringFixed(0), t.Warning.String()),
			ProjectID:  record.ProjectID,
			Value:      ptr(rate),
			Suggestion: ptr(suggestion),
		}, true
	case rate.LessThan(t.Warning):
		return margindomain.Alert{
			Type:      margindomain.AlertLowMargin,
			Severity:  margindomain.SeverityWarning,
			Title:     "Marge a surveiller",
			Message:   fmt.Sprintf("Marge de %s%% sur %q", rate.StringFixed(1), record.ProjectName),
			ProjectID: record.ProjectID,
			Value:     ptr(rate),
		}, true
	default:
		return margindomain.Alert{}, false
	}
}

// overrunAlert compares actual cost with the cost expected at the current
// progress. With nothing expected yet, any cost is an overrun of undefined
// size, so the alert carries no value.
func overrunAlert(record margindomain.Record, p margindomain.OverrunPolicy) (margindomain.Alert, bool) {
	if !record.Progress.IsPositive() || !record.TotalCost.IsPositive() {
		return margindomain.Alert{}, false
	}
	expected := record.TotalRevenue.Mul(record.Progress).Div(hundred).Mul(p.CostRatio)
	if !record.TotalCost.GreaterThan(expected.Mul(p.Tolerance)) {
		return margindomain.Alert{}, false
	}
	alert := margindomain.Alert{
		Type:      margindomain.AlertBudgetOverrun,
		Severity:  margindomain.SeverityWarning,
		Title:     "Depassement de budget",
		Message:   fmt.Sprintf("Les depenses depassent le budget prevu a %s%% d'avancement", record.Progress.String()),
		ProjectID: record.ProjectID,
	}
	if expected.IsPositive() {
		overrun := record.TotalCost.Div(expected).Sub(decimal.NewFromInt(1)).Mul(hundred).Round(0)
		alert.Value = ptr(overrun)
	}
	return alert, true
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
