package service

import (
	"testing"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlertsScenarioTwo(t *testing.T) {
	policy := margindomain.DefaultPolicy()
	alerts := GenerateAlerts(marginOf(scenarioTwo("p2"), policy), policy)

	require.Len(t, alerts, 2)
	low := alerts[0]
	assert.Equal(t, margindomain.AlertLowMargin, low.Type)
	assert.Equal(t, margindomain.SeverityCritical, low.Severity)
	assert.Equal(t, "Marge tres faible", low.Title)
	require.NotNil(t, low.Suggestion)
	assertDec(t, "150", *low.Suggestion)
	assertDec(t, "5", *low.Value)

	assert.Equal(t, margindomain.AlertUnpaidInvoice, alerts[1].Type)
	assert.Equal(t, margindomain.SeverityInfo, alerts[1].Severity)
	assertDec(t, "1000", *alerts[1].Value)
}

func TestGenerateAlertsHealthyProjectOnlyReportsCollection(t *testing.T) {
	policy := margindomain.DefaultPolicy()
	alerts := GenerateAlerts(marginOf(scenarioOne("p1"), policy), policy)

	require.Len(t, alerts, 1)
	assert.Equal(t, margindomain.AlertUnpaidInvoice, alerts[0].Type)
}

func TestGenerateAlertsMarginBands(t *testing.T) {
	policy := margindomain.DefaultPolicy()
	cases := []struct {
		name     string
		rate     string
		margin   string
		typ      margindomain.AlertType
		severity margindomain.Severity
		none     bool
	}{
		{name: "negative", rate: "-10", margin: "-100", typ: margindomain.AlertNegativeMargin, severity: margindomain.SeverityCritical},
		{name: "critical", rate: "9", margin: "90", typ: margindomain.AlertLowMargin, severity: margindomain.SeverityCritical},
		{name: "warning", rate: "15", margin: "150", typ: margindomain.AlertLowMargin, severity: margindomain.SeverityWarning},
		{name: "good", rate: "20", margin: "200", none: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := margindomain.Record{
				ProjectID:       "p1",
				ProjectName:     "Cuisine",
				TotalRevenue:    d("1000"),
				GrossMargin:     d(tc.margin),
				GrossMarginRate: d(tc.rate),
			}
			alerts := GenerateAlerts(record, policy)
			if tc.none {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.typ, alerts[0].Type)
			assert.Equal(t, tc.severity, alerts[0].Severity)
			assert.Equal(t, "p1", alerts[0].ProjectID)
		})
	}
}

func TestGenerateAlertsBudgetOverrun(t *testing.T) {
	policy := margindomain.DefaultPolicy()
	record := margindomain.Record{
		ProjectID:       "p1",
		TotalRevenue:    d("1000"),
		TotalCost:       d("700"),
		GrossMargin:     d("300"),
		GrossMarginRate: d("30"),
		Progress:        d("50"),
	}
	alerts := GenerateAlerts(record, policy)

	require.Len(t, alerts, 1)
	assert.Equal(t, margindomain.AlertBudgetOverrun, alerts[0].Type)
	assert.Equal(t, margindomain.SeverityWarning, alerts[0].Severity)
	require.NotNil(t, alerts[0].Value)
	assertDec(t, "100", *alerts[0].Value)

	// within tolerance: expected 350, ceiling 420
	record.TotalCost = d("420")
	assert.Empty(t, GenerateAlerts(record, policy))
}

func TestGenerateAlertsOverrunWithoutExpectedCost(t *testing.T) {
	policy := margindomain.DefaultPolicy()
	ds := datasetdomain.Dataset{
		Projects: []datasetdomain.Project{{ID: "p1", Progress: d("30")}},
		Expenses: []datasetdomain.Expense{{ProjectID: "p1", Amount: d("100")}},
	}
	alerts := GenerateAlerts(marginOf(ds, policy), policy)

	var overrun *margindomain.Alert
	for i := range alerts {
		if alerts[i].Type == margindomain.AlertBudgetOverrun {
			overrun = &alerts[i]
		}
	}
	require.NotNil(t, overrun)
	assert.Nil(t, overrun.Value)
}

func TestGenerateAlertsNoOverrunBeforeWorkStarts(t *testing.T) {
	policy := margindomain.DefaultPolicy()
	record := margindomain.Record{
		TotalRevenue:    d("1000"),
		TotalCost:       d("900"),
		GrossMargin:     d("100"),
		GrossMarginRate: d("10"),
	}
	alerts := GenerateAlerts(record, policy)
	require.Len(t, alerts, 1)
	assert.Equal(t, margindomain.AlertLowMargin, alerts[0].Type)
}
