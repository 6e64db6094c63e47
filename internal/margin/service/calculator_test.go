package service

import (
	"testing"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func quote(id, projectID string, status datasetdomain.DocumentStatus, amount string) datasetdomain.Document {
	return datasetdomain.Document{
		ID:        id,
		Number:    id,
		Type:      datasetdomain.DocumentTypeQuote,
		Status:    status,
		ProjectID: projectID,
		VATRate:   d("20"),
		Lines:     []datasetdomain.LineItem{{Description: "Travaux", Quantity: d("1"), UnitPrice: d(amount)}},
	}
}

// scenarioOne: accepted quote 1000, one expense 300, no timesheets.
func scenarioOne(projectID string) datasetdomain.Dataset {
	return datasetdomain.Dataset{
		Projects:  []datasetdomain.Project{{ID: projectID, Name: "Salle de bain", Status: datasetdomain.ProjectStatusInProgress}},
		Documents: []datasetdomain.Document{quote("q-"+projectID, projectID, datasetdomain.DocumentStatusAccepted, "1000")},
		Expenses:  []datasetdomain.Expense{{ID: "e-" + projectID, ProjectID: projectID, Amount: d("300"), VATRate: d("20")}},
	}
}

// scenarioTwo: accepted quote 1000, materials 700, labor 10h at 25.
func scenarioTwo(projectID string) datasetdomain.Dataset {
	return datasetdomain.Dataset{
		Projects:    []datasetdomain.Project{{ID: projectID, Name: "Toiture", Status: datasetdomain.ProjectStatusFinished}},
		Documents:   []datasetdomain.Document{quote("q-"+projectID, projectID, datasetdomain.DocumentStatusAccepted, "1000")},
		Expenses:    []datasetdomain.Expense{{ID: "e-" + projectID, ProjectID: projectID, Amount: d("700")}},
		TimeEntries: []datasetdomain.TimeEntry{{ProjectID: projectID, EmployeeID: "m1", Hours: d("10")}},
		Team:        []datasetdomain.TeamMember{{ID: "m1", HourlyRate: d("25")}},
	}
}

func marginOf(ds datasetdomain.Dataset, policy margindomain.Policy) margindomain.Record {
	return CalculateMargin(datasetdomain.NewIndex(ds), ds.Projects[0], policy)
}

func TestCalculateMarginScenarioOne(t *testing.T) {
	record := marginOf(scenarioOne("p1"), margindomain.DefaultPolicy())

	assertDec(t, "1000", record.TotalRevenue)
	assertDec(t, "300", record.TotalCost)
	assertDec(t, "700", record.GrossMargin)
	assertDec(t, "70", record.GrossMarginRate)
	assert.Equal(t, margindomain.RiskExcellent, record.Risk)
	assert.Equal(t, 1, record.DocumentCount)
	assert.Equal(t, 1, record.ExpenseCount)
}

func TestCalculateMarginScenarioTwo(t *testing.T) {
	record := marginOf(scenarioTwo("p2"), margindomain.DefaultPolicy())

	assertDec(t, "700", record.MaterialCost)
	assertDec(t, "250", record.LaborCost)
	assertDec(t, "10", record.TotalHours)
	assertDec(t, "5", record.GrossMarginRate)
	assert.Equal(t, margindomain.RiskCritical, record.Risk)
}

func TestCalculateMarginZeroRevenueGuard(t *testing.T) {
	ds := datasetdomain.Dataset{
		Projects: []datasetdomain.Project{{ID: "p1"}},
		Expenses: []datasetdomain.Expense{{ProjectID: "p1", Amount: d("120")}},
	}
	record := marginOf(ds, margindomain.DefaultPolicy())

	assert.True(t, record.TotalRevenue.IsZero())
	assert.True(t, record.GrossMarginRate.IsZero())
	assert.True(t, record.CashMarginRate.IsZero())
	assertDec(t, "-120", record.GrossMargin)
}

func TestCalculateMarginFallsBackToEstimatedBudget(t *testing.T) {
	ds := datasetdomain.Dataset{
		Projects:  []datasetdomain.Project{{ID: "p1", EstimatedBudget: d("8000")}},
		Documents: []datasetdomain.Document{quote("q1", "p1", datasetdomain.DocumentStatusSent, "9000")},
	}
	record := marginOf(ds, margindomain.DefaultPolicy())

	assert.True(t, record.QuoteRevenue.IsZero())
	assertDec(t, "8000", record.ProjectedRevenue)
	assertDec(t, "9000", record.PendingRevenue)
}

func TestCalculateMarginRevenuePartition(t *testing.T) {
	var docs []datasetdomain.Document
	statuses := []datasetdomain.DocumentStatus{
		datasetdomain.DocumentStatusDraft,
		datasetdomain.DocumentStatusSent,
		datasetdomain.DocumentStatusViewed,
		datasetdomain.DocumentStatusAccepted,
		datasetdomain.DocumentStatusDepositInvoiced,
		datasetdomain.DocumentStatusInvoiced,
		datasetdomain.DocumentStatusPaid,
		datasetdomain.DocumentStatusRefused,
	}
	for i, status := range statuses {
		docs = append(docs, quote(string(status), "p1", status, decimal.NewFromInt(int64(100*(i+1))).String()))
	}
	ds := datasetdomain.Dataset{Projects: []datasetdomain.Project{{ID: "p1"}}, Documents: docs}
	record := marginOf(ds, margindomain.DefaultPolicy())

	// accepted 400 + deposit 500 + invoiced 600 + paid 700
	assertDec(t, "2200", record.QuoteRevenue)
	assertDec(t, "700", record.CollectedRevenue)
	// sent 200 + viewed 300 + accepted 400 + deposit 500 + invoiced 600
	assertDec(t, "2000", record.PendingRevenue)
	// no document is both collected and pending
	assert.True(t, record.CollectedRevenue.Add(record.PendingRevenue).LessThanOrEqual(d("3600")))
}

func TestCalculateMarginIgnoresOtherProjects(t *testing.T) {
	ds := scenarioOne("p1")
	other := scenarioTwo("p2")
	ds.Projects = append(ds.Projects, other.Projects...)
	ds.Documents = append(ds.Documents, other.Documents...)
	ds.Expenses = append(ds.Expenses, other.Expenses...)
	ds.TimeEntries = append(ds.TimeEntries, other.TimeEntries...)
	ds.Team = append(ds.Team, other.Team...)

	record := marginOf(ds, margindomain.DefaultPolicy())
	assertDec(t, "700", record.GrossMargin)
	assert.True(t, record.LaborCost.IsZero())
}

func TestCalculateMarginAdjustmentsAndRateFallback(t *testing.T) {
	ds := datasetdomain.Dataset{
		Projects:  []datasetdomain.Project{{ID: "p1"}},
		Documents: []datasetdomain.Document{quote("q1", "p1", datasetdomain.DocumentStatusPaid, "2000")},
		TimeEntries: []datasetdomain.TimeEntry{
			{ProjectID: "p1", EmployeeID: "legacy", Hours: d("4")},
			{ProjectID: "p1", EmployeeID: "ghost", Hours: d("3")},
		},
		Team: []datasetdomain.TeamMember{{ID: "legacy", LoadedHourlyCost: d("30")}},
		Adjustments: []datasetdomain.Adjustment{
			{ProjectID: "p1", Kind: datasetdomain.AdjustmentKindRevenue, Amount: d("200")},
			{ProjectID: "p1", Kind: datasetdomain.AdjustmentKindExpense, Amount: d("80")},
			{ProjectID: "p1", Kind: "", Amount: d("999")},
		},
	}
	record := marginOf(ds, margindomain.DefaultPolicy())

	assertDec(t, "2200", record.TotalRevenue)
	assertDec(t, "120", record.LaborCost, "ghost employee costs nothing")
	assertDec(t, "80", record.OtherCost)
	assertDec(t, "200", record.TotalCost)
	assertDec(t, "7", record.TotalHours)
	assertDec(t, "1800", record.CashMargin)
	assertDec(t, "90", record.CashMarginRate)

	policy := margindomain.DefaultPolicy()
	policy.RateSources = []datasetdomain.RateSource{datasetdomain.RateSourceHourlyRate}
	record = marginOf(ds, policy)
	assert.True(t, record.LaborCost.IsZero(), "legacy field ignored when not configured")
}

func TestThresholdsClassify(t *testing.T) {
	th := margindomain.DefaultThresholds()
	cases := map[string]margindomain.RiskLevel{
		"-0.01": margindomain.RiskNegative,
		"0":     margindomain.RiskCritical,
		"9.99":  margindomain.RiskCritical,
		"10":    margindomain.RiskWarning,
		"20":    margindomain.RiskGood,
		"29.9":  margindomain.RiskGood,
		"30":    margindomain.RiskExcellent,
	}
	for rate, want := range cases {
		require.Equal(t, want, th.Classify(d(rate)), rate)
	}
}

func negativeRevenueDataset() datasetdomain.Dataset {
	return datasetdomain.Dataset{
		Projects: []datasetdomain.Project{{ID: "p1", Name: "Avoir", Status: datasetdomain.ProjectStatusInProgress}},
		Expenses: []datasetdomain.Expense{{ProjectID: "p1", Amount: d("100")}},
		Adjustments: []datasetdomain.Adjustment{
			{ProjectID: "p1", Kind: datasetdomain.AdjustmentKindRevenue, Amount: d("-500")},
		},
	}
}

func TestCalculateMarginNegativeRevenueRateIsZero(t *testing.T) {
	record := marginOf(negativeRevenueDataset(), margindomain.DefaultPolicy())

	assertDec(t, "-500", record.TotalRevenue)
	assertDec(t, "-600", record.GrossMargin)
	assert.True(t, record.GrossMarginRate.IsZero())
	assert.True(t, record.CashMarginRate.IsZero())
	assert.Equal(t, margindomain.RiskCritical, record.Risk)

	alerts := GenerateAlerts(record, margindomain.DefaultPolicy())
	require.Len(t, alerts, 1)
	assert.Equal(t, margindomain.AlertLowMargin, alerts[0].Type)
	assert.Equal(t, margindomain.SeverityCritical, alerts[0].Severity)
}
