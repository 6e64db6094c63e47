package service

import (
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	"github.com/shopspring/decimal"
)

// CalculateMargin builds the profitability record of one project. Every
// collection is read through idx, which groups by project id, so records of
// other projects never leak in.
func CalculateMargin(idx *datasetdomain.Index, project datasetdomain.Project, policy margindomain.Policy) margindomain.Record {
	documents := idx.Documents(project.ID)
	expenses := idx.Expenses(project.ID)
	entries := idx.TimeEntries(project.ID)
	adjustments := idx.Adjustments(project.ID)

	quoteRevenue := decimal.Zero
	collected := decimal.Zero
	pending := decimal.Zero
	for _, doc := range documents {
		total := doc.PreTaxTotal()
		if datasetdomain.RevenueRecognized.Contains(doc.Status) {
			quoteRevenue = quoteRevenue.Add(total)
		}
		switch {
		case datasetdomain.Collected.Contains(doc.Status):
			collected = collected.Add(total)
		case datasetdomain.PendingCollection.Contains(doc.Status):
			pending = pending.Add(total)
		}
	}

	projected := quoteRevenue
	if projected.IsZero() {
		projected = project.EstimatedBudget
	}

	revenueAdj := decimal.Zero
	expenseAdj := decimal.Zero
	for _, adj := range adjustments {
		switch adj.Kind {
		case datasetdomain.AdjustmentKindRevenue:
			revenueAdj = revenueAdj.Add(adj.Amount)
		case datasetdomain.AdjustmentKindExpense:
			expenseAdj = expenseAdj.Add(adj.Amount)
		}
	}

	materials := decimal.Zero
	for _, exp := range expenses {
		materials = materials.Add(exp.Amount)
	}

	hours := decimal.Zero
	labor := decimal.Zero
	for _, entry := range entries {
		hours = hours.Add(entry.Hours)
		rate := idx.HourlyRateFor(entry.EmployeeID, policy.RateSources)
		labor = labor.Add(entry.Hours.Mul(rate))
	}

	totalRevenue := projected.Add(revenueAdj)
	totalCost := materials.Add(labor).Add(expenseAdj)
	grossMargin := totalRevenue.Sub(totalCost)
	grossRate := datasetdomain.Percent(grossMargin, totalRevenue)
	cashMargin := collected.Sub(totalCost)
	cashRate := datasetdomain.Percent(cashMargin, collected)

	return margindomain.Record{
		ProjectID:          project.ID,
		ProjectName:        project.Name,
		Status:             project.Status,
		Progress:           project.Progress,
		ProjectedRevenue:   projected,
		QuoteRevenue:       quoteRevenue,
		CollectedRevenue:   collected,
		PendingRevenue:     pending,
		RevenueAdjustments: revenueAdj,
		TotalRevenue:       totalRevenue,
		MaterialCost:       materials,
		LaborCost:          labor,
		OtherCost:          expenseAdj,
		TotalCost:          totalCost,
		TotalHours:         hours,
		GrossMargin:        grossMargin,
		GrossMarginRate:    grossRate,
		CashMargin:         cashMargin,
		CashMarginRate:     cashRate,
		Risk:               policy.Thresholds.Classify(grossRate),
		DocumentCount:      len(documents),
		ExpenseCount:       len(expenses),
		TimeEntryCount:     len(entries),
	}
}
