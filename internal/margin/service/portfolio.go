package service

import (
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	"github.com/shopspring/decimal"
)

// AggregatePortfolio computes one record per project and folds them into
// portfolio totals. Alert counts always cover the full list; TopAlerts is
// only a display slice.
func AggregatePortfolio(ds datasetdomain.Dataset, policy margindomain.Policy) margindomain.Portfolio {
	idx := datasetdomain.NewIndex(ds)
	return aggregate(idx, ds.Projects, policy)
}

func aggregate(idx *datasetdomain.Index, projects []datasetdomain.Project, policy margindomain.Policy) margindomain.Portfolio {
	out := margindomain.Portfolio{
		ProjectCount:     len(projects),
		TotalRevenue:     decimal.Zero,
		CollectedRevenue: decimal.Zero,
		PendingRevenue:   decimal.Zero,
		TotalCost:        decimal.Zero,
		Records:          make([]margindomain.Record, 0, len(projects)),
		Alerts:           []margindomain.Alert{},
	}

	inProgressSum := decimal.Zero
	finishedSum := decimal.Zero
	for _, project := range projects {
		record := CalculateMargin(idx, project, policy)
		out.Records = append(out.Records, record)

		out.TotalRevenue = out.TotalRevenue.Add(record.TotalRevenue)
		out.CollectedRevenue = out.CollectedRevenue.Add(record.CollectedRevenue)
		out.PendingRevenue = out.PendingRevenue.Add(record.PendingRevenue)
		out.TotalCost = out.TotalCost.Add(record.TotalCost)

		switch record.Status {
		case datasetdomain.ProjectStatusInProgress:
			out.InProgressCount++
			inProgressSum = inProgressSum.Add(record.GrossMarginRate)
			if record.GrossMarginRate.LessThan(policy.Thresholds.Warning) {
				out.AtRiskCount++
			}
		case datasetdomain.ProjectStatusFinished:
			out.FinishedCount++
			finishedSum = finishedSum.Add(record.GrossMarginRate)
		}
		if record.GrossMarginRate.GreaterThanOrEqual(policy.Thresholds.Good) {
			out.ProfitableCount++
		}

		for _, alert := range GenerateAlerts(record, policy) {
			out.Alerts = append(out.Alerts, alert)
			switch alert.Severity {
			case margindomain.SeverityCritical:
				out.CriticalAlerts++
			case margindomain.SeverityWarning:
				out.WarningAlerts++
			}
		}
	}

	out.ToCollect = out.TotalRevenue.Sub(out.CollectedRevenue)
	out.Margin = out.TotalRevenue.Sub(out.TotalCost)
	out.MarginRate = datasetdomain.Percent(out.Margin, out.TotalRevenue)
	out.ProfitabilityRate = ratio(out.ProfitableCount, out.ProjectCount).Mul(hundred)
	out.InProgressAvgRate = average(inProgressSum, out.InProgressCount)
	out.FinishedAvgRate = average(finishedSum, out.FinishedCount)
	out.Trend = out.InProgressAvgRate.Sub(out.FinishedAvgRate)

	out.TotalAlerts = len(out.Alerts)
	top := policy.TopAlerts
	if top <= 0 || top > len(out.Alerts) {
		top = len(out.Alerts)
	}
	out.TopAlerts = out.Alerts[:top:top]
	return out
}

func average(sum decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

func ratio(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Div(decimal.NewFromInt(int64(whole)))
}
