// Package domain defines the profitability figures computed per project and
// across the portfolio.
package domain

import (
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/shopspring/decimal"
)

// RiskLevel classifies a margin rate against the configured thresholds.
type RiskLevel string

const (
	RiskNegative  RiskLevel = "negative"
	RiskCritical  RiskLevel = "critical"
	RiskWarning   RiskLevel = "warning"
	RiskGood      RiskLevel = "good"
	RiskExcellent RiskLevel = "excellent"
)

// Thresholds are margin-rate percentages.
type Thresholds struct {
	Critical decimal.Decimal `json:"critical"`
	Warning  decimal.Decimal `json:"warning"`
	Good     decimal.Decimal `json:"good"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical: decimal.NewFromInt(10),
		Warning:  decimal.NewFromInt(20),
		Good:     decimal.NewFromInt(30),
	}
}

// Classify returns the first matching level: negative, then each threshold
// in increasing order.
func (t Thresholds) Classify(rate decimal.Decimal) RiskLevel {
	switch {
	case rate.IsNegative():
		return RiskNegative
	case rate.LessThan(t.Critical):
		return RiskCritical
	case rate.LessThan(t.Warning):
		return RiskWarning
	case rate.LessThan(t.Good):
		return RiskGood
	default:
		return RiskExcellent
	}
}

// OverrunPolicy drives the budget overrun alert.
type OverrunPolicy struct {
	CostRatio decimal.Decimal `json:"cost_ratio"`
	Tolerance decimal.Decimal `json:"tolerance"`
}

func DefaultOverrunPolicy() OverrunPolicy {
	return OverrunPolicy{
		CostRatio: decimal.RequireFromString("0.7"),
		Tolerance: decimal.RequireFromString("1.2"),
	}
}

// Policy gathers every tunable used by the calculators.
type Policy struct {
	Thresholds  Thresholds
	Overrun     OverrunPolicy
	TopAlerts   int
	RateSources []datasetdomain.RateSource
}

func DefaultPolicy() Policy {
	return Policy{
		Thresholds:  DefaultThresholds(),
		Overrun:     DefaultOverrunPolicy(),
		TopAlerts:   10,
		RateSources: datasetdomain.DefaultRateSources,
	}
}

// Record is the profitability of one project. It is built once and never
// modified afterwards.
type Record struct {
	ProjectID   string                      `json:"project_id"`
	ProjectName string                      `json:"project_name"`
	Status      datasetdomain.ProjectStatus `json:"status"`
	Progress    decimal.Decimal             `json:"progress"`

	ProjectedRevenue   decimal.Decimal `json:"projected_revenue"`
	QuoteRevenue       decimal.Decimal `json:"quote_revenue"`
	CollectedRevenue   decimal.Decimal `json:"collected_revenue"`
	PendingRevenue     decimal.Decimal `json:"pending_revenue"`
	RevenueAdjustments decimal.Decimal `json:"revenue_adjustments"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`

	MaterialCost decimal.Decimal `json:"material_cost"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	OtherCost    decimal.Decimal `json:"other_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalHours   decimal.Decimal `json:"total_hours"`

	GrossMargin     decimal.Decimal `json:"gross_margin"`
	GrossMarginRate decimal.Decimal `json:"gross_margin_rate"`
	CashMargin      decimal.Decimal `json:"cash_margin"`
	CashMarginRate  decimal.Decimal `json:"cash_margin_rate"`
	Risk            RiskLevel       `json:"risk"`

	DocumentCount  int `json:"document_count"`
	ExpenseCount   int `json:"expense_count"`
	TimeEntryCount int `json:"time_entry_count"`
}

// Portfolio aggregates every project record.
type Portfolio struct {
	ProjectCount    int `json:"project_count"`
	InProgressCount int `json:"in_progress_count"`
	FinishedCount   int `json:"finished_count"`

	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	CollectedRevenue decimal.Decimal `json:"collected_revenue"`
	// ToCollect is revenue not yet cashed: total revenue minus collected.
	ToCollect      decimal.Decimal `json:"to_collect"`
	PendingRevenue decimal.Decimal `json:"pending_revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Margin         decimal.Decimal `json:"margin"`
	MarginRate     decimal.Decimal `json:"margin_rate"`

	ProfitableCount   int             `json:"profitable_count"`
	AtRiskCount       int             `json:"at_risk_count"`
	ProfitabilityRate decimal.Decimal `json:"profitability_rate"`

	InProgressAvgRate decimal.Decimal `json:"in_progress_avg_rate"`
	FinishedAvgRate   decimal.Decimal `json:"finished_avg_rate"`
	// Trend is positive when current work outperforms finished work.
	Trend decimal.Decimal `json:"trend"`

	TotalAlerts    int     `json:"total_alerts"`
	CriticalAlerts int     `json:"critical_alerts"`
	WarningAlerts  int     `json:"warning_alerts"`
	Alerts         []Alert `json:"alerts"`
	TopAlerts      []Alert `json:"top_alerts"`

	Records []Record `json:"records"`
}
