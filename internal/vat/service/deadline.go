package service

import (
	"time"

	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
)

const filingDay = 24

var monthNames = [...]string{
	"janvier", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
}

// quarterFilings maps each quarter to the month its return is due, counted
// from January of the quarter's year. T4 is filed in February of the
// following year.
var quarterFilings = []struct {
	label string
	month time.Month
	years int
}{
	{label: "T1", month: time.May},
	{label: "T2", month: time.August},
	{label: "T3", month: time.November},
	{label: "T4", month: time.February, years: 1},
}

// NextDeadline returns the first filing date strictly after now.
func NextDeadline(regime vatdomain.Regime, now time.Time) (vatdomain.Deadline, bool) {
	switch regime {
	case vatdomain.RegimeMonthly:
		next := time.Date(now.Year(), now.Month()+1, filingDay, 0, 0, 0, 0, now.Location())
		return vatdomain.Deadline{
			Regime: regime,
			Date:   next,
			Period: monthNames[now.Month()-1],
		}, true

	case vatdomain.RegimeQuarterly:
		var best vatdomain.Deadline
		found := false
		// the previous year's T4 may still be ahead in January
		for _, year := range []int{now.Year() - 1, now.Year()} {
			for _, q := range quarterFilings {
				date := time.Date(year+q.years, q.month, filingDay, 0, 0, 0, 0, now.Location())
				if !date.After(now) {
					continue
				}
				if !found || date.Before(best.Date) {
					best = vatdomain.Deadline{Regime: regime, Date: date, Period: q.label}
					found = true
				}
			}
		}
		return best, found

	default:
		return vatdomain.Deadline{}, false
	}
}
