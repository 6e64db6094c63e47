package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by source records and queries.
const DateLayout = "2006-01-02"

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

// ParsePeriod reads two YYYY-MM-DD dates.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return Period{}, fmt.Errorf("%w: start: %v", ErrInvalidPeriod, err)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return Period{}, fmt.Errorf("%w: end: %v", ErrInvalidPeriod, err)
	}
	if e.Before(s) {
		return Period{}, fmt.Errorf("%w: end before start", ErrInvalidPeriod)
	}
	return Period{Start: s, End: e}, nil
}

// Contains reports whether the calendar day of t falls within the period,
// both bounds included.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	day := truncateDay(t)
	return !day.Before(truncateDay(p.Start)) && !day.After(truncateDay(p.End))
}

// String renders the period as start..end.
func (p Period) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
