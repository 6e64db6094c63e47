package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RateSource names a team member field that may carry the hourly cost.
type RateSource string

const (
	RateSourceHourlyRate       RateSource = "hourly_rate"
	RateSourceLoadedHourlyCost RateSource = "loaded_hourly_cost"
)

// DefaultRateSources tries the current field first, then the legacy one.
var DefaultRateSources = []RateSource{RateSourceHourlyRate, RateSourceLoadedHourlyCost}

// ParseRateSource validates a configured rate source name.
func ParseRateSource(raw string) (RateSource, error) {
	switch RateSource(strings.ToLower(strings.TrimSpace(raw))) {
	case RateSourceHourlyRate:
		return RateSourceHourlyRate, nil
	case RateSourceLoadedHourlyCost:
		return RateSourceLoadedHourlyCost, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRateSource, raw)
	}
}

func (m TeamMember) rate(source RateSource) decimal.Decimal {
	switch source {
	case RateSourceHourlyRate:
		return m.HourlyRate
	case RateSourceLoadedHourlyCost:
		return m.LoadedHourlyCost
	default:
		return decimal.Zero
	}
}

// ResolveHourlyRate walks sources in order and returns the first non-zero
// rate. A zero field counts as unset, so it falls through to the next source.
func (m TeamMember) ResolveHourlyRate(sources []RateSource) decimal.Decimal {
	for _, source := range sources {
		if r := m.rate(source); !r.IsZero() {
			return r
		}
	}
	return decimal.Zero
}

// HourlyRateFor resolves the rate of a possibly missing member. Unknown
// employees cost nothing.
func (i *Index) HourlyRateFor(employeeID string, sources []RateSource) decimal.Decimal {
	member, ok := i.Member(employeeID)
	if !ok {
		return decimal.Zero
	}
	return member.ResolveHourlyRate(sources)
}
