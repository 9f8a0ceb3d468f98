package order

import "time"

// Filter represents filter parameters for querying orders. All supplied
// filters are combined with logical AND.
type Filter struct {
	Status      *Status
	PackageSize *PackageSize
	CreatedFrom *time.Time
}

// SearchQuery looks up orders by customer name, optionally gated by PIN.
type SearchQuery struct {
	FirstName string
	LastName  string
	PIN       string
}

// Period is a relative time window applied to order creation timestamps.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Start returns the beginning of the window relative to now, or ok=false when
// the period does not constrain time.
func (p Period) Start(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return Period(s)
	default:
		return PeriodAll
	}
}
