package settlement

import "time"

// =============================================================================
// PERIOD - Settlement period resolution
// =============================================================================

// Period is a settlement period in whole days. Start and End are
// day-granular UTC dates; Bounds() widens them to instants.
type Period struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod normalizes optional period bounds against the caller's
// clock. A missing start defaults to the first day of the current
// calendar month; a missing end defaults to the last day of the current
// month, computed by advancing to the next month's first day and
// stepping back one day (month lengths and leap years fall out of the
// calendar arithmetic).
func ResolvePeriod(start, end *time.Time, now time.Time) (Period, error) {
	today := now.UTC()

	var s time.Time
	if start != nil {
		s = dateOf(*start)
	} else {
		s = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	var e time.Time
	if end != nil {
		e = dateOf(*end)
	} else {
		firstOfNext := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		e = firstOfNext.AddDate(0, 0, -1)
	}

	if e.Before(s) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: s, End: e}, nil
}

// Bounds returns the period as instants: the first instant of the start
// day and the last instant of the end day, both UTC. These label the
// remittances produced for the period; unit selection is deliberately
// not filtered by them (everything owed is paid, tagged with the
// processing period).
func (p Period) Bounds() (time.Time, time.Time) {
	start := p.Start
	end := time.Date(p.End.Year(), p.End.Month(), p.End.Day(),
		23, 59, 59, 999999999, time.UTC)
	return start, end
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
