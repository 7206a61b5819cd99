package timeutil

import "time"

const periodLayout = "2006-01-02"

// FormatPeriod renders an accounting period for reports. Open-ended bounds
// render as a dash.
func FormatPeriod(start, end *time.Time) string {
	return formatBound(start) + " to " + formatBound(end)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(periodLayout)
}

// ParseDay parses a YYYY-MM-DD query parameter.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(periodLayout, value)
}

// DayEnd returns the exclusive upper bound for a day-granular range.
func DayEnd(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}
