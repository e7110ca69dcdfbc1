package market

import (
	"fmt"
	"time"
)

// Date layouts used across the venue APIs.
const (
	DateKeyLayout = "20060102"   // TWSE request format
	ISOLayout     = "2006-01-02" // FinMind request format
)

// Day normalizes a time to midnight UTC so dates compare cleanly.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether t falls on a weekday. Exchange holidays
// are deliberately not modelled: the venues report "no data" for them
// and the collector treats that as an ordinary missing day.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PreviousBusinessDays returns count+buffer weekday dates strictly
// before target, in ascending chronological order. The buffer absorbs
// business days that turn out to be exchange holidays with no data.
func PreviousBusinessDays(target time.Time, count, buffer int) []time.Time {
	n := count + buffer
	if n <= 0 {
		return nil
	}

	dates := make([]time.Time, 0, n)
	d := Day(target)
	for len(dates) < n {
		d = d.AddDate(0, 0, -1)
		if IsBusinessDay(d) {
			dates = append(dates, d)
		}
	}

	// Collected newest-first; reverse into chronological order.
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}

// LastTradingDay rolls a weekend date back to the preceding Friday.
// Weekday dates are returned unchanged.
func LastTradingDay(t time.Time) time.Time {
	d := Day(t)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	default:
		return d
	}
}

// ROCDate formats a date in the Republic-of-China calendar form
// YYY/MM/DD used by the TPEx endpoints.
func ROCDate(t time.Time) string {
	return fmt.Sprintf("%d/%02d/%02d", t.Year()-1911, int(t.Month()), t.Day())
}
