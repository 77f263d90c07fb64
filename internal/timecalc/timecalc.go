package timecalc

import (
	"fmt"
	"time"
)

// FormatHoursMinutes formats a duration as zero-padded HH:MM, floor-divided
// from total seconds.
func FormatHoursMinutes(d time.Duration) string {
	secs := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/3600, (secs/60)%60)
}

// FormatTotalHours formats a duration as H:MM without zero-padding the hours,
// for grand-total rows that may exceed two digits.
func FormatTotalHours(d time.Duration) string {
	secs := int64(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/3600, (secs/60)%60)
}

// FormatAmount formats a monetary amount to two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Clock formats the time-of-day portion of t as HH:MM.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// StartOfYear returns midnight of January 1 of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
