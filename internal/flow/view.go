package flow

import (
	"fmt"
	"time"
)

// StatusColor maps an appointment status to its badge color. Unknown
// statuses render neutral rather than failing.
func StatusColor(status string) string {
	switch status {
	case "PENDING":
		return "warning"
	case "CONFIRMED":
		return "success"
	case "COMPLETED":
		return "primary"
	case "CANCELLED":
		return "danger"
	default:
		return "neutral"
	}
}

// FormatDate renders the long weekday and month form, e.g.
// "Friday, October 2, 2026".
func FormatDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// FormatClock renders a 12-hour clock time, e.g. "2:30 PM".
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

// FormatDateTime renders the combined date and time for summaries.
func FormatDateTime(t time.Time) string {
	return FormatDate(t) + " at " + FormatClock(t)
}

// FormatAmount renders a whole-dollar consultation fee, e.g. "$150".
func FormatAmount(fee int64) string {
	return fmt.Sprintf("$%d", fee)
}
