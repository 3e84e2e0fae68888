package calc

import (
	"fmt"
	"time"

	"github.com/ariebrainware/nutritrack/model"
)

// NoRecords is the check-in label for a patient with no weigh-ins.
const NoRecords = "no records"

// CheckInLabel humanizes the elapsed time between last and now in whole days.
// A last date in the future counts as today.
func CheckInLabel(last, now time.Time) string {
	days := int(now.Sub(last).Hours() / 24)
	if days < 0 {
		days = 0
	}
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	default:
		return plural(days/30, "month")
	}
}

// LastCheckIn labels the most recent weigh-in relative to now.
func LastCheckIn(history []model.WeightEntry, now time.Time) string {
	e, ok := Latest(history)
	if !ok {
		return NoRecords
	}
	return CheckInLabel(e.Date, now)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
