// Package calendar builds the fixed six-week month grid used by the
// appointment view.
package calendar

import (
	"fmt"
	"time"

	"github.com/ariebrainware/nutritrack/model"
)

// Cells is the number of day cells in every grid.
const Cells = 42

// MaxVisible is how many appointments a cell lists before summarizing the rest.
const MaxVisible = 2

// Day is one grid cell.
type Day struct {
	Date           time.Time           `json:"date"`
	Day            int                 `json:"day"`
	IsCurrentMonth bool                `json:"isCurrentMonth"`
	IsToday        bool                `json:"isToday"`
	Appointments   []model.Appointment `json:"appointments"`
}

type dayKey struct {
	y int
	m time.Month
	d int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// Build returns the 42 cells for the month containing ref, starting on the
// Sunday on or before the 1st. Dates are computed in ref's location and
// appointments are bucketed by calendar date in that location, keeping the
// order of appts within each cell.
func Build(ref, today time.Time, appts []model.Appointment) []Day {
	loc := ref.Location()
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	buckets := make(map[dayKey][]model.Appointment)
	for _, a := range appts {
		k := keyOf(a.Date.In(loc))
		buckets[k] = append(buckets[k], a)
	}
	todayKey := keyOf(today.In(loc))

	days := make([]Day, Cells)
	for i := range days {
		d := start.AddDate(0, 0, i)
		k := keyOf(d)
		bucket := buckets[k]
		if bucket == nil {
			bucket = []model.Appointment{}
		}
		days[i] = Day{
			Date:           d,
			Day:            d.Day(),
			IsCurrentMonth: d.Month() == first.Month() && d.Year() == first.Year(),
			IsToday:        k == todayKey,
			Appointments:   bucket,
		}
	}
	return days
}

// Visible splits a cell's appointments into the ones listed directly and the
// count summarized as "+N more".
func Visible(d Day) ([]model.Appointment, int) {
	if len(d.Appointments) <= MaxVisible {
		return d.Appointments, 0
	}
	return d.Appointments[:MaxVisible], len(d.Appointments) - MaxVisible
}

// MoreLabel formats the overflow count of a cell, or "" when nothing is hidden.
func MoreLabel(hidden int) string {
	if hidden <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", hidden)
}

// NextMonth returns the first day of the month after ref.
func NextMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, ref.Location())
}

// PrevMonth returns the first day of the month before ref.
func PrevMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, ref.Location())
}

// MonthKey formats ref as YYYY-MM.
func MonthKey(ref time.Time) string {
	return ref.Format("2006-01")
}

// ParseMonth parses a YYYY-MM key in loc. An empty key yields the month of fallback.
func ParseMonth(key string, loc *time.Location, fallback time.Time) (time.Time, error) {
	if key == "" {
		f := fallback.In(loc)
		return time.Date(f.Year(), f.Month(), 1, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation("2006-01", key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", key, err)
	}
	return t, nil
}
