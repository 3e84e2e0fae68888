package calendar

import (
	"testing"
	"time"

	"github.com/ariebrainware/nutritrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildAlwaysFortyTwoCells(t *testing.T) {
	ref := date(2020, 1, 15)
	for i := 0; i < 72; i++ {
		month := ref.AddDate(0, i, 0)
		days := Build(month, month, nil)
		require.Len(t, days, Cells, "month %s", MonthKey(month))

		assert.Equal(t, time.Sunday, days[0].Date.Weekday())
		for j := 1; j < len(days); j++ {
			assert.Equal(t, days[j-1].Date.AddDate(0, 0, 1), days[j].Date)
		}

		firstIdx := -1
		for j, d := range days {
			if d.Day == 1 && d.IsCurrentMonth {
				firstIdx = j
				break
			}
		}
		require.GreaterOrEqual(t, firstIdx, 0)
		assert.Less(t, firstIdx, 7)
		for j := 0; j < firstIdx; j++ {
			assert.False(t, days[j].IsCurrentMonth)
			assert.True(t, days[j].Date.Before(days[firstIdx].Date))
		}
	}
}

func TestBuildMonthStartingOnSunday(t *testing.T) {
	// September 2024 starts on a Sunday.
	days := Build(date(2024, 9, 20), date(2024, 9, 20), nil)
	assert.Equal(t, date(2024, 9, 1), days[0].Date)
	assert.True(t, days[0].IsCurrentMonth)
	assert.Equal(t, date(2024, 10, 12), days[41].Date)
}

func TestBuildFlagsToday(t *testing.T) {
	today := time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)
	days := Build(date(2024, 3, 1), today, nil)
	count := 0
	for _, d := range days {
		if d.IsToday {
			count++
			assert.Equal(t, 5, d.Day)
		}
	}
	assert.Equal(t, 1, count)

	other := Build(date(2024, 7, 1), today, nil)
	for _, d := range other {
		assert.False(t, d.IsToday)
	}
}

func TestBuildBucketsByCalendarDate(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a", Date: time.Date(2024, 3, 15, 23, 45, 0, 0, time.UTC), Time: "09:00"},
		{ID: "b", Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Time: "08:00"},
		{ID: "c", Date: time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC)},
		{ID: "d", Date: time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)},
	}
	days := Build(date(2024, 3, 1), date(2024, 3, 1), appts)

	for _, d := range days {
		switch d.Date {
		case date(2024, 3, 15):
			require.Len(t, d.Appointments, 2)
			assert.Equal(t, "a", d.Appointments[0].ID, "stored order kept")
			assert.Equal(t, "b", d.Appointments[1].ID)
		case date(2024, 3, 16):
			require.Len(t, d.Appointments, 1)
			assert.Equal(t, "c", d.Appointments[0].ID)
		default:
			assert.NotNil(t, d.Appointments)
			assert.Empty(t, d.Appointments)
		}
	}
}

func TestBuildUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 16th is still the 15th at UTC-5.
	appts := []model.Appointment{{ID: "x", Date: time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC)}}
	days := Build(time.Date(2024, 3, 1, 0, 0, 0, 0, loc), time.Now(), appts)
	for _, d := range days {
		if d.Day == 15 && d.IsCurrentMonth {
			assert.Len(t, d.Appointments, 1)
		} else {
			assert.Empty(t, d.Appointments)
		}
	}
}

func TestVisible(t *testing.T) {
	d := Day{Appointments: []model.Appointment{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}}
	shown, hidden := Visible(d)
	assert.Len(t, shown, 2)
	assert.Equal(t, 2, hidden)
	assert.Equal(t, "+2 more", MoreLabel(hidden))

	shown, hidden = Visible(Day{Appointments: d.Appointments[:2]})
	assert.Len(t, shown, 2)
	assert.Equal(t, 0, hidden)
	assert.Equal(t, "", MoreLabel(hidden))
}

func TestMonthNavigation(t *testing.T) {
	assert.Equal(t, date(2024, 2, 1), NextMonth(date(2024, 1, 31)))
	assert.Equal(t, date(2025, 1, 1), NextMonth(date(2024, 12, 10)))
	assert.Equal(t, date(2023, 12, 1), PrevMonth(date(2024, 1, 31)))
	assert.Equal(t, "2024-03", MonthKey(date(2024, 3, 9)))
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-03", time.UTC, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 1), got)

	got, err = ParseMonth("", time.UTC, date(2023, 7, 19))
	require.NoError(t, err)
	assert.Equal(t, date(2023, 7, 1), got)

	_, err = ParseMonth("03/2024", time.UTC, time.Time{})
	assert.Error(t, err)
}
