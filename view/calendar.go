package view

import (
	"time"

	"github.com/ariebrainware/nutritrack/calendar"
	"github.com/ariebrainware/nutritrack/model"
)

// Weekdays heads the calendar columns, Sunday first.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Chip is an appointment as listed inside a day cell.
type Chip struct {
	ID          string                  `json:"id"`
	PatientID   string                  `json:"patientId"`
	Label       string                  `json:"label"`
	Status      model.AppointmentStatus `json:"status"`
	StatusLabel string                  `json:"statusLabel"`
	Notes       string                  `json:"notes,omitempty"`
}

// Cell is a rendered calendar day.
type Cell struct {
	Date           string `json:"date"`
	Day            int    `json:"day"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
	Chips          []Chip `json:"chips"`
	More           string `json:"more,omitempty"`
}

// PatientOption feeds the appointment form's patient picker.
type PatientOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Calendar is the appointment calendar screen.
type Calendar struct {
	Month    string          `json:"month"`
	Title    string          `json:"title"`
	Prev     string          `json:"prev"`
	Next     string          `json:"next"`
	Weekdays []string        `json:"weekdays"`
	Cells    []Cell          `json:"cells"`
	Patients []PatientOption `json:"patients"`
}

func chip(a model.Appointment, idx PatientIndex) Chip {
	return Chip{
		ID:          a.ID,
		PatientID:   a.PatientID,
		Label:       a.Time + " - " + idx.PatientName(a.PatientID),
		Status:      a.Status,
		StatusLabel: StatusLabel(a.Status),
		Notes:       a.Notes,
	}
}

// BuildCalendar renders the month containing ref. patients should be sorted
// by name; their order is kept for the picker.
func BuildCalendar(ref, today time.Time, appts []model.Appointment, patients []model.Patient) Calendar {
	idx := IndexPatients(patients)
	days := calendar.Build(ref, today, appts)

	out := Calendar{
		Month:    calendar.MonthKey(ref),
		Title:    ref.Format("January 2006"),
		Prev:     calendar.MonthKey(calendar.PrevMonth(ref)),
		Next:     calendar.MonthKey(calendar.NextMonth(ref)),
		Weekdays: Weekdays,
		Cells:    make([]Cell, len(days)),
		Patients: make([]PatientOption, len(patients)),
	}
	for i, d := range days {
		shown, hidden := calendar.Visible(d)
		chips := make([]Chip, len(shown))
		for j, a := range shown {
			chips[j] = chip(a, idx)
		}
		out.Cells[i] = Cell{
			Date:           d.Date.Format("2006-01-02"),
			Day:            d.Day,
			IsCurrentMonth: d.IsCurrentMonth,
			IsToday:        d.IsToday,
			Chips:          chips,
			More:           calendar.MoreLabel(hidden),
		}
	}
	for i, p := range patients {
		out.Patients[i] = PatientOption{ID: p.ID, Name: p.Name}
	}
	return out
}
