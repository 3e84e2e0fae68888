// Package view derives the data each screen renders from live snapshots.
// Nothing here touches storage; callers pass in what they are subscribed to.
package view

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
)

// NotRecorded labels a metric with no entries.
const NotRecorded = "not recorded"

// PatientCard is one roster entry on the dashboard.
type PatientCard struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Email              string       `json:"email"`
	Initial            string       `json:"initial"`
	Height             float64      `json:"height"`
	CurrentWeight      float64      `json:"currentWeight"`
	CurrentWeightLabel string       `json:"currentWeightLabel"`
	GoalProgress       float64      `json:"goalProgress"`
	GoalProgressLabel  string       `json:"goalProgressLabel"`
	LastCheckIn        string       `json:"lastCheckIn"`
	NotesLabel         string       `json:"notesLabel"`
	MiniChart          []ChartPoint `json:"miniChart,omitempty"`
}

// EmptyState is shown in place of the card grid.
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// Dashboard is the roster screen.
type Dashboard struct {
	Search     string        `json:"search"`
	Total      int           `json:"total"`
	CountLabel string        `json:"countLabel"`
	Cards      []PatientCard `json:"cards"`
	Empty      *EmptyState   `json:"empty,omitempty"`
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// WeightLabel formats a weight in kilograms, or NotRecorded for zero.
func WeightLabel(w float64) string {
	if w <= 0 {
		return NotRecorded
	}
	return fmt.Sprintf("%.1f kg", w)
}

// BuildCard derives a roster card.
func BuildCard(p model.Patient, now time.Time) PatientCard {
	progress := math.Round(calc.GoalProgress(p.WeightHistory, p.Goals.Data().TargetWeight))
	current := calc.CurrentWeight(p.WeightHistory)
	return PatientCard{
		ID:                 p.ID,
		Name:               p.Name,
		Email:              p.Email,
		Initial:            initial(p.Name),
		Height:             p.Height,
		CurrentWeight:      current,
		CurrentWeightLabel: WeightLabel(current),
		GoalProgress:       progress,
		GoalProgressLabel:  fmt.Sprintf("%.0f%%", progress),
		LastCheckIn:        calc.LastCheckIn(p.WeightHistory, now),
		NotesLabel:         pluralize(len(p.Notes), "note", "notes"),
		MiniChart:          MiniChart(p.WeightHistory),
	}
}

// BuildDashboard filters the roster by search and derives the cards. The
// count label always reflects the whole roster.
func BuildDashboard(patients []model.Patient, search string, now time.Time) Dashboard {
	filtered := calc.FilterPatients(patients, search)
	d := Dashboard{
		Search:     search,
		Total:      len(patients),
		CountLabel: pluralize(len(patients), "patient", "patients") + " in your list",
		Cards:      make([]PatientCard, 0, len(filtered)),
	}
	for _, p := range filtered {
		d.Cards = append(d.Cards, BuildCard(p, now))
	}

	switch {
	case len(patients) == 0:
		d.Empty = &EmptyState{Title: "No patients yet", Message: "Start by adding your first patient", Action: "newPatient"}
	case len(filtered) == 0:
		d.Empty = &EmptyState{Title: "No patients found", Message: "Try other search terms"}
	}
	return d
}
