package view

import (
	"fmt"
	"math"
	"time"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
)

// Tab selects a section of the patient profile.
type Tab string

const (
	TabInfo      Tab = "info"
	TabAnalytics Tab = "analytics"
	TabGoals     Tab = "goals"
	TabNotes     Tab = "notes"
)

// ParseTab falls back to TabInfo for anything unknown.
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabAnalytics, TabGoals, TabNotes:
		return Tab(s)
	}
	return TabInfo
}

// NotesEmpty is shown when a patient has no notes.
const NotesEmpty = "No notes yet. Add the first one above."

// Info is the identity tab with a metric summary.
type Info struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Age                int     `json:"age"`
	Gender             string  `json:"gender"`
	Height             float64 `json:"height"`
	InitialWeight      float64 `json:"initialWeight"`
	InitialWeightLabel string  `json:"initialWeightLabel"`
	CurrentWeight      float64 `json:"currentWeight"`
	CurrentWeightLabel string  `json:"currentWeightLabel"`
	IMC                float64 `json:"imc"`
	IMCCategory        string  `json:"imcCategory"`
	PatientSince       string  `json:"patientSince"`
	MetricCount        int     `json:"metricCount"`
	NoteCount          int     `json:"noteCount"`
}

// Analytics carries one chart per kind plus the summary row.
type Analytics struct {
	CurrentWeight float64       `json:"currentWeight"`
	IMC           float64       `json:"imc"`
	IMCCategory   string        `json:"imcCategory"`
	GoalProgress  float64       `json:"goalProgress"`
	MetricCount   int           `json:"metricCount"`
	NoteCount     int           `json:"noteCount"`
	Charts        []ChartResult `json:"charts"`
}

// GoalsView shows targets and progress toward the weight goal.
type GoalsView struct {
	TargetWeight      float64 `json:"targetWeight"`
	TargetBodyFat     float64 `json:"targetBodyFat"`
	GoalProgress      float64 `json:"goalProgress"`
	GoalProgressLabel string  `json:"goalProgressLabel"`
}

// NoteItem is a displayed note.
type NoteItem struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Text  string    `json:"text"`
}

// NotesView lists notes newest first.
type NotesView struct {
	Items []NoteItem `json:"items"`
	Empty string     `json:"empty,omitempty"`
}

// Profile is the patient profile screen. Only the selected tab is populated.
type Profile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Tab       Tab        `json:"tab"`
	Tabs      []Tab      `json:"tabs"`
	Info      *Info      `json:"info,omitempty"`
	Analytics *Analytics `json:"analytics,omitempty"`
	Goals     *GoalsView `json:"goals,omitempty"`
	Notes     *NotesView `json:"notes,omitempty"`
}

func genderLabel(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return "Male"
	case model.GenderFemale:
		return "Female"
	case model.GenderOther:
		return "Other"
	}
	return "Not specified"
}

// currentIMC is derived from the newest weight and the height rather than
// the last recorded body metric.
func currentIMC(p *model.Patient) float64 {
	return calc.BodyMassIndex(calc.CurrentWeight(p.WeightHistory), p.Height)
}

func goalProgress(p *model.Patient) float64 {
	return math.Round(calc.GoalProgress(p.WeightHistory, p.Goals.Data().TargetWeight))
}

func buildInfo(p *model.Patient) *Info {
	initialW := calc.InitialWeight(p.WeightHistory)
	currentW := calc.CurrentWeight(p.WeightHistory)
	imc := currentIMC(p)
	return &Info{
		Name:               p.Name,
		Email:              p.Email,
		Phone:              p.Phone,
		Age:                p.Age,
		Gender:             genderLabel(p.Gender),
		Height:             p.Height,
		InitialWeight:      initialW,
		InitialWeightLabel: WeightLabel(initialW),
		CurrentWeight:      currentW,
		CurrentWeightLabel: WeightLabel(currentW),
		IMC:                imc,
		IMCCategory:        calc.Category(imc),
		PatientSince:       p.CreatedAt.Format("02/01/2006"),
		MetricCount:        len(p.BodyMetrics),
		NoteCount:          len(p.Notes),
	}
}

func buildAnalytics(p *model.Patient) *Analytics {
	imc := currentIMC(p)
	return &Analytics{
		CurrentWeight: calc.CurrentWeight(p.WeightHistory),
		IMC:           imc,
		IMCCategory:   calc.Category(imc),
		GoalProgress:  goalProgress(p),
		MetricCount:   len(p.BodyMetrics),
		NoteCount:     len(p.Notes),
		Charts:        []ChartResult{PrepareWeightChart(p), PrepareIMCChart(p), PrepareBodyFatChart(p)},
	}
}

func buildGoals(p *model.Patient) *GoalsView {
	g := p.Goals.Data()
	progress := goalProgress(p)
	return &GoalsView{
		TargetWeight:      g.TargetWeight,
		TargetBodyFat:     g.TargetBodyFat,
		GoalProgress:      progress,
		GoalProgressLabel: fmt.Sprintf("%.0f%%", progress),
	}
}

func buildNotes(p *model.Patient) *NotesView {
	sorted := calc.SortByDate(p.Notes)
	v := &NotesView{Items: make([]NoteItem, 0, len(sorted))}
	for i := len(sorted) - 1; i >= 0; i-- {
		n := sorted[i]
		v.Items = append(v.Items, NoteItem{Date: n.Date, Label: n.Date.Format("02/01/2006 15:04"), Text: n.Text})
	}
	if len(v.Items) == 0 {
		v.Empty = NotesEmpty
	}
	return v
}

// BuildProfile derives the profile for the requested tab.
func BuildProfile(p *model.Patient, tab Tab) Profile {
	out := Profile{
		ID:   p.ID,
		Name: p.Name,
		Tab:  tab,
		Tabs: []Tab{TabInfo, TabAnalytics, TabGoals, TabNotes},
	}
	switch tab {
	case TabAnalytics:
		out.Analytics = buildAnalytics(p)
	case TabGoals:
		out.Goals = buildGoals(p)
	case TabNotes:
		out.Notes = buildNotes(p)
	default:
		out.Tab = TabInfo
		out.Info = buildInfo(p)
	}
	return out
}
