package view

import (
	"testing"
	"time"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fptr(v float64) *float64 { return &v }

func samplePatient() *model.Patient {
	return &model.Patient{
		ID:     "p1",
		Name:   "Ana Torres",
		Email:  "ana@example.com",
		Age:    34,
		Gender: model.GenderFemale,
		Height: 175,
		Goals:  datatypes.NewJSONType(model.Goals{TargetWeight: 70, TargetBodyFat: 22}),
		WeightHistory: datatypes.JSONSlice[model.WeightEntry]{
			{Date: day(2024, 3, 1), Weight: 75},
			{Date: day(2024, 1, 1), Weight: 80},
			{Date: day(2024, 2, 1), Weight: 78},
		},
		BodyMetrics: datatypes.JSONSlice[model.BodyMetricEntry]{
			{Date: day(2024, 1, 1), IMC: fptr(26.1), BodyFat: fptr(30)},
			{Date: day(2024, 2, 1), BodyFat: fptr(0)},
			{Date: day(2024, 3, 1), IMC: fptr(24.5)},
		},
		Notes: datatypes.JSONSlice[model.Note]{
			{Date: day(2024, 1, 5), Text: "first"},
			{Date: day(2024, 3, 5), Text: "latest"},
			{Date: day(2024, 2, 5), Text: "middle"},
		},
		CreatedAt: day(2024, 1, 1),
	}
}

func TestPrepareWeightChart(t *testing.T) {
	res := PrepareWeightChart(samplePatient())
	require.Equal(t, ChartOK, res.Status)
	require.Len(t, res.Points, 3)
	assert.Equal(t, 80.0, res.Points[0].Value, "points are sorted by date")
	assert.Equal(t, 75.0, res.Points[2].Value)
	assert.Equal(t, "01/03/24", res.Points[2].Label)
	assert.Equal(t, []ReferenceLine{{Name: "Target", Value: 70}}, res.References)
}

func TestPrepareWeightChartNeedsTwoEntries(t *testing.T) {
	p := samplePatient()
	p.WeightHistory = p.WeightHistory[:1]
	res := PrepareWeightChart(p)
	assert.Equal(t, ChartEmpty, res.Status)
	assert.Empty(t, res.Points)
	assert.NotEmpty(t, res.Message)
}

func TestPrepareWeightChartWindow(t *testing.T) {
	p := samplePatient()
	p.WeightHistory = nil
	for i := 0; i < 40; i++ {
		p.WeightHistory = append(p.WeightHistory, model.WeightEntry{Date: day(2024, 1, 1).AddDate(0, 0, i), Weight: float64(100 - i)})
	}
	res := PrepareWeightChart(p)
	require.Len(t, res.Points, 30)
	assert.Equal(t, 90.0, res.Points[0].Value)
	assert.Equal(t, 61.0, res.Points[29].Value)
}

func TestPrepareWeightChartMalformed(t *testing.T) {
	p := samplePatient()
	p.WeightHistory = append(p.WeightHistory, model.WeightEntry{Weight: 70})
	res := PrepareWeightChart(p)
	assert.Equal(t, ChartError, res.Status)
	assert.Contains(t, res.Message, "malformed")

	assert.Equal(t, ChartError, PrepareWeightChart(nil).Status)
}

func TestPrepareMetricCharts(t *testing.T) {
	p := samplePatient()

	imc := PrepareIMCChart(p)
	require.Equal(t, ChartOK, imc.Status)
	require.Len(t, imc.Points, 2)
	assert.Equal(t, 26.1, imc.Points[0].Value)
	assert.Equal(t, IMCReferences, imc.References)

	fat := PrepareBodyFatChart(p)
	require.Equal(t, ChartOK, fat.Status)
	require.Len(t, fat.Points, 1, "zero values are not plotted")
	assert.Equal(t, []ReferenceLine{{Name: "Target", Value: 22}}, fat.References)

	p.BodyMetrics = nil
	assert.Equal(t, ChartEmpty, PrepareIMCChart(p).Status)
	assert.Equal(t, ChartEmpty, PrepareBodyFatChart(p).Status)
}

func TestPrepareChartKinds(t *testing.T) {
	p := samplePatient()
	for _, kind := range ChartKinds {
		res, err := PrepareChart(p, kind)
		require.NoError(t, err)
		assert.Equal(t, kind, res.Kind)
	}
	_, err := PrepareChart(p, "pressure")
	assert.Error(t, err)
}

func TestMiniChart(t *testing.T) {
	p := samplePatient()
	points := MiniChart(p.WeightHistory)
	require.Len(t, points, 3)
	assert.Equal(t, 80.0, points[0].Value)
	assert.Nil(t, MiniChart(p.WeightHistory[:1]))
}

func TestBuildCard(t *testing.T) {
	now := day(2024, 3, 15)
	card := BuildCard(*samplePatient(), now)
	assert.Equal(t, "A", card.Initial)
	assert.Equal(t, 75.0, card.CurrentWeight)
	assert.Equal(t, "75.0 kg", card.CurrentWeightLabel)
	assert.Equal(t, 50.0, card.GoalProgress)
	assert.Equal(t, "50%", card.GoalProgressLabel)
	assert.Equal(t, "2 weeks ago", card.LastCheckIn)
	assert.Equal(t, "3 notes", card.NotesLabel)
	assert.Len(t, card.MiniChart, 3)

	empty := BuildCard(model.Patient{Name: " zoe"}, now)
	assert.Equal(t, "Z", empty.Initial)
	assert.Equal(t, NotRecorded, empty.CurrentWeightLabel)
	assert.Equal(t, calc.NoRecords, empty.LastCheckIn)
	assert.Equal(t, "0 notes", empty.NotesLabel)
	assert.Nil(t, empty.MiniChart)
}

func TestBuildDashboard(t *testing.T) {
	now := day(2024, 3, 15)
	patients := []model.Patient{*samplePatient(), {ID: "p2", Name: "Luis", Email: "luis@example.com"}}

	d := BuildDashboard(patients, "", now)
	assert.Len(t, d.Cards, 2)
	assert.Equal(t, "2 patients in your list", d.CountLabel)
	assert.Nil(t, d.Empty)

	d = BuildDashboard(patients, "  LUIS ", now)
	require.Len(t, d.Cards, 1)
	assert.Equal(t, "p2", d.Cards[0].ID)
	assert.Equal(t, 2, d.Total)

	d = BuildDashboard(patients, "nobody", now)
	assert.Empty(t, d.Cards)
	require.NotNil(t, d.Empty)
	assert.Equal(t, "No patients found", d.Empty.Title)

	d = BuildDashboard(nil, "", now)
	require.NotNil(t, d.Empty)
	assert.Equal(t, "newPatient", d.Empty.Action)
	assert.Equal(t, "0 patients in your list", d.CountLabel)

	assert.Equal(t, "1 patient in your list", BuildDashboard(patients[:1], "", now).CountLabel)
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabNotes, ParseTab("notes"))
	assert.Equal(t, TabAnalytics, ParseTab("analytics"))
	assert.Equal(t, TabInfo, ParseTab(""))
	assert.Equal(t, TabInfo, ParseTab("billing"))
}

func TestBuildProfileInfo(t *testing.T) {
	prof := BuildProfile(samplePatient(), TabInfo)
	require.NotNil(t, prof.Info)
	assert.Nil(t, prof.Analytics)
	assert.Equal(t, 80.0, prof.Info.InitialWeight)
	assert.Equal(t, 75.0, prof.Info.CurrentWeight)
	assert.Equal(t, 24.5, prof.Info.IMC)
	assert.Equal(t, calc.CategoryNormal, prof.Info.IMCCategory)
	assert.Equal(t, "Female", prof.Info.Gender)
	assert.Equal(t, "01/01/2024", prof.Info.PatientSince)
	assert.Equal(t, 3, prof.Info.MetricCount)
	assert.Equal(t, 3, prof.Info.NoteCount)
	assert.Len(t, prof.Tabs, 4)
}

func TestBuildProfileAnalytics(t *testing.T) {
	prof := BuildProfile(samplePatient(), TabAnalytics)
	require.NotNil(t, prof.Analytics)
	assert.Equal(t, 50.0, prof.Analytics.GoalProgress)
	require.Len(t, prof.Analytics.Charts, 3)
	assert.Equal(t, ChartWeight, prof.Analytics.Charts[0].Kind)
	assert.Equal(t, ChartIMC, prof.Analytics.Charts[1].Kind)
	assert.Equal(t, ChartBodyFat, prof.Analytics.Charts[2].Kind)
}

func TestBuildProfileGoals(t *testing.T) {
	prof := BuildProfile(samplePatient(), TabGoals)
	require.NotNil(t, prof.Goals)
	assert.Equal(t, 70.0, prof.Goals.TargetWeight)
	assert.Equal(t, 22.0, prof.Goals.TargetBodyFat)
	assert.Equal(t, "50%", prof.Goals.GoalProgressLabel)
}

func TestBuildProfileNotes(t *testing.T) {
	prof := BuildProfile(samplePatient(), TabNotes)
	require.NotNil(t, prof.Notes)
	require.Len(t, prof.Notes.Items, 3)
	assert.Equal(t, "latest", prof.Notes.Items[0].Text)
	assert.Equal(t, "first", prof.Notes.Items[2].Text)
	assert.Empty(t, prof.Notes.Empty)

	p := samplePatient()
	p.Notes = nil
	prof = BuildProfile(p, TabNotes)
	assert.Empty(t, prof.Notes.Items)
	assert.Equal(t, NotesEmpty, prof.Notes.Empty)
}

func TestBuildProfileUnknownTab(t *testing.T) {
	prof := BuildProfile(samplePatient(), Tab("x"))
	assert.Equal(t, TabInfo, prof.Tab)
	assert.NotNil(t, prof.Info)
}

func TestStatusLabelAndIndex(t *testing.T) {
	assert.Equal(t, "Scheduled", StatusLabel(model.StatusScheduled))
	assert.Equal(t, "Completed", StatusLabel(model.StatusCompleted))
	assert.Equal(t, "Cancelled", StatusLabel(model.StatusCancelled))
	assert.Equal(t, "Unknown", StatusLabel("postponed"))

	idx := IndexPatients([]model.Patient{{ID: "p1", Name: "Ana"}})
	assert.Equal(t, "Ana", idx.PatientName("p1"))
	assert.Equal(t, PatientNotFound, idx.PatientName("gone"))
}
