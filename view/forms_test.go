package view

import (
	"testing"
	"time"

	"github.com/ariebrainware/nutritrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPatientForm() NewPatientForm {
	return NewPatientForm{
		Name:          "  Ana Torres ",
		Email:         "ana@example.com",
		Age:           34,
		Gender:        model.GenderFemale,
		Height:        165,
		InitialWeight: 72.5,
		TargetWeight:  65,
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	fe, ok := err.(FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %T", err)
	return fe
}

func TestNewPatientFormValid(t *testing.T) {
	f := validPatientForm()
	require.NoError(t, f.Validate())
	in := f.Input()
	assert.Equal(t, "Ana Torres", in.Name)
	assert.Equal(t, 72.5, in.InitialWeight)
	assert.Equal(t, model.GenderFemale, in.Gender)
}

func TestNewPatientFormRanges(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*NewPatientForm)
		field string
	}{
		{"blank name", func(f *NewPatientForm) { f.Name = "   " }, "name"},
		{"bad email", func(f *NewPatientForm) { f.Email = "ana" }, "email"},
		{"age zero", func(f *NewPatientForm) { f.Age = 0 }, "age"},
		{"age too high", func(f *NewPatientForm) { f.Age = 121 }, "age"},
		{"height too low", func(f *NewPatientForm) { f.Height = 99 }, "height"},
		{"height too high", func(f *NewPatientForm) { f.Height = 251 }, "height"},
		{"no weight", func(f *NewPatientForm) { f.InitialWeight = 0 }, "initialWeight"},
		{"weight too high", func(f *NewPatientForm) { f.InitialWeight = 501 }, "initialWeight"},
		{"negative target", func(f *NewPatientForm) { f.TargetWeight = -1 }, "targetWeight"},
		{"body fat over 100", func(f *NewPatientForm) { f.TargetBodyFat = 101 }, "targetBodyFat"},
		{"unknown gender", func(f *NewPatientForm) { f.Gender = "x" }, "gender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validPatientForm()
			tt.edit(&f)
			fe := fieldErrors(t, f.Validate())
			assert.Contains(t, fe, tt.field)
			assert.Len(t, fe, 1)
		})
	}
}

func TestNewPatientFormBoundaries(t *testing.T) {
	f := validPatientForm()
	f.Age, f.Height, f.InitialWeight = 120, 250, 500
	assert.NoError(t, f.Validate())

	f.Age, f.Height, f.InitialWeight = 1, 100, 0.1
	assert.NoError(t, f.Validate())
}

func TestBlankPatientForm(t *testing.T) {
	f := BlankPatientForm()
	assert.Equal(t, model.GenderMale, f.Gender)
	fe := fieldErrors(t, f.Validate())
	assert.Equal(t, "is required", fe["name"])
	assert.Contains(t, fe, "age")
}

func TestFieldErrorsMessage(t *testing.T) {
	err := FieldErrors{"name": "is required", "age": "must be at least 1"}
	assert.Equal(t, "age must be at least 1; name is required", err.Error())
}

func TestInfoForm(t *testing.T) {
	f := InfoForm{Name: " Ana ", Age: 30, Gender: model.GenderOther, Height: 170}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Ana", f.Input().Name)

	f.Height = 50
	fe := fieldErrors(t, f.Validate())
	assert.Equal(t, "must be at least 100", fe["height"])
}

func TestGoalsForm(t *testing.T) {
	f := GoalsForm{TargetWeight: 65, TargetBodyFat: 20}
	require.NoError(t, f.Validate())
	assert.Equal(t, model.Goals{TargetWeight: 65, TargetBodyFat: 20}, f.Input())

	f.TargetBodyFat = 120
	assert.Contains(t, fieldErrors(t, f.Validate()), "targetBodyFat")
}

func TestMetricForm(t *testing.T) {
	f := MetricForm{Weight: 70, AutoIMC: true}
	require.NoError(t, f.Validate())
	m := f.Resolve(175)
	require.NotNil(t, m.IMC)
	assert.Equal(t, 22.9, *m.IMC)
	assert.Nil(t, m.BodyFat)

	f.IMC = fptr(21)
	m = f.Resolve(175)
	assert.Equal(t, 21.0, *m.IMC, "a typed value wins over the suggestion")

	f = MetricForm{Weight: 70}
	assert.Nil(t, f.Resolve(175).IMC)

	f = MetricForm{Weight: 70, AutoIMC: true}
	assert.Nil(t, f.Resolve(0).IMC)
}

func TestMetricFormRanges(t *testing.T) {
	f := MetricForm{Weight: 0}
	assert.Contains(t, fieldErrors(t, f.Validate()), "weight")

	f = MetricForm{Weight: 70, IMC: fptr(0)}
	assert.Contains(t, fieldErrors(t, f.Validate()), "imc")

	f = MetricForm{Weight: 70, BodyFat: fptr(100.5)}
	assert.Contains(t, fieldErrors(t, f.Validate()), "bodyFat")

	f = MetricForm{Weight: 500, IMC: fptr(100), BodyFat: fptr(0.1)}
	assert.NoError(t, f.Validate())
}

func TestNoteForm(t *testing.T) {
	f := NoteForm{Text: "  eats well "}
	require.NoError(t, f.Validate())
	assert.Equal(t, "eats well", f.Text)

	f = NoteForm{Text: "  "}
	assert.Contains(t, fieldErrors(t, f.Validate()), "text")
}

func TestAppointmentForm(t *testing.T) {
	f := AppointmentForm{PatientID: "p1", Date: "2024-03-15", Time: "09:30"}
	require.NoError(t, f.Validate())
	assert.Equal(t, model.StatusScheduled, f.Status)

	in, err := f.Input(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 15), in.Date)
	assert.Equal(t, "09:30", in.Time)

	fe := fieldErrors(t, (&AppointmentForm{}).Validate())
	assert.Contains(t, fe, "patientId")
	assert.Contains(t, fe, "date")
	assert.Contains(t, fe, "time")

	f = AppointmentForm{PatientID: "p1", Date: "15/03/2024", Time: "9h", Status: "late"}
	fe = fieldErrors(t, f.Validate())
	assert.Contains(t, fe, "date")
	assert.Contains(t, fe, "time")
	assert.Contains(t, fe, "status")
}

func TestAppointmentPatchForm(t *testing.T) {
	var f AppointmentPatchForm
	require.NoError(t, f.Validate())
	patch, err := f.Input(time.UTC)
	require.NoError(t, err)
	assert.Nil(t, patch.Date)
	assert.Nil(t, patch.Status)

	date := "2024-04-01"
	status := model.StatusCompleted
	f = AppointmentPatchForm{Date: &date, Status: &status}
	require.NoError(t, f.Validate())
	patch, err = f.Input(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, patch.Date)
	assert.Equal(t, day(2024, 4, 1), *patch.Date)
	assert.Equal(t, model.StatusCompleted, *patch.Status)

	bad := model.AppointmentStatus("late")
	blank := " "
	f = AppointmentPatchForm{Status: &bad, PatientID: &blank}
	fe := fieldErrors(t, f.Validate())
	assert.Contains(t, fe, "status")
	assert.Contains(t, fe, "patientId")
}
