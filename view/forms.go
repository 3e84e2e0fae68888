package view

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/store"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e[k]
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must match " + fe.Param()
	}
	return "is invalid"
}

// check runs the struct tags and returns nil when the form is valid.
func check(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

// NewPatientForm is the intake form.
type NewPatientForm struct {
	Name          string       `json:"name" validate:"required"`
	Email         string       `json:"email" validate:"omitempty,email"`
	Phone         string       `json:"phone"`
	Age           int          `json:"age" validate:"gte=1,lte=120"`
	Gender        model.Gender `json:"gender" validate:"oneof=male female other"`
	Height        float64      `json:"height" validate:"gte=100,lte=250"`
	InitialWeight float64      `json:"initialWeight" validate:"gt=0,lte=500"`
	TargetWeight  float64      `json:"targetWeight" validate:"gte=0,lte=500"`
	TargetBodyFat float64      `json:"targetBodyFat" validate:"gte=0,lte=100"`
}

// BlankPatientForm is the form the intake screen starts from.
func BlankPatientForm() NewPatientForm {
	return NewPatientForm{Gender: model.GenderMale}
}

// Validate trims the text fields and checks ranges. The returned error is
// FieldErrors when a field is out of range.
func (f *NewPatientForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	return check(f)
}

// Input converts a validated form for the store.
func (f NewPatientForm) Input() store.NewPatient {
	return store.NewPatient{
		Name:          f.Name,
		Email:         f.Email,
		Phone:         f.Phone,
		Age:           f.Age,
		Gender:        f.Gender,
		Height:        f.Height,
		InitialWeight: f.InitialWeight,
		TargetWeight:  f.TargetWeight,
		TargetBodyFat: f.TargetBodyFat,
	}
}

// InfoForm edits a patient's identity block.
type InfoForm struct {
	Name   string       `json:"name" validate:"required"`
	Email  string       `json:"email" validate:"omitempty,email"`
	Phone  string       `json:"phone"`
	Age    int          `json:"age" validate:"gte=1,lte=120"`
	Gender model.Gender `json:"gender" validate:"oneof=male female other"`
	Height float64      `json:"height" validate:"gte=100,lte=250"`
}

func (f *InfoForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	return check(f)
}

func (f InfoForm) Input() store.PatientInfo {
	return store.PatientInfo{
		Name:   f.Name,
		Email:  f.Email,
		Phone:  f.Phone,
		Age:    f.Age,
		Gender: f.Gender,
		Height: f.Height,
	}
}

// GoalsForm edits the targets. Zero clears a target.
type GoalsForm struct {
	TargetWeight  float64 `json:"targetWeight" validate:"gte=0,lte=500"`
	TargetBodyFat float64 `json:"targetBodyFat" validate:"gte=0,lte=100"`
}

func (f *GoalsForm) Validate() error {
	return check(f)
}

func (f GoalsForm) Input() model.Goals {
	return model.Goals{TargetWeight: f.TargetWeight, TargetBodyFat: f.TargetBodyFat}
}

// MetricForm records a weigh-in with optional body metrics. With AutoIMC set
// and no IMC typed, the index is computed from the weight and the patient's
// height.
type MetricForm struct {
	Weight  float64  `json:"weight" validate:"gt=0,lte=500"`
	IMC     *float64 `json:"imc" validate:"omitnil,gt=0,lte=100"`
	BodyFat *float64 `json:"bodyFat" validate:"omitnil,gt=0,lte=100"`
	AutoIMC bool     `json:"autoIMC"`
}

func (f *MetricForm) Validate() error {
	return check(f)
}

// Resolve converts a validated form, filling the IMC when auto-calculation
// applies.
func (f MetricForm) Resolve(heightCm float64) store.Metrics {
	m := store.Metrics{Weight: f.Weight, IMC: f.IMC, BodyFat: f.BodyFat}
	if m.IMC == nil && f.AutoIMC {
		if imc := calc.BodyMassIndex(f.Weight, heightCm); imc > 0 {
			m.IMC = &imc
		}
	}
	return m
}

// NoteForm adds a note.
type NoteForm struct {
	Text string `json:"text" validate:"required"`
}

func (f *NoteForm) Validate() error {
	f.Text = strings.TrimSpace(f.Text)
	return check(f)
}

// AppointmentForm schedules a visit. Date is YYYY-MM-DD and Time is HH:MM.
type AppointmentForm struct {
	PatientID string                  `json:"patientId" validate:"required"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string                  `json:"time" validate:"required,datetime=15:04"`
	Notes     string                  `json:"notes"`
	Status    model.AppointmentStatus `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

func (f *AppointmentForm) Validate() error {
	f.PatientID = strings.TrimSpace(f.PatientID)
	f.Notes = strings.TrimSpace(f.Notes)
	if f.Status == "" {
		f.Status = model.StatusScheduled
	}
	return check(f)
}

// Input converts a validated form. The date is midnight in loc.
func (f AppointmentForm) Input(loc *time.Location) (store.NewAppointment, error) {
	d, err := time.ParseInLocation("2006-01-02", f.Date, loc)
	if err != nil {
		return store.NewAppointment{}, fmt.Errorf("parse date: %w", err)
	}
	return store.NewAppointment{
		PatientID: f.PatientID,
		Date:      d,
		Time:      f.Time,
		Notes:     f.Notes,
		Status:    f.Status,
	}, nil
}

// AppointmentPatchForm edits an appointment. Absent fields are left alone.
type AppointmentPatchForm struct {
	PatientID *string                  `json:"patientId" validate:"omitnil,min=1"`
	Date      *string                  `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Time      *string                  `json:"time" validate:"omitnil,datetime=15:04"`
	Notes     *string                  `json:"notes"`
	Status    *model.AppointmentStatus `json:"status" validate:"omitnil,oneof=scheduled completed cancelled"`
}

func (f *AppointmentPatchForm) Validate() error {
	if f.PatientID != nil {
		id := strings.TrimSpace(*f.PatientID)
		f.PatientID = &id
	}
	return check(f)
}

func (f AppointmentPatchForm) Input(loc *time.Location) (store.AppointmentPatch, error) {
	patch := store.AppointmentPatch{
		PatientID: f.PatientID,
		Time:      f.Time,
		Notes:     f.Notes,
		Status:    f.Status,
	}
	if f.Date != nil {
		d, err := time.ParseInLocation("2006-01-02", *f.Date, loc)
		if err != nil {
			return store.AppointmentPatch{}, fmt.Errorf("parse date: %w", err)
		}
		patch.Date = &d
	}
	return patch, nil
}
