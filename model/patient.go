package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Gender of a patient as captured on the intake form.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Goals holds the clinician-defined targets for a patient. Zero means unset.
type Goals struct {
	TargetWeight  float64 `json:"targetWeight"`
	TargetBodyFat float64 `json:"targetBodyFat"`
}

// WeightEntry is one weigh-in.
type WeightEntry struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

// BodyMetricEntry is one body-composition reading. Both values are optional.
//
// Older documents stored the index under "bmi"; decoding folds it into IMC so
// callers only ever read one field, and encoding always writes "imc".
type BodyMetricEntry struct {
	Date    time.Time `json:"date"`
	IMC     *float64  `json:"imc,omitempty"`
	BodyFat *float64  `json:"bodyFat,omitempty"`
}

func (e *BodyMetricEntry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Date    time.Time `json:"date"`
		IMC     *float64  `json:"imc"`
		BMI     *float64  `json:"bmi"`
		BodyFat *float64  `json:"bodyFat"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Date = raw.Date
	e.IMC = raw.IMC
	if e.IMC == nil || *e.IMC == 0 {
		if raw.BMI != nil {
			e.IMC = raw.BMI
		}
	}
	e.BodyFat = raw.BodyFat
	return nil
}

// Note is a free-text observation written by the clinician.
type Note struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

// Patient is the per-patient document. Histories are embedded arrays, so any
// addition rewrites the whole array on the parent row. Storage order of the
// arrays is not meaningful; sort by date before use.
type Patient struct {
	ID            string                               `json:"id" gorm:"primaryKey;size:36"`
	UserID        string                               `json:"-" gorm:"size:36;not null;index"`
	Name          string                               `json:"name" gorm:"size:191;not null"`
	Email         string                               `json:"email" gorm:"size:191"`
	Phone         string                               `json:"phone" gorm:"size:64"`
	Age           int                                  `json:"age"`
	Gender        Gender                               `json:"gender" gorm:"size:16"`
	Height        float64                              `json:"height"`
	Weight        float64                              `json:"weight"`
	Goals         datatypes.JSONType[Goals]            `json:"goals"`
	WeightHistory datatypes.JSONSlice[WeightEntry]     `json:"weightHistory"`
	BodyMetrics   datatypes.JSONSlice[BodyMetricEntry] `json:"bodyMetrics"`
	Notes         datatypes.JSONSlice[Note]            `json:"notes"`
	CreatedAt     time.Time                            `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time                            `json:"updatedAt" gorm:"autoUpdateTime"`
}
