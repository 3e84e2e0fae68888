package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func ptr(v float64) *float64 { return &v }

func TestBodyMetricEntry_BMIAlias(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		imc     *float64
	}{
		{"imc only", `{"date":"2024-01-02T00:00:00Z","imc":22.5}`, ptr(22.5)},
		{"bmi only", `{"date":"2024-01-02T00:00:00Z","bmi":23.1}`, ptr(23.1)},
		{"imc wins", `{"date":"2024-01-02T00:00:00Z","imc":21,"bmi":30}`, ptr(21)},
		{"zero imc falls back", `{"date":"2024-01-02T00:00:00Z","imc":0,"bmi":24}`, ptr(24)},
		{"neither", `{"date":"2024-01-02T00:00:00Z","bodyFat":18}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e BodyMetricEntry
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &e))
			if tt.imc == nil {
				assert.Nil(t, e.IMC)
				return
			}
			require.NotNil(t, e.IMC)
			assert.InDelta(t, *tt.imc, *e.IMC, 1e-9)
		})
	}
}

func TestBodyMetricEntry_EncodesIMC(t *testing.T) {
	var e BodyMetricEntry
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-02T00:00:00Z","bmi":23.1}`), &e))
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"imc":23.1`)
	assert.NotContains(t, string(out), "bmi")
	assert.NotContains(t, string(out), "bodyFat")
}

func TestGenderValid(t *testing.T) {
	assert.True(t, GenderFemale.Valid())
	assert.True(t, GenderOther.Valid())
	assert.False(t, Gender("x").Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, AppointmentStatus("pending").Valid())
}

func TestPatientPersistsEmbeddedHistories(t *testing.T) {
	db := setupTestDB(t, "patient", All...)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Patient{
		ID:            "p-1",
		UserID:        "u-1",
		Name:          "Ana",
		Height:        165,
		Weight:        70,
		Goals:         datatypes.NewJSONType(Goals{TargetWeight: 62}),
		WeightHistory: datatypes.JSONSlice[WeightEntry]{{Date: day, Weight: 70}},
		BodyMetrics:   datatypes.JSONSlice[BodyMetricEntry]{{Date: day, IMC: ptr(25.7)}},
		Notes:         datatypes.JSONSlice[Note]{{Date: day, Text: "first visit"}},
	}
	require.NoError(t, db.Create(&p).Error)

	var found Patient
	require.NoError(t, db.First(&found, "id = ?", "p-1").Error)
	assert.Equal(t, 62.0, found.Goals.Data().TargetWeight)
	require.Len(t, found.WeightHistory, 1)
	assert.Equal(t, 70.0, found.WeightHistory[0].Weight)
	require.Len(t, found.BodyMetrics, 1)
	assert.InDelta(t, 25.7, *found.BodyMetrics[0].IMC, 1e-9)
	assert.Nil(t, found.BodyMetrics[0].BodyFat)
	assert.Equal(t, "first visit", found.Notes[0].Text)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t, "migrate")
	require.NoError(t, Migrate(db))
	for _, m := range All {
		assert.True(t, db.Migrator().HasTable(m))
	}
}
