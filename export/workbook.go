// Package export produces downloadable files from patient data.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
)

// Sheet names of the roster workbook.
const (
	SheetPatients    = "Patients"
	SheetWeights     = "Weights"
	SheetBodyMetrics = "Body metrics"
)

const dateLayout = "2006-01-02"

func setHeaders(file *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		file.SetCellValue(sheet, cell(i, 1), h)
	}
}

// cell converts a zero-based column and one-based row into an A1 reference.
func cell(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}

func setRow(file *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		file.SetCellValue(sheet, cell(i, row), v)
	}
}

// RosterWorkbook writes every patient with their weight and body-metric
// histories, sorted by date, as an xlsx workbook.
func RosterWorkbook(w io.Writer, patients []model.Patient, now time.Time) error {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", SheetPatients)
	file.NewSheet(SheetWeights)
	file.NewSheet(SheetBodyMetrics)

	setHeaders(file, SheetPatients, []string{
		"Name", "Email", "Phone", "Age", "Gender", "Height (cm)",
		"Current weight (kg)", "Target weight (kg)", "Target body fat (%)",
		"Goal progress (%)", "Last check-in", "Notes", "Patient since",
	})
	setHeaders(file, SheetWeights, []string{"Patient", "Date", "Weight (kg)"})
	setHeaders(file, SheetBodyMetrics, []string{"Patient", "Date", "IMC", "Body fat (%)"})

	weightRow, metricRow := 2, 2
	for i, p := range patients {
		goals := p.Goals.Data()
		setRow(file, SheetPatients, i+2,
			p.Name, p.Email, p.Phone, p.Age, string(p.Gender), p.Height,
			calc.CurrentWeight(p.WeightHistory), goals.TargetWeight, goals.TargetBodyFat,
			calc.Round1(calc.GoalProgress(p.WeightHistory, goals.TargetWeight)),
			calc.LastCheckIn(p.WeightHistory, now), len(p.Notes), p.CreatedAt.Format(dateLayout),
		)
		for _, e := range calc.SortByDate(p.WeightHistory) {
			setRow(file, SheetWeights, weightRow, p.Name, e.Date.Format(dateLayout), e.Weight)
			weightRow++
		}
		for _, e := range calc.SortByDate(p.BodyMetrics) {
			setRow(file, SheetBodyMetrics, metricRow, p.Name, e.Date.Format(dateLayout), optional(e.IMC), optional(e.BodyFat))
			metricRow++
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
