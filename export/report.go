package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/jung-kurt/gofpdf"
)

const reportHistoryRows = 30

type report struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (r *report) heading(text string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.CellFormat(0, 8, r.tr(text), "B", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 10)
}

func (r *report) detail(label, value string) {
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(240, 240, 240)
	r.pdf.CellFormat(55, 7, r.tr(label), "1", 0, "", true, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.CellFormat(0, 7, r.tr(value), "1", 1, "", false, 0, "")
}

func (r *report) row(widths []float64, values []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	r.pdf.SetFont("Arial", style, 10)
	for i, v := range values {
		ln := 0
		if i == len(values)-1 {
			ln = 1
		}
		r.pdf.CellFormat(widths[i], 7, r.tr(v), "1", ln, "C", header, 0, "")
	}
}

func number(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

// WriteProgressReport writes a one-patient PDF with the summary, the goal
// progress, the most recent weigh-ins and body metrics, and the notes.
func WriteProgressReport(w io.Writer, p *model.Patient, now time.Time) error {
	if p == nil {
		return errors.New("no patient")
	}
	info := view.BuildProfile(p, view.TabInfo).Info
	goals := view.BuildProfile(p, view.TabGoals).Goals

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Progress report", true)
	pdf.AddPage()
	r := &report{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, r.tr("Progress report"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, r.tr(p.Name+" - "+now.Format("02/01/2006")), "", 1, "C", false, 0, "")

	r.heading("Patient")
	r.detail("Email", info.Email)
	r.detail("Phone", info.Phone)
	r.detail("Age", fmt.Sprintf("%d", info.Age))
	r.detail("Gender", info.Gender)
	r.detail("Height", fmt.Sprintf("%.0f cm", info.Height))
	r.detail("Patient since", info.PatientSince)

	r.heading("Summary")
	r.detail("Initial weight", info.InitialWeightLabel)
	r.detail("Current weight", info.CurrentWeightLabel)
	r.detail("IMC", fmt.Sprintf("%.1f (%s)", info.IMC, info.IMCCategory))
	r.detail("Target weight", view.WeightLabel(goals.TargetWeight))
	r.detail("Target body fat", fmt.Sprintf("%.1f%%", goals.TargetBodyFat))
	r.detail("Goal progress", goals.GoalProgressLabel)
	r.detail("Last check-in", calc.LastCheckIn(p.WeightHistory, now))

	r.heading("Weight history")
	weights := calc.Tail(p.WeightHistory, reportHistoryRows)
	if len(weights) == 0 {
		pdf.CellFormat(0, 7, r.tr(calc.NoRecords), "", 1, "L", false, 0, "")
	} else {
		widths := []float64{60, 60}
		r.row(widths, []string{"Date", "Weight (kg)"}, true)
		for _, e := range weights {
			r.row(widths, []string{e.Date.Format("02/01/2006"), fmt.Sprintf("%.1f", e.Weight)}, false)
		}
	}

	r.heading("Body metrics")
	metrics := calc.Tail(p.BodyMetrics, reportHistoryRows)
	if len(metrics) == 0 {
		pdf.CellFormat(0, 7, r.tr(calc.NoRecords), "", 1, "L", false, 0, "")
	} else {
		widths := []float64{60, 40, 40}
		r.row(widths, []string{"Date", "IMC", "Body fat (%)"}, true)
		for _, e := range metrics {
			r.row(widths, []string{e.Date.Format("02/01/2006"), number(e.IMC), number(e.BodyFat)}, false)
		}
	}

	r.heading("Notes")
	notes := view.BuildProfile(p, view.TabNotes).Notes
	if len(notes.Items) == 0 {
		pdf.MultiCell(0, 6, r.tr(view.NotesEmpty), "", "L", false)
	}
	for _, n := range notes.Items {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 6, r.tr(n.Label), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, r.tr(n.Text), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
