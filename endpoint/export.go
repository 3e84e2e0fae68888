package endpoint

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ariebrainware/nutritrack/chart"
	"github.com/ariebrainware/nutritrack/export"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sendFile renders into a buffer first so a failure can still be reported as
// JSON.
func sendFile(c *gin.Context, op, filename, mime string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		log.Error().Err(err).Str("op", op).Msg("render failed")
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Could not generate the file, please try again",
			Err: fmt.Errorf("%s failed", op),
		})
		return
	}
	if filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	c.Data(http.StatusOK, mime, buf.Bytes())
}

// ExportRoster godoc
// @Summary      Export roster
// @Description  Spreadsheet with patients, weight history and body metrics sheets
// @Tags         Export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     SessionToken
// @Success      200 {file} file "Workbook"
// @Router       /export/patients.xlsx [get]
func (a *API) ExportRoster(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	patients, err := a.Patients.ListByName(c.Request.Context(), uid)
	if err != nil {
		respondStoreError(c, "list patients", patientNotFound, err)
		return
	}
	now := a.now()
	name := fmt.Sprintf("patients-%s.xlsx", now.Format("2006-01-02"))
	sendFile(c, "export roster", name, xlsxMime, func(buf *bytes.Buffer) error {
		return export.RosterWorkbook(buf, patients, now)
	})
}

// PatientReport godoc
// @Summary      Progress report
// @Description  PDF with the patient's details, goals, recent measurements and notes
// @Tags         Export
// @Produce      application/pdf
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Success      200 {file} file "Report"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id}/report.pdf [get]
func (a *API) PatientReport(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	p, err := a.Patients.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	now := a.now()
	name := fmt.Sprintf("report-%s-%s.pdf", p.ID, now.Format("2006-01-02"))
	sendFile(c, "progress report", name, "application/pdf", func(buf *bytes.Buffer) error {
		return export.WriteProgressReport(buf, p, now)
	})
}

// PatientChart godoc
// @Summary      Patient chart
// @Description  Interactive HTML chart of weight, imc or bodyfat. Empty or malformed series render a short message.
// @Tags         Export
// @Produce      html
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        kind path string true "weight, imc or bodyfat"
// @Success      200 {string} string "Chart page"
// @Failure      400 {object} util.APIResponse "Unknown chart"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id}/charts/{kind} [get]
func (a *API) PatientChart(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	p, err := a.Patients.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	res, err := view.PrepareChart(p, c.Param("kind"))
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Unknown chart", Err: err})
		return
	}
	sendFile(c, "render chart", "", "text/html; charset=utf-8", func(buf *bytes.Buffer) error {
		return chart.Render(buf, res)
	})
}
