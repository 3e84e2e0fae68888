package endpoint

import (
	"strconv"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/gin-gonic/gin"
)

const patientNotFound = "Patient not found"

// ListPatients godoc
// @Summary      List patients
// @Description  Roster of the signed-in clinician, newest first, optionally filtered by name or email
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        search query string false "Case-insensitive name or email filter"
// @Success      200 {object} util.APIResponse "Patients"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patients [get]
func (a *API) ListPatients(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	patients, err := a.Patients.List(c.Request.Context(), uid)
	if err != nil {
		respondStoreError(c, "list patients", patientNotFound, err)
		return
	}
	filtered := calc.FilterPatients(patients, c.Query("search"))
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"total": len(patients), "patients": filtered},
	})
}

// CreatePatient godoc
// @Summary      Create patient
// @Description  Registers a patient with one initial weight entry
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body view.NewPatientForm true "Intake form"
// @Success      201 {object} util.APIResponse "Patient created"
// @Failure      400 {object} util.APIResponse "Validation failed"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patients [post]
func (a *API) CreatePatient(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.NewPatientForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	p, err := a.Patients.Create(c.Request.Context(), uid, form.Input())
	if err != nil {
		respondStoreError(c, "create patient", patientNotFound, err)
		return
	}
	a.Shell.PatientCreated(middleware.GetToken(c))
	util.CallCreated(c, util.APISuccessParams{Msg: "Patient created successfully", Data: p})
}

// GetPatient godoc
// @Summary      Get patient
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Success      200 {object} util.APIResponse "Patient"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id} [get]
func (a *API) GetPatient(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	p, err := a.Patients.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: p})
}

// UpdatePatientInfo godoc
// @Summary      Edit patient information
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        request body view.InfoForm true "Identity fields"
// @Success      200 {object} util.APIResponse "Patient updated"
// @Failure      400 {object} util.APIResponse "Validation failed"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id} [patch]
func (a *API) UpdatePatientInfo(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.InfoForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	p, err := a.Patients.UpdateInfo(c.Request.Context(), uid, c.Param("id"), form.Input())
	if err != nil {
		respondStoreError(c, "update patient info", patientNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated successfully", Data: p})
}

// UpdatePatientGoals godoc
// @Summary      Set patient goals
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        request body view.GoalsForm true "Targets"
// @Success      200 {object} util.APIResponse "Goals saved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id}/goals [put]
func (a *API) UpdatePatientGoals(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.GoalsForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	p, err := a.Patients.UpdateGoals(c.Request.Context(), uid, c.Param("id"), form.Input())
	if err != nil {
		respondStoreError(c, "update goals", patientNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Goals saved", Data: p})
}

// AddPatientMetrics godoc
// @Summary      Record metrics
// @Description  Appends a weight entry and, when IMC or body fat is given, a body-metric entry with the same date
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        request body view.MetricForm true "Metrics"
// @Success      201 {object} util.APIResponse "Metrics recorded"
// @Failure      400 {object} util.APIResponse "Validation failed"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id}/metrics [post]
func (a *API) AddPatientMetrics(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.MetricForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	ctx := c.Request.Context()
	current, err := a.Patients.Get(ctx, uid, c.Param("id"))
	if err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	p, err := a.Patients.AddMetrics(ctx, uid, current.ID, form.Resolve(current.Height))
	if err != nil {
		respondStoreError(c, "add metrics", patientNotFound, err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Metrics recorded", Data: p})
}

// AddPatientNote godoc
// @Summary      Add note
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        request body view.NoteForm true "Note"
// @Success      201 {object} util.APIResponse "Note added"
// @Failure      400 {object} util.APIResponse "Empty note"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id}/notes [post]
func (a *API) AddPatientNote(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.NoteForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	p, err := a.Patients.AddNote(c.Request.Context(), uid, c.Param("id"), form.Text)
	if err != nil {
		respondStoreError(c, "add note", patientNotFound, err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Note added", Data: p})
}

// DeletePatient godoc
// @Summary      Delete patient
// @Description  Permanently removes the patient. Appointments referencing it are kept. Requires confirm=true.
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        confirm query bool true "Must be true"
// @Success      200 {object} util.APIResponse "Patient deleted"
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id} [delete]
func (a *API) DeletePatient(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	if !requireConfirmation(c) {
		return
	}
	id := c.Param("id")
	if err := a.Patients.Delete(c.Request.Context(), uid, id); err != nil {
		respondStoreError(c, "delete patient", patientNotFound, err)
		return
	}
	util.LogPatientDeleted(uid, id, c.ClientIP())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient deleted successfully", Data: nil})
}

// SuggestIMC godoc
// @Summary      Suggested IMC for a typed weight
// @Description  Computes the body-mass index from the weight and the patient's height. auto=false disables the suggestion.
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        weight query string true "Weight in kg as typed"
// @Param        auto query bool false "Auto-calculation toggle (default true)"
// @Success      200 {object} util.APIResponse "Suggestion"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patients/{id}/imc-suggestion [get]
func (a *API) SuggestIMC(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	p, err := a.Patients.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	auto := true
	if v, err := strconv.ParseBool(c.DefaultQuery("auto", "true")); err == nil {
		auto = v
	}
	imc, suggested := calc.SuggestIMC(c.Query("weight"), p.Height, auto)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "IMC suggestion",
		Data: map[string]interface{}{"imc": imc, "suggested": suggested},
	})
}
