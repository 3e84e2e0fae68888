package endpoint

import (
	"errors"

	"github.com/ariebrainware/nutritrack/store"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/gin-gonic/gin"
)

const appointmentNotFound = "Appointment not found"

// patientExistsOrRespond rejects appointments pointing at an unknown patient.
func (a *API) patientExistsOrRespond(c *gin.Context, uid, patientID string) bool {
	_, err := a.Patients.Get(c.Request.Context(), uid, patientID)
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrNotFound) {
		util.CallUserError(c, util.APIErrorParams{
			Msg:  "Please check the highlighted fields",
			Err:  err,
			Data: map[string]interface{}{"fields": view.FieldErrors{"patientId": view.PatientNotFound}},
		})
		return false
	}
	respondStoreError(c, "get patient", patientNotFound, err)
	return false
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  All appointments of the signed-in clinician in date order
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Appointments"
// @Router       /appointments [get]
func (a *API) ListAppointments(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	appts, err := a.Appointments.List(c.Request.Context(), uid)
	if err != nil {
		respondStoreError(c, "list appointments", appointmentNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appts})
}

// CreateAppointment godoc
// @Summary      Schedule appointment
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body view.AppointmentForm true "Appointment"
// @Success      201 {object} util.APIResponse "Appointment created"
// @Failure      400 {object} util.APIResponse "Validation failed"
// @Router       /appointments [post]
func (a *API) CreateAppointment(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.AppointmentForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	in, err := form.Input(a.Location)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request payload", Err: err})
		return
	}
	if !a.patientExistsOrRespond(c, uid, in.PatientID) {
		return
	}
	appt, err := a.Appointments.Create(c.Request.Context(), uid, in)
	if err != nil {
		respondStoreError(c, "create appointment", appointmentNotFound, err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Appointment created successfully", Data: appt})
}

// UpdateAppointment godoc
// @Summary      Edit appointment
// @Description  Updates only the fields present in the body
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Appointment ID"
// @Param        request body view.AppointmentPatchForm true "Changes"
// @Success      200 {object} util.APIResponse "Appointment updated"
// @Failure      400 {object} util.APIResponse "Validation failed"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointments/{id} [patch]
func (a *API) UpdateAppointment(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	var form view.AppointmentPatchForm
	if !bindFormOrRespond(c, &form) {
		return
	}
	patch, err := form.Input(a.Location)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request payload", Err: err})
		return
	}
	if patch.PatientID != nil && !a.patientExistsOrRespond(c, uid, *patch.PatientID) {
		return
	}
	appt, err := a.Appointments.Update(c.Request.Context(), uid, c.Param("id"), patch)
	if err != nil {
		respondStoreError(c, "update appointment", appointmentNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated successfully", Data: appt})
}

// DeleteAppointment godoc
// @Summary      Delete appointment
// @Description  Requires confirm=true
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Appointment ID"
// @Param        confirm query bool true "Must be true"
// @Success      200 {object} util.APIResponse "Appointment deleted"
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointments/{id} [delete]
func (a *API) DeleteAppointment(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	if !requireConfirmation(c) {
		return
	}
	if err := a.Appointments.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondStoreError(c, "delete appointment", appointmentNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment deleted successfully", Data: nil})
}
