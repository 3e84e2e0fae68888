package endpoint

import (
	"context"
	"time"

	"github.com/ariebrainware/nutritrack/calendar"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/gin-gonic/gin"
)

// DashboardView godoc
// @Summary      Dashboard
// @Description  Roster cards with current weight, goal progress, last check-in and a mini chart
// @Tags         View
// @Produce      json
// @Security     SessionToken
// @Param        search query string false "Name or email filter"
// @Success      200 {object} util.APIResponse{data=view.Dashboard} "Dashboard"
// @Router       /views/dashboard [get]
func (a *API) DashboardView(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	patients, err := a.Patients.List(c.Request.Context(), uid)
	if err != nil {
		respondStoreError(c, "list patients", patientNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Dashboard",
		Data: view.BuildDashboard(patients, c.Query("search"), a.now()),
	})
}

// NewPatientView godoc
// @Summary      Blank intake form
// @Tags         View
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=view.NewPatientForm} "Form"
// @Router       /views/new-patient [get]
func (a *API) NewPatientView(c *gin.Context) {
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "New patient form", Data: view.BlankPatientForm()})
}

// ProfileView godoc
// @Summary      Patient profile
// @Tags         View
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        tab query string false "info, analytics, goals or notes"
// @Success      200 {object} util.APIResponse{data=view.Profile} "Profile"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /views/patients/{id} [get]
func (a *API) ProfileView(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	p, err := a.Patients.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patient profile",
		Data: view.BuildProfile(p, view.ParseTab(c.Query("tab"))),
	})
}

func (a *API) monthOrRespond(c *gin.Context) (time.Time, bool) {
	ref, err := calendar.ParseMonth(c.Query("month"), a.Location, a.now())
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid month", Err: err})
		return time.Time{}, false
	}
	return ref, true
}

func (a *API) loadCalendar(ctx context.Context, uid string, ref time.Time) (view.Calendar, error) {
	appts, err := a.Appointments.List(ctx, uid)
	if err != nil {
		return view.Calendar{}, err
	}
	patients, err := a.Patients.ListByName(ctx, uid)
	if err != nil {
		return view.Calendar{}, err
	}
	return view.BuildCalendar(ref, a.now(), appts, patients), nil
}

// CalendarView godoc
// @Summary      Appointment calendar
// @Description  A 42-day grid for the month with at most two appointments listed per day
// @Tags         View
// @Produce      json
// @Security     SessionToken
// @Param        month query string false "YYYY-MM, defaults to the current month"
// @Success      200 {object} util.APIResponse{data=view.Calendar} "Calendar"
// @Failure      400 {object} util.APIResponse "Invalid month"
// @Router       /views/calendar [get]
func (a *API) CalendarView(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	ref, ok := a.monthOrRespond(c)
	if !ok {
		return
	}
	cal, err := a.loadCalendar(c.Request.Context(), uid, ref)
	if err != nil {
		respondStoreError(c, "load calendar", appointmentNotFound, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Calendar", Data: cal})
}
