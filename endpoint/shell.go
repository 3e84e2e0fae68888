package endpoint

import (
	"strings"

	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/shell"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/gin-gonic/gin"
)

type navigateRequest struct {
	View      shell.View `json:"view" binding:"required"`
	PatientID string     `json:"patientId"`
}

// ShellState godoc
// @Summary      Current screen
// @Description  The active view, the navigation bar and, when a profile has no patient, the error screen
// @Tags         Shell
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=shell.Screen} "Screen"
// @Router       /shell [get]
func (a *API) ShellState(c *gin.Context) {
	screen := a.Shell.State(middleware.GetToken(c)).Screen()
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Screen", Data: screen})
}

// ShellNavigate godoc
// @Summary      Navigate
// @Description  Switch the active view. Opening a profile with a patientId selects that patient; any other view clears the selection.
// @Tags         Shell
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body navigateRequest true "Target view"
// @Success      200 {object} util.APIResponse{data=shell.Screen} "Screen"
// @Failure      400 {object} util.APIResponse "Unknown view"
// @Router       /shell/navigate [post]
func (a *API) ShellNavigate(c *gin.Context) {
	var req navigateRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	token := middleware.GetToken(c)
	id := strings.TrimSpace(req.PatientID)

	var state shell.State
	if req.View == shell.PatientProfile && id != "" {
		state = a.Shell.OpenPatient(token, id)
	} else {
		var err error
		state, err = a.Shell.Navigate(token, req.View)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Unknown view", Err: err})
			return
		}
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Screen", Data: state.Screen()})
}
