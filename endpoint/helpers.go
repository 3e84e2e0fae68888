package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/store"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// checkedForm is a view form that validates itself.
type checkedForm interface {
	Validate() error
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

// bindFormOrRespond decodes and validates a form. Field errors come back as
// data.fields.
func bindFormOrRespond(c *gin.Context, form checkedForm) bool {
	if !bindJSONOrRespond(c, form, "Invalid request payload") {
		return false
	}
	err := form.Validate()
	if err == nil {
		return true
	}
	var fields view.FieldErrors
	if errors.As(err, &fields) {
		util.CallUserError(c, util.APIErrorParams{
			Msg:  "Please check the highlighted fields",
			Err:  err,
			Data: map[string]interface{}{"fields": fields},
		})
		return false
	}
	util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request payload", Err: err})
	return false
}

func uidOrRespond(c *gin.Context) (string, bool) {
	uid, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Unauthorized", Err: errors.New("no session")})
		return "", false
	}
	return uid, true
}

// respondStoreError maps a data-access failure to a response. Missing
// documents are 404; anything else is logged and reported as 500.
func respondStoreError(c *gin.Context, op, notFoundMsg string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: notFoundMsg, Err: err})
		return
	}
	uid, _ := middleware.GetUserID(c)
	log.Error().Err(err).Str("op", op).Str("user_id", uid).Msg("data access failed")
	util.CallServerError(c, util.APIErrorParams{
		Msg: "Could not complete the operation, please try again",
		Err: fmt.Errorf("%s failed", op),
	})
}

// confirmed reports whether a destructive request carries ?confirm=true or a
// JSON body {"confirm": true}.
func confirmed(c *gin.Context) bool {
	if strings.EqualFold(c.Query("confirm"), "true") {
		return true
	}
	if c.Request.Body == nil {
		return false
	}
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(io.LimitReader(c.Request.Body, 1<<10)).Decode(&body); err != nil {
		return false
	}
	return body.Confirm
}

func requireConfirmation(c *gin.Context) bool {
	if confirmed(c) {
		return true
	}
	util.CallUserError(c, util.APIErrorParams{
		Msg: "confirmation required",
		Err: errors.New("destructive operation requires confirm=true"),
	})
	return false
}
