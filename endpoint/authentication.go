package endpoint

import (
	"errors"

	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/session"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"nutri@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required" example:"nutri@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
	Name     string `json:"name" example:"Dra. Ana Ruiz"`
}

func clientMeta(c *gin.Context) session.ClientMeta {
	return session.ClientMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

func (a *API) newSessionContext(c *gin.Context) *session.Context {
	return session.NewContext(a.Auth,
		session.WithProfileMerger(a.Users),
		session.WithClientMeta(clientMeta(c)),
	)
}

// respondAuthError turns an auth code into a status and a localized message.
func (a *API) respondAuthError(c *gin.Context, err error) {
	code := session.CodeOf(err)
	params := util.APIErrorParams{
		Msg:  session.Message(code, middleware.Locale(c, a.DefaultLocale)),
		Err:  errors.New(code),
		Data: map[string]interface{}{"code": code},
	}
	switch code {
	case session.CodeInvalidEmail, session.CodeWeakPassword, session.CodeEmailInUse:
		util.CallUserError(c, params)
	case session.CodeTooManyRequests:
		util.CallTooManyRequests(c, params)
	case session.CodeNetworkFailed:
		util.CallServiceUnavailable(c, params)
	case session.CodeInternal:
		util.CallServerError(c, params)
	default:
		util.CallUserNotAuthorized(c, params)
	}
}

// Login godoc
// @Summary      Sign in
// @Description  Authenticate a clinician with email and password and open a session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=session.Issued} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload or email"
// @Failure      401 {object} util.APIResponse "Unknown user or wrong password"
// @Failure      429 {object} util.APIResponse "Too many attempts"
// @Failure      503 {object} util.APIResponse "Identity service unavailable"
// @Router       /login [post]
func (a *API) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	sc := a.newSessionContext(c)
	defer sc.Close()
	issued, err := sc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.respondAuthError(c, err)
		return
	}
	if a.loginLimit != nil {
		if err := a.loginLimit.Reset(c.Request.Context(), c.ClientIP(), c.Request.URL.Path); err != nil {
			log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("failed to reset login rate limit")
		}
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Login successful", Data: issued})
}

// Signup godoc
// @Summary      Create a clinician account
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Account details"
// @Success      201 {object} util.APIResponse "Account created"
// @Failure      400 {object} util.APIResponse "Invalid email, weak password or email in use"
// @Router       /signup [post]
func (a *API) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	u, err := a.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		a.respondAuthError(c, err)
		return
	}
	util.LogSignupSuccess(u.UID, u.Email, c.ClientIP())
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Account created",
		Data: map[string]interface{}{"uid": u.UID, "email": u.Email, "name": u.Name},
	})
}

// Session godoc
// @Summary      Current auth state
// @Description  Restores the session behind the token, if any. A missing or stale token is reported as signed out.
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=session.State} "Auth state"
// @Failure      503 {object} util.APIResponse "Identity service unavailable"
// @Router       /session [get]
func (a *API) Session(c *gin.Context) {
	sc := a.newSessionContext(c)
	defer sc.Close()
	sc.Start(c.Request.Context(), middleware.SessionToken(c))
	if err := sc.Wait(c.Request.Context()); err != nil {
		util.CallServiceUnavailable(c, util.APIErrorParams{Msg: "Request cancelled", Err: err})
		return
	}
	if err := sc.Err(); err != nil && session.CodeOf(err) != session.CodeInvalidSession {
		a.respondAuthError(c, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Session state", Data: sc.State()})
}

// Logout godoc
// @Summary      Sign out
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Logged out"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /logout [delete]
func (a *API) Logout(c *gin.Context) {
	token := middleware.GetToken(c)
	user, _ := middleware.GetSession(c)

	sc := a.newSessionContext(c)
	defer sc.Close()
	sc.Start(c.Request.Context(), token)
	if err := sc.Wait(c.Request.Context()); err != nil {
		util.CallServiceUnavailable(c, util.APIErrorParams{Msg: "Request cancelled", Err: err})
		return
	}
	if err := sc.Logout(c.Request.Context()); err != nil {
		a.respondAuthError(c, err)
		return
	}
	a.Shell.Forget(token)
	util.LogLogout(user.UID, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logged out", Data: nil})
}

// CurrentUser godoc
// @Summary      Current clinician profile
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Profile"
// @Router       /user [get]
func (a *API) CurrentUser(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	u, err := a.Users.Get(c.Request.Context(), uid)
	if err != nil {
		respondStoreError(c, "get user", "user not found", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Profile",
		Data: map[string]interface{}{"uid": u.UID, "email": u.Email, "name": u.Name},
	})
}
