package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/ariebrainware/nutritrack/session"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/gin-gonic/gin"
)

// SessionHeader carries the session token. "Authorization: Bearer" works too.
const SessionHeader = "session-token"

const (
	userKey  = "sessionUser"
	tokenKey = "sessionToken"
)

// Resolver restores the user behind a session token.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*session.User, error)
}

// SessionToken reads the token from the request headers, falling back to the
// "token" query parameter for clients that cannot set headers (EventSource).
func SessionToken(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(SessionHeader)); t != "" {
		return t
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}

// Locale picks the message language from Accept-Language.
func Locale(c *gin.Context, fallback string) string {
	return util.PreferredLocale(c.GetHeader("Accept-Language"), session.Locales, fallback)
}

// RequireSession rejects requests without a live session and exposes the
// signed-in user through GetSession and GetUserID.
func RequireSession(r Resolver, defaultLocale string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, "missing session token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: session.Message(session.CodeInvalidSession, Locale(c, defaultLocale)),
				Err: errors.New("session token required"),
			})
			return
		}

		user, err := r.Resolve(c.Request.Context(), token)
		if err != nil {
			code := session.CodeOf(err)
			params := util.APIErrorParams{
				Msg:  session.Message(code, Locale(c, defaultLocale)),
				Err:  err,
				Data: map[string]interface{}{"code": code},
			}
			if code == session.CodeNetworkFailed {
				util.CallServiceUnavailable(c, params)
				return
			}
			util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, code)
			util.CallUserNotAuthorized(c, params)
			return
		}

		c.Set(userKey, *user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// GetSession returns the signed-in user set by RequireSession.
func GetSession(c *gin.Context) (session.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return session.User{}, false
	}
	u, ok := v.(session.User)
	return u, ok
}

// GetUserID returns the signed-in user's uid.
func GetUserID(c *gin.Context) (string, bool) {
	u, ok := GetSession(c)
	if !ok || u.UID == "" {
		return "", false
	}
	return u.UID, true
}

// GetToken returns the token RequireSession accepted.
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
