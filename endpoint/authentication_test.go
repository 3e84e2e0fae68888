package endpoint

import (
	"net/http"
	"testing"
	"time"

	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupErrors(t *testing.T) {
	env := newTestEnv(t, "signup_errors")

	tests := []struct {
		name string
		body map[string]string
		code string
	}{
		{"email in use", map[string]string{"email": "laura@clinic.com", "password": "secret1"}, session.CodeEmailInUse},
		{"invalid email", map[string]string{"email": "laura", "password": "secret1"}, session.CodeInvalidEmail},
		{"weak password", map[string]string{"email": "new@clinic.com", "password": "123"}, session.CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodPost, "/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, data(resp)["code"])
		})
	}
}

func TestLoginErrors(t *testing.T) {
	env := newTestEnv(t, "login_errors")

	w, resp := env.do(t, http.MethodPost, "/login", map[string]string{"email": "laura@clinic.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, session.CodeWrongPassword, data(resp)["code"])

	w, resp = env.do(t, http.MethodPost, "/login", map[string]string{"email": "nobody@clinic.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, session.CodeUserNotFound, data(resp)["code"])

	w, _ = env.do(t, http.MethodPost, "/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginResetsRateLimit(t *testing.T) {
	db := setupTestDB(t, "login_rate_reset")
	api := New(db, feed.NewHub(), session.NewProvider(db, nil, "test-secret", time.Hour))
	api.LoginLimit = middleware.RateLimitConfig{Limit: 2, Window: time.Minute}
	r := gin.New()
	api.Register(r)
	env := &testEnv{api: api, router: r}
	env.signIn(t, "laura@clinic.com", "secret1")

	good := map[string]string{"email": "laura@clinic.com", "password": "secret1"}
	for i := 0; i < 3; i++ {
		w, _ := env.doAs(t, "", http.MethodPost, "/login", good)
		assert.Equal(t, http.StatusOK, w.Code, "login %d", i+1)
	}

	bad := map[string]string{"email": "laura@clinic.com", "password": "wrong-one"}
	w, _ := env.doAs(t, "", http.MethodPost, "/login", bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = env.doAs(t, "", http.MethodPost, "/login", bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = env.doAs(t, "", http.MethodPost, "/login", good)
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "failures are not forgiven")
}

func TestLoginMessageLocale(t *testing.T) {
	env := newTestEnv(t, "login_locale")
	body := map[string]string{"email": "laura@clinic.com", "password": "wrong-one"}

	_, es, err := performRequest(env.router, requestSpec{method: http.MethodPost, requestPath: "/login", body: body})
	require.NoError(t, err)
	_, en, err := performRequest(env.router, requestSpec{
		method:      http.MethodPost,
		requestPath: "/login",
		body:        body,
		headers:     map[string]string{"Accept-Language": "en-US,en;q=0.9"},
	})
	require.NoError(t, err)

	assert.Equal(t, session.Message(session.CodeWrongPassword, "es"), es["msg"])
	assert.Equal(t, session.Message(session.CodeWrongPassword, "en"), en["msg"])
}

func TestSessionAndLogout(t *testing.T) {
	env := newTestEnv(t, "session_logout")

	w, resp := env.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user, _ := data(resp)["user"].(map[string]interface{})
	require.NotNil(t, user)
	assert.Equal(t, "laura@clinic.com", user["email"])
	assert.Equal(t, false, data(resp)["loading"])

	w, resp = env.do(t, http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test Clinician", data(resp)["name"])

	w, _ = env.do(t, http.MethodDelete, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = env.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, data(resp)["user"])
}

func TestSessionWithoutToken(t *testing.T) {
	env := newTestEnv(t, "session_anon")
	w, resp, err := performRequest(env.router, requestSpec{method: http.MethodGet, requestPath: "/session"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, data(resp)["user"])
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	env := newTestEnv(t, "protected")
	for _, path := range []string{"/patients", "/appointments", "/views/dashboard", "/shell", "/export/patients.xlsx"} {
		w, resp, err := performRequest(env.router, requestSpec{method: http.MethodGet, requestPath: path})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, false, resp["success"], path)
	}

	w, _ := env.doAs(t, "not-a-token", http.MethodGet, "/patients", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
