package endpoint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	body         interface{}
	headers      map[string]string
}

func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	var reader *strings.Reader
	setJSONHeader := false
	switch v := spec.body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
		setJSONHeader = true
	default:
		b, _ := json.Marshal(spec.body)
		reader = strings.NewReader(string(b))
		setJSONHeader = true
	}

	req := httptest.NewRequest(spec.method, spec.requestPath, reader)
	if setJSONHeader {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return w, nil, err
		}
	}
	return w, response, nil
}

func doRequestWithHandler(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	switch spec.method {
	case http.MethodGet:
		r.GET(spec.registerPath, spec.handler)
	case http.MethodPost:
		r.POST(spec.registerPath, spec.handler)
	case http.MethodPatch:
		r.PATCH(spec.registerPath, spec.handler)
	case http.MethodPut:
		r.PUT(spec.registerPath, spec.handler)
	case http.MethodDelete:
		r.DELETE(spec.registerPath, spec.handler)
	default:
		r.Handle(spec.method, spec.registerPath, spec.handler)
	}
	return performRequest(r, spec)
}

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:endpoint_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.Migrate(db))
	return db
}

type testEnv struct {
	api    *API
	router *gin.Engine
	token  string
}

func newTestEnv(t *testing.T, name string) *testEnv {
	t.Helper()
	db := setupTestDB(t, name)
	api := New(db, feed.NewHub(), session.NewProvider(db, nil, "test-secret", time.Hour))
	api.LoginLimit = middleware.RateLimitConfig{Limit: 100, Window: time.Minute}
	api.Now = func() time.Time { return testNow }

	r := gin.New()
	api.Register(r)
	env := &testEnv{api: api, router: r}
	env.token = env.signIn(t, "laura@clinic.com", "secret1")
	return env
}

// signIn creates the account and returns a session token for it.
func (e *testEnv) signIn(t *testing.T, email, password string) string {
	t.Helper()
	w, _, err := performRequest(e.router, requestSpec{
		method:      http.MethodPost,
		requestPath: "/signup",
		body:        map[string]string{"email": email, "password": password, "name": "Test Clinician"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp, err := performRequest(e.router, requestSpec{
		method:      http.MethodPost,
		requestPath: "/login",
		body:        map[string]string{"email": email, "password": password},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := data(resp)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) doAs(t *testing.T, token, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w, resp, err := performRequest(e.router, requestSpec{
		method:      method,
		requestPath: path,
		body:        body,
		headers:     map[string]string{middleware.SessionHeader: token},
	})
	require.NoError(t, err)
	return w, resp
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return e.doAs(t, e.token, method, path, body)
}

func (e *testEnv) createPatient(t *testing.T, name string) string {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/patients", map[string]interface{}{
		"name":          name,
		"email":         strings.ToLower(strings.Fields(name)[0]) + "@example.com",
		"age":           34,
		"gender":        "female",
		"height":        175,
		"initialWeight": 80,
		"targetWeight":  70,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := data(resp)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}
