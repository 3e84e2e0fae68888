// Package endpoint exposes the clinic tracker over HTTP.
package endpoint

import (
	"context"
	"time"

	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/session"
	"github.com/ariebrainware/nutritrack/shell"
	"github.com/ariebrainware/nutritrack/store"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Identity is the account side of the session provider.
type Identity interface {
	session.Authenticator
	SignUp(ctx context.Context, email, password, name string) (*model.User, error)
}

// API holds the handlers' dependencies.
type API struct {
	DB            *gorm.DB
	Hub           *feed.Hub
	Auth          Identity
	Patients      *store.Patients
	Appointments  *store.Appointments
	Users         *store.Users
	Shell         *shell.Navigator
	Location      *time.Location
	DefaultLocale string
	LoginLimit    middleware.RateLimitConfig
	CORSOrigins   []string
	Now           func() time.Time

	loginLimit *middleware.RateLimit
}

// New wires an API over db. hub may be shared with a redis relay.
func New(db *gorm.DB, hub *feed.Hub, auth Identity) *API {
	return &API{
		DB:            db,
		Hub:           hub,
		Auth:          auth,
		Patients:      store.NewPatients(db, hub),
		Appointments:  store.NewAppointments(db, hub),
		Users:         store.NewUsers(db),
		Shell:         shell.NewNavigator(24 * time.Hour),
		Location:      time.UTC,
		DefaultLocale: session.DefaultLocale,
		Now:           time.Now,
	}
}

func (a *API) now() time.Time {
	return a.Now().In(a.Location)
}

// Register mounts every route on r.
func (a *API) Register(r *gin.Engine) {
	r.Use(
		middleware.RequestLogger(),
		gin.Recovery(),
		middleware.CORS(a.CORSOrigins),
		middleware.DatabaseMiddleware(a.DB),
	)

	a.loginLimit = middleware.NewRateLimit(a.LoginLimit)
	limited := a.loginLimit.Handler()
	r.POST("/login", limited, a.Login)
	r.POST("/signup", limited, a.Signup)
	r.GET("/session", a.Session)

	auth := r.Group("/", middleware.RequireSession(a.Auth, a.DefaultLocale))
	auth.DELETE("/logout", a.Logout)
	auth.GET("/user", a.CurrentUser)

	// Streams and websockets must not be buffered by gzip.
	auth.GET("/stream/dashboard", a.StreamDashboard)
	auth.GET("/stream/patients/:id", a.StreamPatient)
	auth.GET("/stream/calendar", a.StreamCalendar)
	auth.GET("/ws", a.Live)

	api := auth.Group("/", gzip.Gzip(gzip.DefaultCompression))

	api.GET("/patients", a.ListPatients)
	api.POST("/patients", a.CreatePatient)
	api.GET("/patients/:id", a.GetPatient)
	api.PATCH("/patients/:id", a.UpdatePatientInfo)
	api.PUT("/patients/:id/goals", a.UpdatePatientGoals)
	api.POST("/patients/:id/metrics", a.AddPatientMetrics)
	api.POST("/patients/:id/notes", a.AddPatientNote)
	api.DELETE("/patients/:id", a.DeletePatient)
	api.GET("/patients/:id/imc-suggestion", a.SuggestIMC)
	api.GET("/patients/:id/report.pdf", a.PatientReport)
	api.GET("/patients/:id/charts/:kind", a.PatientChart)

	api.GET("/appointments", a.ListAppointments)
	api.POST("/appointments", a.CreateAppointment)
	api.PATCH("/appointments/:id", a.UpdateAppointment)
	api.DELETE("/appointments/:id", a.DeleteAppointment)

	api.GET("/views/dashboard", a.DashboardView)
	api.GET("/views/new-patient", a.NewPatientView)
	api.GET("/views/patients/:id", a.ProfileView)
	api.GET("/views/calendar", a.CalendarView)

	api.GET("/shell", a.ShellState)
	api.POST("/shell/navigate", a.ShellNavigate)

	api.GET("/export/patients.xlsx", a.ExportRoster)
}
