package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ariebrainware/nutritrack/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventPatientDeleted     SecurityEventType = "PATIENT_DELETED"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var (
	securityMu     sync.RWMutex
	securityDB     *gorm.DB
	securityLogger *zerolog.Logger
)

// SetSecurityLoggerDB sets the database security events are persisted to.
// Pass nil to stop persisting.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	securityDB = db
	securityMu.Unlock()
}

// SetSecurityLoggerForTest redirects security log lines. Pass nil to restore
// the global logger.
func SetSecurityLoggerForTest(logger *zerolog.Logger) {
	securityMu.Lock()
	securityLogger = logger
	securityMu.Unlock()
}

func securitySinks() (zerolog.Logger, *gorm.DB) {
	securityMu.RLock()
	defer securityMu.RUnlock()
	if securityLogger != nil {
		return *securityLogger, securityDB
	}
	return log.Logger, securityDB
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// formatLocation joins the parts GetIPLocation could resolve.
func formatLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + "/" + country
	case country != "":
		return country
	default:
		return city
	}
}

// LogSecurityEvent writes event to the log and, when a database is set,
// persists it. Persistence is best-effort and never fails the caller.
func LogSecurityEvent(event SecurityEvent) {
	logger, db := securitySinks()

	evt := logger.Warn()
	if event.EventType == EventLoginSuccess || event.EventType == EventSignupSuccess || event.EventType == EventLogout {
		evt = logger.Info()
	}
	evt.Str("component", "security").
		Str("event", sanitizeLogValue(string(event.EventType))).
		Str("user_id", sanitizeLogValue(event.UserID)).
		Str("email", sanitizeLogValue(event.Email)).
		Str("ip", sanitizeLogValue(event.IP)).
		Str("user_agent", sanitizeLogValue(event.UserAgent)).
		Int("details", len(event.Details)).
		Msg(sanitizeLogValue(event.Message))

	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Email:     sanitizeLogValue(event.Email),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(formatLocation(GetIPLocation(event.IP))),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&entry).Error; err != nil {
		logger.Error().Err(err).Str("component", "security").Msg("failed to persist security event")
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(uid, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    uid,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt with its auth error code.
func LogLoginFailure(email, ip, userAgent, code string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", code),
		Details:   map[string]interface{}{"code": code},
	})
}

// LogSignupSuccess logs a new clinician account.
func LogSignupSuccess(uid, email, ip string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSignupSuccess,
		UserID:    uid,
		Email:     email,
		IP:        ip,
		Message:   "Account created",
	})
}

// LogLogout logs a logout event
func LogLogout(uid, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    uid,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogAccountLocked logs when an account is locked
func LogAccountLocked(uid, email, ip string, attempts int) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventAccountLocked,
		UserID:    uid,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Account locked after %d failed attempts", attempts),
		Details:   map[string]interface{}{"attempts": attempts},
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}

// LogPatientDeleted records an irreversible patient deletion.
func LogPatientDeleted(uid, patientID, ip string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventPatientDeleted,
		UserID:    uid,
		IP:        ip,
		Message:   "Patient deleted",
		Details:   map[string]interface{}{"patient_id": patientID},
	})
}
