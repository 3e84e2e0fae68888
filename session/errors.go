// Package session signs clinicians in and out and tracks the signed-in user
// for the lifetime of a client.
package session

import (
	"errors"
	"fmt"
)

// Auth error codes.
const (
	CodeUserNotFound    = "auth/user-not-found"
	CodeWrongPassword   = "auth/wrong-password"
	CodeInvalidEmail    = "auth/invalid-email"
	CodeTooManyRequests = "auth/too-many-requests"
	CodeNetworkFailed   = "auth/network-request-failed"
	CodeEmailInUse      = "auth/email-already-in-use"
	CodeWeakPassword    = "auth/weak-password"
	CodeInvalidSession  = "auth/invalid-session"
	CodeInternal        = "auth/internal-error"
)

// DefaultLocale is used when a request names no supported locale.
const DefaultLocale = "es"

const (
	minPasswordLen         = 6
	maxFailedAttempts      = 5
	lockoutDurationSeconds = 15 * 60
)

// AuthError carries a stable code alongside the underlying cause.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func authErr(code string, err error) error {
	return &AuthError{Code: code, Err: err}
}

// CodeOf extracts the auth code from err, or CodeInternal for anything else.
func CodeOf(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

var messages = map[string]map[string]string{
	"es": {
		CodeUserNotFound:    "No existe una cuenta con este email",
		CodeWrongPassword:   "Contraseña incorrecta",
		CodeInvalidEmail:    "Email inválido",
		CodeTooManyRequests: "Demasiados intentos fallidos. Intenta más tarde",
		CodeNetworkFailed:   "Error de conexión. Verifica tu internet",
		CodeEmailInUse:      "Ya existe una cuenta con este email",
		CodeWeakPassword:    "La contraseña debe tener al menos 6 caracteres",
		CodeInvalidSession:  "Sesión inválida o expirada",
		CodeInternal:        "Error al iniciar sesión",
	},
	"en": {
		CodeUserNotFound:    "No account exists with this email",
		CodeWrongPassword:   "Incorrect password",
		CodeInvalidEmail:    "Invalid email",
		CodeTooManyRequests: "Too many failed attempts. Try again later",
		CodeNetworkFailed:   "Connection error. Check your internet",
		CodeEmailInUse:      "An account with this email already exists",
		CodeWeakPassword:    "Password must be at least 6 characters",
		CodeInvalidSession:  "Invalid or expired session",
		CodeInternal:        "Sign-in failed",
	},
}

// Locales lists the languages Message can answer in.
var Locales = []string{"es", "en"}

// Message returns the user-facing text for code. Unknown codes get the
// generic failure message; unknown locales fall back to Spanish.
func Message(code, locale string) string {
	table, ok := messages[locale]
	if !ok {
		table = messages[DefaultLocale]
	}
	if msg, ok := table[code]; ok {
		return msg
	}
	return table[CodeInternal]
}
