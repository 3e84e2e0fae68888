// Package shell tracks which screen each signed-in session is looking at.
package shell

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// View names a top-level screen.
type View string

const (
	Dashboard      View = "dashboard"
	NewPatient     View = "newPatient"
	PatientProfile View = "patientProfile"
	Appointments   View = "appointments"
)

// ErrUnknownView is returned for a navigation target that is not a View.
var ErrUnknownView = errors.New("unknown view")

// PatientIDNotFound is the error screen shown for a profile with no selection.
const PatientIDNotFound = "patient id not found"

func (v View) Valid() bool {
	switch v {
	case Dashboard, NewPatient, PatientProfile, Appointments:
		return true
	}
	return false
}

// State is the current view plus the selected patient, if any.
type State struct {
	View      View   `json:"view"`
	PatientID string `json:"patientId,omitempty"`
}

// Initial is where every session starts.
var Initial = State{View: Dashboard}

// Navigate switches view. Leaving for anything but the profile drops the
// selected patient.
func (s State) Navigate(v View) State {
	if v != PatientProfile {
		return State{View: v}
	}
	return State{View: v, PatientID: s.PatientID}
}

// OpenPatient selects a patient and shows the profile.
func (s State) OpenPatient(id string) State {
	return State{View: PatientProfile, PatientID: id}
}

// PatientCreated returns to the dashboard after the intake form is saved.
func (s State) PatientCreated() State {
	return State{View: Dashboard, PatientID: s.PatientID}
}

// NavItem is one header button.
type NavItem struct {
	View   View   `json:"view"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Nav lists the header buttons. The profile entry only appears while a
// patient is selected.
func (s State) Nav() []NavItem {
	items := []NavItem{
		{View: Dashboard, Label: "Dashboard"},
		{View: NewPatient, Label: "New patient"},
		{View: Appointments, Label: "Appointments"},
	}
	if s.PatientID != "" {
		items = append(items, NavItem{View: PatientProfile, Label: "Patient profile"})
	}
	for i := range items {
		items[i].Active = items[i].View == s.View
	}
	return items
}

// ErrorScreen replaces the content area when the state cannot be rendered.
type ErrorScreen struct {
	Message string `json:"message"`
	Action  View   `json:"action"`
}

// Screen is what the client renders for a state.
type Screen struct {
	State
	Nav   []NavItem    `json:"nav"`
	Error *ErrorScreen `json:"error,omitempty"`
}

func (s State) Screen() Screen {
	out := Screen{State: s, Nav: s.Nav()}
	if s.View == PatientProfile && s.PatientID == "" {
		out.Error = &ErrorScreen{Message: PatientIDNotFound, Action: Dashboard}
	}
	return out
}

// Navigator keeps one State per session token. Idle states expire after ttl.
type Navigator struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewNavigator(ttl time.Duration) *Navigator {
	return &Navigator{cache: cache.New(ttl, 2*ttl)}
}

func (n *Navigator) get(token string) State {
	if v, ok := n.cache.Get(token); ok {
		return v.(State)
	}
	return Initial
}

func (n *Navigator) update(token string, fn func(State) State) State {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := fn(n.get(token))
	n.cache.SetDefault(token, s)
	return s
}

// State returns the session's current state.
func (n *Navigator) State(token string) State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.get(token)
}

func (n *Navigator) Navigate(token string, v View) (State, error) {
	if !v.Valid() {
		return State{}, ErrUnknownView
	}
	return n.update(token, func(s State) State { return s.Navigate(v) }), nil
}

func (n *Navigator) OpenPatient(token, id string) State {
	return n.update(token, func(s State) State { return s.OpenPatient(id) })
}

func (n *Navigator) PatientCreated(token string) State {
	return n.update(token, State.PatientCreated)
}

// Forget drops the state of a signed-out session.
func (n *Navigator) Forget(token string) {
	n.cache.Delete(token)
}
