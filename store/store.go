// Package store is the data-access layer. Every record lives under the
// clinician that owns it, and every successful write publishes a change
// notification so live watchers reload.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ariebrainware/nutritrack/feed"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a document does not exist for the given owner.
var ErrNotFound = errors.New("document not found")

// RosterTopic is signalled on any change to a clinician's patients.
func RosterTopic(uid string) string {
	return "users/" + uid + "/patients"
}

// PatientTopic is signalled on any change to a single patient.
func PatientTopic(uid, patientID string) string {
	return RosterTopic(uid) + "/" + patientID
}

// AppointmentsTopic is signalled on any change to a clinician's appointments.
func AppointmentsTopic(uid string) string {
	return "users/" + uid + "/appointments"
}

type base struct {
	db  *gorm.DB
	hub *feed.Hub
	now func() time.Time
}

func newBase(db *gorm.DB, hub *feed.Hub) base {
	return base{db: db, hub: hub, now: func() time.Time { return time.Now().UTC() }}
}

func (b base) publish(ctx context.Context, topics ...string) {
	if b.hub != nil {
		b.hub.Publish(ctx, topics...)
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
