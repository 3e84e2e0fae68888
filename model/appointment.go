package model

import "time"

// AppointmentStatus tracks the lifecycle of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a calendar entry. PatientID is a weak reference: deleting the
// patient leaves the appointment in place.
type Appointment struct {
	ID        string            `json:"id" gorm:"primaryKey;size:36"`
	UserID    string            `json:"-" gorm:"size:36;not null;index"`
	PatientID string            `json:"patientId" gorm:"size:36;index"`
	Date      time.Time         `json:"date" gorm:"index"`
	Time      string            `json:"time" gorm:"size:5"`
	Notes     string            `json:"notes" gorm:"type:text"`
	Status    AppointmentStatus `json:"status" gorm:"size:16;default:scheduled"`
	CreatedAt time.Time         `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time         `json:"updatedAt" gorm:"autoUpdateTime"`
}
