package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewAppointment is a validated appointment form.
type NewAppointment struct {
	PatientID string
	Date      time.Time
	Time      string
	Notes     string
	Status    model.AppointmentStatus
}

// AppointmentPatch updates only the fields that are set.
type AppointmentPatch struct {
	PatientID *string
	Date      *time.Time
	Time      *string
	Notes     *string
	Status    *model.AppointmentStatus
}

// Appointments reads and writes appointment documents.
type Appointments struct {
	base
}

// NewAppointments creates an appointment store.
func NewAppointments(db *gorm.DB, hub *feed.Hub) *Appointments {
	return &Appointments{base: newBase(db, hub)}
}

// Create stores a new appointment. An empty status defaults to scheduled.
func (s *Appointments) Create(ctx context.Context, uid string, in NewAppointment) (*model.Appointment, error) {
	status := in.Status
	if status == "" {
		status = model.StatusScheduled
	}
	a := model.Appointment{
		ID:        uuid.NewString(),
		UserID:    uid,
		PatientID: in.PatientID,
		Date:      in.Date,
		Time:      in.Time,
		Notes:     strings.TrimSpace(in.Notes),
		Status:    status,
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	s.publish(ctx, AppointmentsTopic(uid))
	return &a, nil
}

// Get loads one appointment owned by uid.
func (s *Appointments) Get(ctx context.Context, uid, id string) (*model.Appointment, error) {
	var a model.Appointment
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// Update applies a partial edit.
func (s *Appointments) Update(ctx context.Context, uid, id string, patch AppointmentPatch) (*model.Appointment, error) {
	var out model.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, uid).First(&out).Error; err != nil {
			return notFound(err)
		}
		if patch.PatientID != nil {
			out.PatientID = *patch.PatientID
		}
		if patch.Date != nil {
			out.Date = *patch.Date
		}
		if patch.Time != nil {
			out.Time = *patch.Time
		}
		if patch.Notes != nil {
			out.Notes = strings.TrimSpace(*patch.Notes)
		}
		if patch.Status != nil {
			out.Status = *patch.Status
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update appointment %s: %w", id, err)
	}
	s.publish(ctx, AppointmentsTopic(uid))
	return &out, nil
}

// Delete removes an appointment permanently.
func (s *Appointments) Delete(ctx context.Context, uid, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).Delete(&model.Appointment{})
	if res.Error != nil {
		return fmt.Errorf("delete appointment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(ctx, AppointmentsTopic(uid))
	return nil
}

// List returns every appointment in ascending date order.
func (s *Appointments) List(ctx context.Context, uid string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("date ASC").
		Order("created_at ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// Watch streams the appointment list.
func (s *Appointments) Watch(ctx context.Context, uid string) *feed.Subscription[[]model.Appointment] {
	return feed.Watch(ctx, s.hub, []string{AppointmentsTopic(uid)}, func(ctx context.Context) ([]model.Appointment, bool, error) {
		appts, err := s.List(ctx, uid)
		return appts, err == nil, err
	})
}
