package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewPatient is the validated intake form.
type NewPatient struct {
	Name          string
	Email         string
	Phone         string
	Age           int
	Gender        model.Gender
	Height        float64
	InitialWeight float64
	TargetWeight  float64
	TargetBodyFat float64
}

// PatientInfo is the editable identity block of a patient.
type PatientInfo struct {
	Name   string
	Email  string
	Phone  string
	Age    int
	Gender model.Gender
	Height float64
}

// Metrics is one metric-entry submission. Weight is required; the body
// metrics are appended only when at least one of them is set.
type Metrics struct {
	Weight  float64
	IMC     *float64
	BodyFat *float64
}

// Patients reads and writes patient documents.
type Patients struct {
	base
}

// NewPatients creates a patient store. hub may be nil when no watcher needs
// notifications.
func NewPatients(db *gorm.DB, hub *feed.Hub) *Patients {
	return &Patients{base: newBase(db, hub)}
}

func (s *Patients) topics(uid, id string) []string {
	return []string{RosterTopic(uid), PatientTopic(uid, id)}
}

// Create stores a new patient with one seed weight entry.
func (s *Patients) Create(ctx context.Context, uid string, in NewPatient) (*model.Patient, error) {
	now := s.now()
	p := model.Patient{
		ID:     uuid.NewString(),
		UserID: uid,
		Name:   util.NormalizeName(in.Name),
		Email:  strings.TrimSpace(in.Email),
		Phone:  strings.TrimSpace(in.Phone),
		Age:    in.Age,
		Gender: in.Gender,
		Height: in.Height,
		Weight: in.InitialWeight,
		Goals: datatypes.NewJSONType(model.Goals{
			TargetWeight:  in.TargetWeight,
			TargetBodyFat: in.TargetBodyFat,
		}),
		WeightHistory: datatypes.JSONSlice[model.WeightEntry]{{Date: now, Weight: in.InitialWeight}},
		BodyMetrics:   datatypes.JSONSlice[model.BodyMetricEntry]{},
		Notes:         datatypes.JSONSlice[model.Note]{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	s.publish(ctx, s.topics(uid, p.ID)...)
	return &p, nil
}

// Get loads one patient owned by uid.
func (s *Patients) Get(ctx context.Context, uid, id string) (*model.Patient, error) {
	return s.get(s.db.WithContext(ctx), uid, id)
}

func (s *Patients) get(tx *gorm.DB, uid, id string) (*model.Patient, error) {
	var p model.Patient
	if err := tx.Where("id = ? AND user_id = ?", id, uid).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// List returns the roster, newest first.
func (s *Patients) List(ctx context.Context, uid string) ([]model.Patient, error) {
	var patients []model.Patient
	err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("created_at DESC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// ListByName returns the roster alphabetically, as used by pickers.
func (s *Patients) ListByName(ctx context.Context, uid string) ([]model.Patient, error) {
	var patients []model.Patient
	err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("name ASC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients by name: %w", err)
	}
	return patients, nil
}

// mutate runs a read-modify-write of one patient document in a transaction and
// publishes on success.
func (s *Patients) mutate(ctx context.Context, uid, id string, fn func(p *model.Patient)) (*model.Patient, error) {
	var out *model.Patient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.get(tx, uid, id)
		if err != nil {
			return err
		}
		fn(p)
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update patient %s: %w", id, err)
	}
	s.publish(ctx, s.topics(uid, id)...)
	return out, nil
}

// UpdateInfo replaces the identity block.
func (s *Patients) UpdateInfo(ctx context.Context, uid, id string, info PatientInfo) (*model.Patient, error) {
	return s.mutate(ctx, uid, id, func(p *model.Patient) {
		p.Name = util.NormalizeName(info.Name)
		p.Email = strings.TrimSpace(info.Email)
		p.Phone = strings.TrimSpace(info.Phone)
		p.Age = info.Age
		p.Gender = info.Gender
		p.Height = info.Height
	})
}

// UpdateGoals replaces the goal targets.
func (s *Patients) UpdateGoals(ctx context.Context, uid, id string, goals model.Goals) (*model.Patient, error) {
	return s.mutate(ctx, uid, id, func(p *model.Patient) {
		p.Goals = datatypes.NewJSONType(goals)
	})
}

// AddMetrics appends a weigh-in and, when given, a body-metric reading with
// the same timestamp. The patient's weight field keeps its intake value.
func (s *Patients) AddMetrics(ctx context.Context, uid, id string, m Metrics) (*model.Patient, error) {
	now := s.now()
	return s.mutate(ctx, uid, id, func(p *model.Patient) {
		p.WeightHistory = append(p.WeightHistory, model.WeightEntry{Date: now, Weight: m.Weight})
		if m.IMC != nil || m.BodyFat != nil {
			p.BodyMetrics = append(p.BodyMetrics, model.BodyMetricEntry{Date: now, IMC: m.IMC, BodyFat: m.BodyFat})
		}
	})
}

// AddNote appends a trimmed note.
func (s *Patients) AddNote(ctx context.Context, uid, id, text string) (*model.Patient, error) {
	now := s.now()
	return s.mutate(ctx, uid, id, func(p *model.Patient) {
		p.Notes = append(p.Notes, model.Note{Date: now, Text: strings.TrimSpace(text)})
	})
}

// Delete removes the patient permanently. Appointments referencing it are kept.
func (s *Patients) Delete(ctx context.Context, uid, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).Delete(&model.Patient{})
	if res.Error != nil {
		return fmt.Errorf("delete patient %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(ctx, s.topics(uid, id)...)
	return nil
}

// WatchRoster streams the roster, newest first.
func (s *Patients) WatchRoster(ctx context.Context, uid string) *feed.Subscription[[]model.Patient] {
	return feed.Watch(ctx, s.hub, []string{RosterTopic(uid)}, func(ctx context.Context) ([]model.Patient, bool, error) {
		patients, err := s.List(ctx, uid)
		return patients, err == nil, err
	})
}

// WatchPatient streams one patient. Nothing is delivered until the patient
// exists; once seen, a deletion is delivered as nil.
func (s *Patients) WatchPatient(ctx context.Context, uid, id string) *feed.Subscription[*model.Patient] {
	seen := false
	return feed.Watch(ctx, s.hub, []string{PatientTopic(uid, id)}, func(ctx context.Context) (*model.Patient, bool, error) {
		p, err := s.Get(ctx, uid, id)
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, seen, nil
		case err != nil:
			return nil, false, err
		}
		seen = true
		return p, true, nil
	})
}
