package store

import (
	"testing"
	"time"

	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentsCRUD(t *testing.T) {
	db := setupTestDB(t, "appointments_crud")
	s := NewAppointments(db, feed.NewHub())

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	later, err := s.Create(ctx(), "u1", NewAppointment{PatientID: "p1", Date: day(20), Time: "11:00"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, later.Status)

	earlier, err := s.Create(ctx(), "u1", NewAppointment{PatientID: "p2", Date: day(5), Time: "09:30", Notes: " first ", Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "first", earlier.Notes)

	list, err := s.List(ctx(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)

	cancelled := model.StatusCancelled
	newTime := "12:15"
	updated, err := s.Update(ctx(), "u1", later.ID, AppointmentPatch{Status: &cancelled, Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)
	assert.Equal(t, "12:15", updated.Time)
	assert.Equal(t, "p1", updated.PatientID)

	_, err = s.Update(ctx(), "u2", later.ID, AppointmentPatch{Status: &cancelled})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx(), "u1", later.ID))
	assert.ErrorIs(t, s.Delete(ctx(), "u1", later.ID), ErrNotFound)
	_, err = s.Get(ctx(), "u1", later.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppointmentsWatch(t *testing.T) {
	db := setupTestDB(t, "appointments_watch")
	s := NewAppointments(db, feed.NewHub())

	sub := s.Watch(ctx(), "u1")
	defer sub.Close()
	assert.Empty(t, receive(t, sub))

	_, err := s.Create(ctx(), "u1", NewAppointment{PatientID: "p1", Date: time.Now(), Time: "10:00"})
	require.NoError(t, err)
	assert.Len(t, receive(t, sub), 1)
}
