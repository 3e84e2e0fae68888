package view

import "github.com/ariebrainware/nutritrack/model"

// PatientNotFound is shown for an appointment whose patient no longer exists.
const PatientNotFound = "patient not found"

// StatusLabel is the display text of an appointment status.
func StatusLabel(s model.AppointmentStatus) string {
	switch s {
	case model.StatusScheduled:
		return "Scheduled"
	case model.StatusCompleted:
		return "Completed"
	case model.StatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// PatientIndex maps patient ids to names for appointment rendering.
type PatientIndex map[string]string

// IndexPatients builds a PatientIndex.
func IndexPatients(patients []model.Patient) PatientIndex {
	idx := make(PatientIndex, len(patients))
	for _, p := range patients {
		idx[p.ID] = p.Name
	}
	return idx
}

// PatientName resolves a weak patient reference.
func (idx PatientIndex) PatientName(id string) string {
	if name, ok := idx[id]; ok {
		return name
	}
	return PatientNotFound
}
