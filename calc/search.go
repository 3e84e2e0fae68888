package calc

import (
	"strings"

	"github.com/ariebrainware/nutritrack/model"
)

// FilterPatients keeps patients whose name or email contains term, ignoring
// case. An empty term returns patients untouched.
func FilterPatients(patients []model.Patient, term string) []model.Patient {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return patients
	}
	out := make([]model.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Email), term) {
			out = append(out, p)
		}
	}
	return out
}
