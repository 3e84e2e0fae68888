// Package calc holds the derived values shown across the views: body-mass
// index, goal progress, check-in recency and roster search.
package calc

import (
	"sort"
	"time"

	"github.com/ariebrainware/nutritrack/model"
)

// Dated is any history entry carrying a timestamp.
type Dated interface {
	model.WeightEntry | model.BodyMetricEntry | model.Note
}

func dateOf[T Dated](v T) time.Time {
	switch e := any(v).(type) {
	case model.WeightEntry:
		return e.Date
	case model.BodyMetricEntry:
		return e.Date
	case model.Note:
		return e.Date
	}
	return time.Time{}
}

// SortByDate returns a copy of entries ordered by ascending date. Entries with
// equal dates keep their stored order.
func SortByDate[T Dated](entries []T) []T {
	out := make([]T, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return dateOf(out[i]).Before(dateOf(out[j]))
	})
	return out
}

// Latest returns the entry with the greatest date. ok is false for an empty history.
func Latest[T Dated](entries []T) (latest T, ok bool) {
	if len(entries) == 0 {
		return latest, false
	}
	sorted := SortByDate(entries)
	return sorted[len(sorted)-1], true
}

// Earliest returns the entry with the smallest date.
func Earliest[T Dated](entries []T) (earliest T, ok bool) {
	if len(entries) == 0 {
		return earliest, false
	}
	return SortByDate(entries)[0], true
}

// Tail returns the last n entries after sorting by date.
func Tail[T Dated](entries []T, n int) []T {
	sorted := SortByDate(entries)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// CurrentWeight is the weight of the most recent entry, or 0 when nothing is recorded.
func CurrentWeight(history []model.WeightEntry) float64 {
	e, ok := Latest(history)
	if !ok {
		return 0
	}
	return e.Weight
}

// InitialWeight is the weight of the oldest entry, or 0 when nothing is recorded.
func InitialWeight(history []model.WeightEntry) float64 {
	e, ok := Earliest(history)
	if !ok {
		return 0
	}
	return e.Weight
}

// CurrentIMC returns the most recent recorded body-mass index, skipping
// entries that only carry body fat.
func CurrentIMC(metrics []model.BodyMetricEntry) float64 {
	sorted := SortByDate(metrics)
	for i := len(sorted) - 1; i >= 0; i-- {
		if v := sorted[i].IMC; v != nil && *v > 0 {
			return *v
		}
	}
	return 0
}

// CurrentBodyFat is CurrentIMC for body fat.
func CurrentBodyFat(metrics []model.BodyMetricEntry) float64 {
	sorted := SortByDate(metrics)
	for i := len(sorted) - 1; i >= 0; i-- {
		if v := sorted[i].BodyFat; v != nil && *v > 0 {
			return *v
		}
	}
	return 0
}
