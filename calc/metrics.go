package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/ariebrainware/nutritrack/model"
)

// Category labels for a body-mass index value.
const (
	CategoryUnavailable = "unavailable"
	CategoryUnderweight = "underweight"
	CategoryNormal      = "normal"
	CategoryOverweight  = "overweight"
	CategoryObese       = "obese"
)

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BodyMassIndex computes weight / (height in metres)^2 rounded to one decimal.
// Returns 0 when either input is not positive.
func BodyMassIndex(weightKg, heightCm float64) float64 {
	if heightCm <= 0 || weightKg <= 0 {
		return 0
	}
	m := heightCm / 100
	return Round1(weightKg / (m * m))
}

// Category classifies a body-mass index. Each threshold belongs to the
// higher category.
func Category(imc float64) string {
	switch {
	case imc <= 0:
		return CategoryUnavailable
	case imc < 18.5:
		return CategoryUnderweight
	case imc < 25:
		return CategoryNormal
	case imc < 30:
		return CategoryOverweight
	default:
		return CategoryObese
	}
}

// ProgressPercent measures how far current has travelled from initial toward
// target, in either direction, clamped to [0, 100].
func ProgressPercent(initial, current, target float64) float64 {
	var num, den float64
	if target < initial {
		num, den = initial-current, initial-target
	} else {
		num, den = current-initial, target-initial
	}
	if den == 0 {
		return 100
	}
	return clamp(num/den*100, 0, 100)
}

// GoalProgress is ProgressPercent over a weight history: the oldest entry is
// the starting point and the newest is the current value. No history or no
// target yields 0.
func GoalProgress(history []model.WeightEntry, target float64) float64 {
	if len(history) == 0 || target <= 0 {
		return 0
	}
	return ProgressPercent(InitialWeight(history), CurrentWeight(history), target)
}

// SuggestIMC returns the body-mass index to prefill in the metric form for a
// typed weight. ok is false when the toggle is off or the input cannot be used.
func SuggestIMC(weightInput string, heightCm float64, enabled bool) (string, bool) {
	if !enabled {
		return "", false
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(weightInput), 64)
	if err != nil || w <= 0 {
		return "", false
	}
	imc := BodyMassIndex(w, heightCm)
	if imc == 0 {
		return "", false
	}
	return strconv.FormatFloat(imc, 'f', 1, 64), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
