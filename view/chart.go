package view

import (
	"fmt"
	"math"
	"time"

	"github.com/ariebrainware/nutritrack/calc"
	"github.com/ariebrainware/nutritrack/model"
)

// Chart kinds.
const (
	ChartWeight  = "weight"
	ChartIMC     = "imc"
	ChartBodyFat = "bodyfat"
)

// ChartKinds lists every chart the profile can render.
var ChartKinds = []string{ChartWeight, ChartIMC, ChartBodyFat}

// ChartStatus tells the renderer whether to draw the series or a fallback.
type ChartStatus string

const (
	ChartOK    ChartStatus = "ok"
	ChartEmpty ChartStatus = "empty"
	ChartError ChartStatus = "error"
)

const (
	weightChartWindow = 30
	metricChartWindow = 10
	miniChartWindow   = 7
)

// ChartPoint is one plotted value.
type ChartPoint struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

// ReferenceLine is a horizontal marker such as a goal or a category threshold.
type ReferenceLine struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ChartResult is prepared chart data. Only ChartOK results carry points worth drawing.
type ChartResult struct {
	Kind       string          `json:"kind"`
	Title      string          `json:"title"`
	Unit       string          `json:"unit"`
	Status     ChartStatus     `json:"status"`
	Points     []ChartPoint    `json:"points"`
	References []ReferenceLine `json:"references"`
	Message    string          `json:"message,omitempty"`
}

// IMCReferences are the category thresholds drawn on the IMC chart.
var IMCReferences = []ReferenceLine{
	{Name: "Underweight", Value: 18.5},
	{Name: "Normal", Value: 25},
	{Name: "Overweight", Value: 30},
}

func pointLabel(t time.Time) string {
	return t.Format("02/01/06")
}

func validValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func failed(kind, title, unit string, err error) ChartResult {
	return ChartResult{
		Kind:       kind,
		Title:      title,
		Unit:       unit,
		Status:     ChartError,
		Points:     []ChartPoint{},
		References: []ReferenceLine{},
		Message:    fmt.Sprintf("chart unavailable: %v", err),
	}
}

// PrepareWeightChart plots the last 30 weigh-ins. It needs at least two.
func PrepareWeightChart(p *model.Patient) ChartResult {
	const title, unit = "Weight", "kg"
	res := ChartResult{Kind: ChartWeight, Title: title, Unit: unit, Points: []ChartPoint{}, References: []ReferenceLine{}}
	if p == nil {
		return failed(ChartWeight, title, unit, fmt.Errorf("no patient"))
	}
	for _, e := range p.WeightHistory {
		if e.Date.IsZero() || !validValue(e.Weight) {
			return failed(ChartWeight, title, unit, fmt.Errorf("malformed weight entry"))
		}
	}
	if len(p.WeightHistory) < 2 {
		res.Status = ChartEmpty
		res.Message = "At least 2 weight records are needed to show the chart"
		return res
	}
	for _, e := range calc.Tail(p.WeightHistory, weightChartWindow) {
		res.Points = append(res.Points, ChartPoint{Date: e.Date, Label: pointLabel(e.Date), Value: calc.Round1(e.Weight)})
	}
	if target := p.Goals.Data().TargetWeight; target > 0 {
		res.References = append(res.References, ReferenceLine{Name: "Target", Value: target})
	}
	res.Status = ChartOK
	return res
}

func prepareMetricChart(p *model.Patient, kind, title, unit string, pick func(model.BodyMetricEntry) *float64) ChartResult {
	res := ChartResult{Kind: kind, Title: title, Unit: unit, Points: []ChartPoint{}, References: []ReferenceLine{}}
	if p == nil {
		return failed(kind, title, unit, fmt.Errorf("no patient"))
	}
	var recorded []model.BodyMetricEntry
	for _, e := range p.BodyMetrics {
		v := pick(e)
		if v == nil {
			continue
		}
		if !validValue(*v) {
			return failed(kind, title, unit, fmt.Errorf("malformed %s entry", kind))
		}
		if *v > 0 {
			recorded = append(recorded, e)
		}
	}
	if len(recorded) == 0 {
		res.Status = ChartEmpty
		res.Message = "No " + title + " records yet"
		return res
	}
	for _, e := range calc.Tail(recorded, metricChartWindow) {
		res.Points = append(res.Points, ChartPoint{Date: e.Date, Label: pointLabel(e.Date), Value: calc.Round1(*pick(e))})
	}
	res.Status = ChartOK
	return res
}

// PrepareIMCChart plots the last 10 recorded body-mass index values with the
// category thresholds.
func PrepareIMCChart(p *model.Patient) ChartResult {
	res := prepareMetricChart(p, ChartIMC, "IMC", "kg/m²", func(e model.BodyMetricEntry) *float64 { return e.IMC })
	if res.Status == ChartOK {
		res.References = append(res.References, IMCReferences...)
	}
	return res
}

// PrepareBodyFatChart plots the last 10 recorded body-fat values.
func PrepareBodyFatChart(p *model.Patient) ChartResult {
	res := prepareMetricChart(p, ChartBodyFat, "Body fat", "%", func(e model.BodyMetricEntry) *float64 { return e.BodyFat })
	if res.Status == ChartOK {
		if target := p.Goals.Data().TargetBodyFat; target > 0 {
			res.References = append(res.References, ReferenceLine{Name: "Target", Value: target})
		}
	}
	return res
}

// PrepareChart dispatches on kind.
func PrepareChart(p *model.Patient, kind string) (ChartResult, error) {
	switch kind {
	case ChartWeight:
		return PrepareWeightChart(p), nil
	case ChartIMC:
		return PrepareIMCChart(p), nil
	case ChartBodyFat:
		return PrepareBodyFatChart(p), nil
	}
	return ChartResult{}, fmt.Errorf("unknown chart kind %q", kind)
}

// MiniChart returns the last seven weights for roster cards, or nil when
// fewer than two are recorded.
func MiniChart(history []model.WeightEntry) []ChartPoint {
	if len(history) < 2 {
		return nil
	}
	tail := calc.Tail(history, miniChartWindow)
	points := make([]ChartPoint, len(tail))
	for i, e := range tail {
		points[i] = ChartPoint{Date: e.Date, Label: pointLabel(e.Date), Value: e.Weight}
	}
	return points
}
