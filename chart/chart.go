// Package chart renders prepared chart data as standalone HTML.
package chart

import (
	"fmt"
	"html"
	"io"

	"github.com/ariebrainware/nutritrack/view"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const fallbackPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title></head>
<body><div class="chart-fallback chart-%s"><h3>%s</h3><p>%s</p></div></body></html>
`

// Render writes res as an interactive line chart. Results that are empty or
// failed render a short message instead of the chart.
func Render(w io.Writer, res view.ChartResult) error {
	if res.Status != view.ChartOK || len(res.Points) == 0 {
		return Fallback(w, res)
	}
	return newLine(res).Render(w)
}

// Fallback writes the placeholder shown in place of a chart.
func Fallback(w io.Writer, res view.ChartResult) error {
	msg := res.Message
	if msg == "" {
		msg = "No data to display"
	}
	title := html.EscapeString(res.Title)
	_, err := fmt.Fprintf(w, fallbackPage, title, html.EscapeString(string(res.Status)), title, html.EscapeString(msg))
	return err
}

func newLine(res view.ChartResult) *charts.Line {
	xAxis := make([]string, len(res.Points))
	yData := make([]opts.LineData, len(res.Points))
	for i, p := range res.Points {
		xAxis[i] = p.Label
		yData[i] = opts.LineData{Value: p.Value}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: res.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: res.Unit, Scale: opts.Bool(true)}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
	}
	if len(res.References) > 0 {
		items := make([]interface{}, 0, len(res.References))
		for _, ref := range res.References {
			items = append(items, opts.MarkLineNameYAxisItem{Name: ref.Name, YAxis: ref.Value})
		}
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: items,
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	line.SetXAxis(xAxis).
		AddSeries(res.Title, yData).
		SetSeriesOptions(seriesOpts...)
	return line
}
