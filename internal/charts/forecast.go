package charts

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"weatherwidget/internal/models"
)

// RenderForecastPNG writes a temperature line chart of the forecast as PNG
func (cg *ChartGenerator) RenderForecastPNG(w io.Writer, series models.ForecastSeries) error {
	if len(series) == 0 {
		return ErrNoForecast
	}

	times := make([]time.Time, len(series))
	temps := make([]float64, len(series))
	for i, p := range series {
		times[i] = p.Time()
		temps[i] = p.TemperatureC
	}

	// go-chart rejects a series whose x values span zero time, so a lone
	// point is drawn as a flat segment an hour either side of it.
	xValues, yValues := times, temps
	if len(series) == 1 {
		t, v := times[0], temps[0]
		xValues = []time.Time{t.Add(-time.Hour), t, t.Add(time.Hour)}
		yValues = []float64{v, v, v}
	}

	minT, maxT := series.TemperatureRange()
	first, last := xValues[0], xValues[len(xValues)-1]
	if !last.After(first) {
		first = first.Add(-time.Hour)
		last = last.Add(time.Hour)
	}

	graph := chart.Chart{
		Title: "Temperature Forecast",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: drawing.Color{R: 248, G: 249, B: 250, A: 255},
		},
		Width:  cg.Width,
		Height: cg.Height,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				FontSize: 10,
			},
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(first),
				Max: chart.TimeToFloat64(last),
			},
			Ticks: cg.generateTimeTicks(times),
		},
		YAxis: chart.YAxis{
			Name: "°C",
			Style: chart.Style{
				FontSize: 10,
			},
			Range: &chart.ContinuousRange{
				Min: minT - 2,
				Max: maxT + 2,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Temperature",
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 255, G: 107, B: 53, A: 255},
					StrokeWidth: 3,
					DotColor:    drawing.Color{R: 255, G: 107, B: 53, A: 255},
					DotWidth:    5,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render forecast chart: %w", err)
	}
	return nil
}

// generateTimeTicks creates one labelled tick per forecast point
func (cg *ChartGenerator) generateTimeTicks(xValues []time.Time) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(xValues))
	for _, t := range xValues {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: cg.hourLabel(t),
		})
	}
	return ticks
}
