package charts

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"weatherwidget/internal/models"
)

const forecastChartID = "chart-forecast"

// ChartSnippet is a rendered go-echarts chart. HTML is a standalone
// document, meant to be embedded in an iframe.
type ChartSnippet struct {
	ID    string
	Title string
	HTML  string
}

// ForecastLineSnippet builds an ECharts line chart of the forecast temperatures
func (cg *ChartGenerator) ForecastLineSnippet(series models.ForecastSeries) (ChartSnippet, error) {
	if len(series) == 0 {
		return ChartSnippet{}, ErrNoForecast
	}

	title := "Temperature Forecast"
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			ChartID:   forecastChartID,
			Width:     fmt.Sprintf("%dpx", cg.Width),
			Height:    fmt.Sprintf("%dpx", cg.Height),
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "°C",
		}),
	)

	xAxis := make([]string, len(series))
	temps := make([]opts.LineData, len(series))
	for i, p := range series {
		xAxis[i] = cg.hourLabel(p.Time())
		temps[i] = opts.LineData{Value: p.TemperatureC, Name: p.ConditionCode}
	}

	line.SetXAxis(xAxis).AddSeries("Temperature", temps)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to render forecast snippet: %w", err)
	}

	return ChartSnippet{ID: forecastChartID, Title: title, HTML: buf.String()}, nil
}
