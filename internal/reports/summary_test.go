package reports

import (
	"strings"
	"testing"
	"time"

	"weatherwidget/internal/acquisition"
	"weatherwidget/internal/models"
)

func sampleState() acquisition.State {
	return acquisition.State{
		Phase: acquisition.PhaseSuccess,
		Current: &models.CurrentWeather{
			Place:         "London",
			Country:       "GB",
			TemperatureC:  12.6,
			Humidity:      81,
			WindSpeedKMH:  15.48,
			ConditionCode: "04d",
			Description:   "broken clouds",
		},
		Forecast: models.ForecastSeries{
			{Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Unix(), TemperatureC: 10.4, ConditionCode: "10d"},
			{Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix(), TemperatureC: -0.3, ConditionCode: "13d"},
		},
	}
}

func TestSummarySuccess(t *testing.T) {
	md := SummaryIn(sampleState(), time.UTC)

	checks := []string{
		"## London, GB",
		"**13°C** broken clouds",
		"| 81% | 15.48 km/h |",
		"### Forecast",
		"| 09:00 | 10°C | 10d |",
		"| 12:00 | 0°C | 13d |",
	}
	for _, want := range checks {
		if !strings.Contains(md, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, md)
		}
	}
}

func TestSummaryError(t *testing.T) {
	state := acquisition.State{Phase: acquisition.PhaseFailed, Error: "City not found! Try another one", Kind: acquisition.CityNotFound}
	md := SummaryIn(state, time.UTC)

	if !strings.Contains(md, "City not found! Try another one") {
		t.Errorf("Expected error message in summary, got %q", md)
	}
	if strings.Contains(md, "Forecast") {
		t.Error("Expected no forecast section for a failed state")
	}
}

func TestSummaryIdleAndLoading(t *testing.T) {
	if md := SummaryIn(acquisition.Initial(), time.UTC); !strings.Contains(md, "Search for a city") {
		t.Errorf("Expected idle prompt, got %q", md)
	}

	loading := sampleState()
	loading.Loading = true
	md := SummaryIn(loading, nil)
	if !strings.Contains(md, "Loading") || !strings.Contains(md, "London") {
		t.Errorf("Expected loading marker with previous data, got %q", md)
	}
}

func TestSummaryNoForecast(t *testing.T) {
	state := sampleState()
	state.Forecast = models.ForecastSeries{}

	if md := SummaryIn(state, time.UTC); strings.Contains(md, "### Forecast") {
		t.Error("Expected no forecast table for an empty forecast")
	}
}

func TestFormatTemperature(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.4, "12"},
		{12.5, "13"},
		{-0.3, "0"},
		{-7.6, "-8"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := FormatTemperature(tt.in); got != tt.want {
			t.Errorf("FormatTemperature(%v): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}
