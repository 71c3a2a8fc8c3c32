package reports

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"weatherwidget/internal/acquisition"
	"weatherwidget/internal/models"
)

// Summary renders the state as markdown, with forecast times in local time
func Summary(state acquisition.State) string {
	return SummaryIn(state, time.Local)
}

// SummaryIn renders the state as markdown with forecast times in loc
func SummaryIn(state acquisition.State, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder

	if state.Error != "" {
		fmt.Fprintf(&b, "> **%s**\n", state.Error)
		return b.String()
	}

	if state.Loading {
		b.WriteString("_Loading..._\n\n")
	}

	if state.Current == nil {
		if !state.Loading {
			b.WriteString("Search for a city to see its weather.\n")
		}
		return b.String()
	}

	cw := state.Current
	place := cw.Place
	if cw.Country != "" {
		place += ", " + cw.Country
	}
	fmt.Fprintf(&b, "## %s\n\n", place)
	fmt.Fprintf(&b, "**%s°C**", FormatTemperature(cw.TemperatureC))
	if cw.Description != "" {
		fmt.Fprintf(&b, " %s", cw.Description)
	}
	b.WriteString("\n\n")

	b.WriteString("| Humidity | Wind |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| %d%% | %s km/h |\n", cw.Humidity, strconv.FormatFloat(cw.WindSpeedKMH, 'f', -1, 64))

	if len(state.Forecast) > 0 {
		b.WriteString("\n### Forecast\n\n")
		b.WriteString("| Time | Temperature | Conditions |\n")
		b.WriteString("|---|---|---|\n")
		for _, p := range state.Forecast {
			fmt.Fprintf(&b, "| %s | %s°C | %s |\n", FormatHour(p, loc), FormatTemperature(p.TemperatureC), p.ConditionCode)
		}
	}

	return b.String()
}

// FormatTemperature rounds to whole degrees
func FormatTemperature(c float64) string {
	r := math.Round(c)
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

// FormatHour renders a forecast point's time as HH:MM in loc
func FormatHour(p models.ForecastPoint, loc *time.Location) string {
	return p.Time().In(loc).Format("15:04")
}
