package charts

import (
	"errors"
	"time"
)

// ErrNoForecast is returned when there are no points to plot
var ErrNoForecast = errors.New("no forecast data to chart")

// ChartGenerator renders forecast charts
type ChartGenerator struct {
	Width    int
	Height   int
	Location *time.Location // time zone for axis labels
}

// NewChartGenerator creates a new chart generator with default dimensions
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		Width:    640,
		Height:   320,
		Location: time.Local,
	}
}

func (cg *ChartGenerator) location() *time.Location {
	if cg.Location == nil {
		return time.Local
	}
	return cg.Location
}

// hourLabel formats a forecast time as HH:MM in the generator's zone
func (cg *ChartGenerator) hourLabel(t time.Time) string {
	return t.In(cg.location()).Format("15:04")
}
