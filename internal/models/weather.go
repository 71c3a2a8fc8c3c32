package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxForecastPoints is how many provider forecast points are kept
const MaxForecastPoints = 5

// Coordinates is a geographic position in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the coordinates as "lat,lon"
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', 4, 64)
}

// Valid reports whether both components are within their ranges
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// LocationQuery selects what a single fetch attempt looks up: a city name or
// a coordinate pair, never both.
type LocationQuery struct {
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// CityQuery builds a name-based query
func CityQuery(name string) LocationQuery {
	return LocationQuery{City: strings.TrimSpace(name)}
}

// CoordinatesQuery builds a coordinate-based query
func CoordinatesQuery(c Coordinates) LocationQuery {
	return LocationQuery{Coordinates: &c}
}

// Validate checks that exactly one form of location is set
func (q LocationQuery) Validate() error {
	hasCity := q.City != ""
	hasCoords := q.Coordinates != nil
	switch {
	case hasCity && hasCoords:
		return fmt.Errorf("query has both city %q and coordinates %s", q.City, q.Coordinates)
	case !hasCity && !hasCoords:
		return fmt.Errorf("query has neither city nor coordinates")
	case hasCoords && !q.Coordinates.Valid():
		return fmt.Errorf("coordinates out of range: %s", q.Coordinates)
	}
	return nil
}

// CurrentWeather is a snapshot reading for one place
type CurrentWeather struct {
	Place         string  `json:"place"`
	Country       string  `json:"country,omitempty"`
	TemperatureC  float64 `json:"temperature_c"`
	Humidity      int     `json:"humidity"`       // percent, 0-100
	WindSpeedKMH  float64 `json:"wind_speed_kmh"` // km/h
	ConditionCode string  `json:"condition_code"` // provider icon id, e.g. "04d"
	Description   string  `json:"description,omitempty"`
}

// ForecastPoint is one predicted reading
type ForecastPoint struct {
	Timestamp     int64   `json:"timestamp"` // seconds since epoch
	TemperatureC  float64 `json:"temperature_c"`
	ConditionCode string  `json:"condition_code"`
}

// Time returns the point's timestamp as a time.Time
func (p ForecastPoint) Time() time.Time {
	return time.Unix(p.Timestamp, 0)
}

// ForecastSeries is a chronological sequence of forecast points
type ForecastSeries []ForecastPoint

// Head returns the first n points. The result is never nil, so an empty
// forecast stays distinguishable from an absent one.
func (s ForecastSeries) Head(n int) ForecastSeries {
	if n > len(s) {
		n = len(s)
	}
	if n < 0 {
		n = 0
	}
	out := make(ForecastSeries, n)
	copy(out, s[:n])
	return out
}

// Chronological reports whether timestamps never decrease
func (s ForecastSeries) Chronological() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp < s[i-1].Timestamp {
			return false
		}
	}
	return true
}

// TemperatureRange returns the min and max temperature of the series
func (s ForecastSeries) TemperatureRange() (min, max float64) {
	for i, p := range s {
		if i == 0 || p.TemperatureC < min {
			min = p.TemperatureC
		}
		if i == 0 || p.TemperatureC > max {
			max = p.TemperatureC
		}
	}
	return min, max
}
