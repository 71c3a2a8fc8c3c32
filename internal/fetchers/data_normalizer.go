package fetchers

import (
	"math"

	"weatherwidget/internal/models"
)

// metersPerSecondToKMH converts OpenWeatherMap metric wind speed to km/h
const metersPerSecondToKMH = 3.6

// DataNormalizer turns provider wire records into domain records
type DataNormalizer struct{}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer() *DataNormalizer {
	return &DataNormalizer{}
}

// Current converts a current-weather response
func (n *DataNormalizer) Current(raw *models.OWMWeatherResponse) *models.CurrentWeather {
	if raw == nil {
		return nil
	}

	cw := &models.CurrentWeather{
		Place:        raw.Name,
		Country:      raw.Sys.Country,
		TemperatureC: raw.Main.Temp,
		Humidity:     clampHumidity(raw.Main.Humidity),
		WindSpeedKMH: roundTo(raw.Wind.Speed*metersPerSecondToKMH, 2),
	}

	if len(raw.Weather) > 0 {
		cw.ConditionCode = raw.Weather[0].Icon
		cw.Description = raw.Weather[0].Description
	}

	return cw
}

// Forecast converts a forecast response, keeping provider order
func (n *DataNormalizer) Forecast(raw *models.OWMForecastResponse) models.ForecastSeries {
	if raw == nil {
		return models.ForecastSeries{}
	}

	series := make(models.ForecastSeries, 0, len(raw.List))
	for _, item := range raw.List {
		point := models.ForecastPoint{
			Timestamp:    item.Dt,
			TemperatureC: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			point.ConditionCode = item.Weather[0].Icon
		}
		series = append(series, point)
	}
	return series
}

func clampHumidity(h int) int {
	switch {
	case h < 0:
		return 0
	case h > 100:
		return 100
	default:
		return h
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
