package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"weatherwidget/internal/logger"
	"weatherwidget/internal/models"
)

// Endpoint names used in errors, spans and logs
const (
	EndpointCurrentByName   = "current-by-name"
	EndpointForecastByName  = "forecast-by-name"
	EndpointCurrentByCoords = "current-by-coordinates"
)

// DefaultOpenWeatherURL is the public OpenWeatherMap 2.5 API
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherFetcher talks to the OpenWeatherMap current weather and
// 5 day / 3 hour forecast endpoints
type OpenWeatherFetcher struct {
	client     *resty.Client
	baseURL    string
	apiKey     string
	normalizer *DataNormalizer
	tracer     trace.Tracer
	log        *logger.Logger
}

// NewOpenWeatherFetcher creates a fetcher against baseURL (DefaultOpenWeatherURL when empty)
func NewOpenWeatherFetcher(client *resty.Client, baseURL, apiKey string) *OpenWeatherFetcher {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherFetcher{
		client:     client,
		baseURL:    baseURL,
		apiKey:     apiKey,
		normalizer: NewDataNormalizer(),
		tracer:     otel.GetTracerProvider().Tracer("weatherwidget/fetchers"),
		log:        logger.Component("openweather"),
	}
}

// CurrentByCity fetches current conditions for a city name
func (f *OpenWeatherFetcher) CurrentByCity(ctx context.Context, city string) (*models.CurrentWeather, error) {
	var raw models.OWMWeatherResponse
	params := map[string]string{"q": city}
	if err := f.get(ctx, EndpointCurrentByName, "/weather", params, &raw); err != nil {
		return nil, err
	}
	return f.normalizer.Current(&raw), nil
}

// ForecastByCity fetches the 5 day / 3 hour forecast for a city name. The
// full provider series is returned; trimming is up to the caller.
func (f *OpenWeatherFetcher) ForecastByCity(ctx context.Context, city string) (models.ForecastSeries, error) {
	var raw models.OWMForecastResponse
	params := map[string]string{"q": city}
	if err := f.get(ctx, EndpointForecastByName, "/forecast", params, &raw); err != nil {
		return nil, err
	}
	return f.normalizer.Forecast(&raw), nil
}

// CurrentByCoordinates fetches current conditions for a coordinate pair
func (f *OpenWeatherFetcher) CurrentByCoordinates(ctx context.Context, coords models.Coordinates) (*models.CurrentWeather, error) {
	var raw models.OWMWeatherResponse
	params := map[string]string{
		"lat": strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
		"lon": strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
	}
	if err := f.get(ctx, EndpointCurrentByCoords, "/weather", params, &raw); err != nil {
		return nil, err
	}
	return f.normalizer.Current(&raw), nil
}

// get performs one GET and decodes a 200 body into out
func (f *OpenWeatherFetcher) get(ctx context.Context, endpoint, path string, params map[string]string, out interface{}) error {
	ctx, span := f.tracer.Start(ctx, "openweather."+endpoint)
	defer span.End()

	for k, v := range params {
		span.SetAttributes(attribute.String("query."+k, v))
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("units", "metric").
		SetQueryParam("appid", f.apiKey).
		Get(f.baseURL + path)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		f.log.Warn("Request failed", err, logger.Fields{"endpoint": endpoint})
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.StatusCode() != 200 {
		se := newStatusError(endpoint, resp.StatusCode(), resp.Body())
		span.RecordError(se)
		span.SetStatus(codes.Error, se.Error())
		f.log.Debug("Non-success status", logger.Fields{"endpoint": endpoint, "status": resp.StatusCode()})
		return se
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return &DecodeError{Endpoint: endpoint, Err: err}
	}

	f.log.Debug("Fetched", logger.Fields{"endpoint": endpoint, "bytes": len(resp.Body())})
	return nil
}
