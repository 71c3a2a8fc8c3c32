// Package acquisition implements the weather acquisition flow: resolve a
// place (by name or by the device's location), fetch its current weather,
// then its forecast, and publish the outcome as a single State.
package acquisition

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"weatherwidget/internal/fetchers"
	"weatherwidget/internal/geolocation"
	"weatherwidget/internal/logger"
	"weatherwidget/internal/models"
)

// WeatherSource is the provider side of the flow
type WeatherSource interface {
	CurrentByCity(ctx context.Context, city string) (*models.CurrentWeather, error)
	ForecastByCity(ctx context.Context, city string) (models.ForecastSeries, error)
	CurrentByCoordinates(ctx context.Context, coords models.Coordinates) (*models.CurrentWeather, error)
}

// Result is the data of a successful attempt
type Result struct {
	Current  models.CurrentWeather
	Forecast models.ForecastSeries
}

// Flow runs acquisition attempts against a WeatherSource and records them
// in a Store. A nil Locator means the location capability is unsupported.
type Flow struct {
	source  WeatherSource
	locator geolocation.Locator
	store   *Store
	newID   func() string
	tracer  trace.Tracer
	log     *logger.Logger
}

// NewFlow creates a flow. A nil store gets a fresh one.
func NewFlow(source WeatherSource, locator geolocation.Locator, store *Store) *Flow {
	if store == nil {
		store = NewStore()
	}
	return &Flow{
		source:  source,
		locator: locator,
		store:   store,
		newID:   func() string { return ulid.Make().String() },
		tracer:  otel.GetTracerProvider().Tracer("weatherwidget/acquisition"),
		log:     logger.Component("acquisition"),
	}
}

// Store returns the state container the flow writes to
func (f *Flow) Store() *Store {
	return f.store
}

// FetchByCity looks up current weather and forecast for a city name. An
// empty name is ignored: no request is made and the state is unchanged.
func (f *Flow) FetchByCity(ctx context.Context, name string) State {
	q := models.CityQuery(name)
	if q.Validate() != nil {
		return f.store.Snapshot()
	}
	city := q.City

	ticket, _ := f.store.Start(f.newID())
	ctx, span := f.tracer.Start(ctx, "acquisition.fetch_by_city",
		trace.WithAttributes(attribute.String("attempt.id", ticket.AttemptID), attribute.String("city", city)))
	defer span.End()

	log := f.log.WithFields(logger.Fields{"attempt_id": ticket.AttemptID, "generation": ticket.Generation})
	log.Info("Fetching weather by city", logger.Fields{"city": city})

	res, aerr := f.fetchCity(ctx, q)
	return f.finish(span, log, ticket, res, aerr)
}

// FetchByLocation locates the device and chains into the city lookup for
// the place name reported at those coordinates.
func (f *Flow) FetchByLocation(ctx context.Context) State {
	ticket, _ := f.store.Start(f.newID())
	ctx, span := f.tracer.Start(ctx, "acquisition.fetch_by_location",
		trace.WithAttributes(attribute.String("attempt.id", ticket.AttemptID)))
	defer span.End()

	log := f.log.WithFields(logger.Fields{"attempt_id": ticket.AttemptID, "generation": ticket.Generation})
	log.Info("Fetching weather by location")

	res, aerr := f.fetchLocation(ctx, log)
	return f.finish(span, log, ticket, res, aerr)
}

func (f *Flow) fetchLocation(ctx context.Context, log *logger.Logger) (Result, *Error) {
	if f.locator == nil {
		return Result{}, newError(GeolocationUnsupported, geolocation.ErrUnsupported)
	}

	coords, err := f.locator.Locate(ctx)
	if err != nil {
		return Result{}, classifyLocateError(err)
	}
	log.Debug("Device located", logger.Fields{"coordinates": coords.String()})

	q := models.CoordinatesQuery(coords)
	if err := q.Validate(); err != nil {
		return Result{}, &Error{Kind: GeolocationDenied, Reason: err.Error(), Err: err}
	}

	cw, err := f.source.CurrentByCoordinates(ctx, *q.Coordinates)
	if err != nil {
		return Result{}, classifyCoordinatesError(err)
	}

	var place models.LocationQuery
	if cw != nil {
		place = models.CityQuery(cw.Place)
	}
	if place.Validate() != nil {
		return Result{}, newError(LocationNameUnresolved, nil)
	}

	log.Info("Resolved location to city", logger.Fields{"city": place.City})
	return f.fetchCity(ctx, place)
}

// fetchCity runs current weather then forecast. The forecast request is
// only made once the current weather has arrived, and a forecast failure
// discards the current weather too.
func (f *Flow) fetchCity(ctx context.Context, q models.LocationQuery) (Result, *Error) {
	city := q.City
	cw, err := f.source.CurrentByCity(ctx, city)
	if err != nil {
		return Result{}, newError(CityNotFound, err)
	}
	if cw == nil {
		return Result{}, newError(CityNotFound, errors.New("empty current weather"))
	}

	forecast, err := f.source.ForecastByCity(ctx, city)
	if err != nil {
		return Result{}, newError(ForecastUnavailable, err)
	}
	if forecast == nil {
		forecast = models.ForecastSeries{}
	}

	return Result{Current: *cw, Forecast: forecast}, nil
}

func (f *Flow) finish(span trace.Span, log *logger.Logger, ticket Ticket, res Result, aerr *Error) State {
	var (
		state  State
		stored bool
	)

	if aerr != nil {
		span.SetStatus(codes.Error, string(aerr.Kind))
		span.SetAttributes(attribute.String("error.kind", string(aerr.Kind)))
		if aerr.Err != nil {
			span.RecordError(aerr.Err)
		}
		log.Warn("Weather acquisition failed", aerr.Err, logger.Fields{"kind": string(aerr.Kind), "message": aerr.Message()})
		state, stored = f.store.Fail(ticket, aerr)
	} else {
		span.SetAttributes(attribute.String("place", res.Current.Place), attribute.Int("forecast.points", len(res.Forecast)))
		log.Info("Weather acquisition completed", logger.Fields{"place": res.Current.Place, "forecast_points": len(res.Forecast)})
		state, stored = f.store.Succeed(ticket, res)
	}

	if !stored {
		span.SetAttributes(attribute.Bool("attempt.superseded", true))
		log.Info("Result discarded, a newer attempt has started")
	}
	return state
}

func classifyLocateError(err error) *Error {
	if errors.Is(err, geolocation.ErrUnsupported) {
		return newError(GeolocationUnsupported, err)
	}
	reason := err.Error()
	var pe *geolocation.PositionError
	if errors.As(err, &pe) {
		reason = pe.Message
	}
	return &Error{Kind: GeolocationDenied, Reason: reason, Err: err}
}

func classifyCoordinatesError(err error) *Error {
	var de *fetchers.DecodeError
	if errors.As(err, &de) {
		return newError(LocationNameUnresolved, err)
	}

	var se *fetchers.StatusError
	if !errors.As(err, &se) {
		return newError(LocationFetchFailed, err)
	}
	switch {
	case se.NotFound():
		return newError(LocationWeatherNotFound, err)
	case se.Unauthorized():
		return newError(InvalidAPIKey, err)
	default:
		return &Error{Kind: LocationFetchFailed, StatusCode: se.StatusCode, Err: err}
	}
}
