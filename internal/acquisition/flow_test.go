package acquisition

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"weatherwidget/internal/fetchers"
	"weatherwidget/internal/geolocation"
	"weatherwidget/internal/models"
)

// fakeSource is a scripted WeatherSource that records every call
type fakeSource struct {
	mu sync.Mutex

	current     map[string]*models.CurrentWeather
	currentErr  error
	forecast    models.ForecastSeries
	forecastErr error
	byCoords    *models.CurrentWeather
	byCoordsErr error

	calls []string
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) CurrentByCity(ctx context.Context, city string) (*models.CurrentWeather, error) {
	f.record("current:" + city)
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	cw, ok := f.current[city]
	if !ok {
		return nil, &fetchers.StatusError{Endpoint: fetchers.EndpointCurrentByName, StatusCode: http.StatusNotFound, Message: "city not found"}
	}
	return cw, nil
}

func (f *fakeSource) ForecastByCity(ctx context.Context, city string) (models.ForecastSeries, error) {
	f.record("forecast:" + city)
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return f.forecast, nil
}

func (f *fakeSource) CurrentByCoordinates(ctx context.Context, coords models.Coordinates) (*models.CurrentWeather, error) {
	f.record("coords:" + coords.String())
	if f.byCoordsErr != nil {
		return nil, f.byCoordsErr
	}
	return f.byCoords, nil
}

func londonWeather() *models.CurrentWeather {
	return &models.CurrentWeather{
		Place:         "London",
		Country:       "GB",
		TemperatureC:  12.3,
		Humidity:      81,
		WindSpeedKMH:  15.48,
		ConditionCode: "04d",
		Description:   "broken clouds",
	}
}

func series(n int) models.ForecastSeries {
	s := make(models.ForecastSeries, n)
	for i := range s {
		s[i] = models.ForecastPoint{
			Timestamp:     1700000000 + int64(i)*3*3600,
			TemperatureC:  10 + float64(i),
			ConditionCode: "10d",
		}
	}
	return s
}

func newTestFlow(src *fakeSource, locator geolocation.Locator) *Flow {
	f := NewFlow(src, locator, nil)
	n := 0
	f.newID = func() string {
		n++
		return "attempt-" + string(rune('0'+n))
	}
	return f
}

func TestFetchByCitySuccess(t *testing.T) {
	src := &fakeSource{
		current:  map[string]*models.CurrentWeather{"London": londonWeather()},
		forecast: series(8),
	}
	flow := newTestFlow(src, nil)

	state := flow.FetchByCity(context.Background(), "London")

	if state.Phase != PhaseSuccess {
		t.Errorf("Expected phase %s, got %s", PhaseSuccess, state.Phase)
	}
	if state.Loading {
		t.Error("Expected loading to be false after success")
	}
	if state.Error != "" {
		t.Errorf("Expected no error, got %q", state.Error)
	}
	if state.Current == nil || state.Current.Place != "London" {
		t.Fatalf("Expected current weather for London, got %+v", state.Current)
	}
	if state.Current.Humidity != 81 || state.Current.WindSpeedKMH != 15.48 {
		t.Errorf("Expected humidity 81 and wind 15.48, got %d and %v", state.Current.Humidity, state.Current.WindSpeedKMH)
	}
	if len(state.Forecast) != models.MaxForecastPoints {
		t.Fatalf("Expected %d forecast points, got %d", models.MaxForecastPoints, len(state.Forecast))
	}
	for i, p := range state.Forecast {
		if p != src.forecast[i] {
			t.Errorf("Expected forecast[%d] = %+v, got %+v", i, src.forecast[i], p)
		}
	}
	if !state.Forecast.Chronological() {
		t.Error("Expected forecast to be chronological")
	}

	calls := src.Calls()
	if len(calls) != 2 || calls[0] != "current:London" || calls[1] != "forecast:London" {
		t.Errorf("Expected current then forecast, got %v", calls)
	}

	if got := flow.Store().Snapshot(); got.Phase != PhaseSuccess || got.AttemptID != state.AttemptID {
		t.Errorf("Expected store to hold returned state, got %+v", got)
	}
}

func TestFetchByCityShortForecast(t *testing.T) {
	src := &fakeSource{
		current:  map[string]*models.CurrentWeather{"Oslo": {Place: "Oslo", ConditionCode: "01d"}},
		forecast: series(3),
	}
	state := newTestFlow(src, nil).FetchByCity(context.Background(), "Oslo")

	if len(state.Forecast) != 3 {
		t.Errorf("Expected 3 forecast points, got %d", len(state.Forecast))
	}
}

func TestFetchByCityEmptyForecast(t *testing.T) {
	src := &fakeSource{
		current:  map[string]*models.CurrentWeather{"Oslo": {Place: "Oslo", ConditionCode: "01d"}},
		forecast: nil,
	}
	state := newTestFlow(src, nil).FetchByCity(context.Background(), "Oslo")

	if state.Phase != PhaseSuccess {
		t.Fatalf("Expected success, got %s (%s)", state.Phase, state.Error)
	}
	if state.Forecast == nil {
		t.Error("Expected an empty, non-nil forecast")
	}
	if len(state.Forecast) != 0 {
		t.Errorf("Expected no forecast points, got %d", len(state.Forecast))
	}
}

func TestFetchByCityTrimsName(t *testing.T) {
	src := &fakeSource{
		current:  map[string]*models.CurrentWeather{"London": londonWeather()},
		forecast: series(5),
	}
	state := newTestFlow(src, nil).FetchByCity(context.Background(), "  London \t")

	if state.Phase != PhaseSuccess {
		t.Fatalf("Expected success, got %s", state.Phase)
	}
	if calls := src.Calls(); calls[0] != "current:London" {
		t.Errorf("Expected trimmed city in request, got %v", calls)
	}
}

func TestFetchByCityEmptyName(t *testing.T) {
	tests := []string{"", "   ", "\t\n"}

	for _, name := range tests {
		src := &fakeSource{}
		flow := newTestFlow(src, nil)
		before := flow.Store().Snapshot()
		gen := flow.Store().Generation()

		state := flow.FetchByCity(context.Background(), name)

		if len(src.Calls()) != 0 {
			t.Errorf("Expected no requests for %q, got %v", name, src.Calls())
		}
		if state.Phase != before.Phase || state.Loading || state.Error != "" {
			t.Errorf("Expected unchanged state for %q, got %+v", name, state)
		}
		if flow.Store().Generation() != gen {
			t.Errorf("Expected no attempt to start for %q", name)
		}
	}
}

func TestFetchByCityNotFound(t *testing.T) {
	src := &fakeSource{current: map[string]*models.CurrentWeather{}}
	state := newTestFlow(src, nil).FetchByCity(context.Background(), "Atlantis")

	if state.Phase != PhaseFailed {
		t.Errorf("Expected phase %s, got %s", PhaseFailed, state.Phase)
	}
	if state.Error != "City not found! Try another one" {
		t.Errorf("Expected city-not-found message, got %q", state.Error)
	}
	if state.Kind != CityNotFound {
		t.Errorf("Expected kind %s, got %s", CityNotFound, state.Kind)
	}
	if state.Current != nil || state.Forecast != nil {
		t.Error("Expected data to be cleared on failure")
	}
	if state.Loading {
		t.Error("Expected loading to be false after failure")
	}

	for _, call := range src.Calls() {
		if call == "forecast:Atlantis" {
			t.Error("Expected forecast not to be requested after current weather failed")
		}
	}
}

func TestFetchByCityTransportFailure(t *testing.T) {
	src := &fakeSource{currentErr: errors.New("connection refused")}
	state := newTestFlow(src, nil).FetchByCity(context.Background(), "London")

	if state.Kind != CityNotFound {
		t.Errorf("Expected any current-weather failure to be %s, got %s", CityNotFound, state.Kind)
	}
}

func TestFetchByCityForecastUnavailable(t *testing.T) {
	src := &fakeSource{
		current:     map[string]*models.CurrentWeather{"London": londonWeather()},
		forecastErr: &fetchers.StatusError{Endpoint: fetchers.EndpointForecastByName, StatusCode: http.StatusInternalServerError},
	}
	state := newTestFlow(src, nil).FetchByCity(context.Background(), "London")

	if state.Error != "Unable to fetch forecast data" {
		t.Errorf("Expected forecast message, got %q", state.Error)
	}
	if state.Current != nil {
		t.Error("Expected current weather to be discarded when the forecast fails")
	}
	if !state.Consistent() {
		t.Errorf("Expected consistent state, got %+v", state)
	}
}

func TestFetchByCityRecoversAfterFailure(t *testing.T) {
	src := &fakeSource{current: map[string]*models.CurrentWeather{"London": londonWeather()}, forecast: series(6)}
	flow := newTestFlow(src, nil)

	failed := flow.FetchByCity(context.Background(), "Atlantis")
	if failed.Phase != PhaseFailed {
		t.Fatalf("Expected failure first, got %s", failed.Phase)
	}

	ok := flow.FetchByCity(context.Background(), "London")
	if ok.Error != "" || ok.Kind != "" {
		t.Errorf("Expected error cleared after success, got %q", ok.Error)
	}
	if ok.Current == nil {
		t.Error("Expected current weather after success")
	}
}

func TestFetchByCityIdempotent(t *testing.T) {
	src := &fakeSource{current: map[string]*models.CurrentWeather{"London": londonWeather()}, forecast: series(7)}
	flow := newTestFlow(src, nil)

	first := flow.FetchByCity(context.Background(), "London")
	second := flow.FetchByCity(context.Background(), "London")

	if *first.Current != *second.Current {
		t.Errorf("Expected identical current weather, got %+v and %+v", first.Current, second.Current)
	}
	if len(first.Forecast) != len(second.Forecast) {
		t.Fatalf("Expected identical forecast length, got %d and %d", len(first.Forecast), len(second.Forecast))
	}
	for i := range first.Forecast {
		if first.Forecast[i] != second.Forecast[i] {
			t.Errorf("Expected identical forecast[%d]", i)
		}
	}
	if first.AttemptID == second.AttemptID {
		t.Error("Expected each attempt to get its own ID")
	}
}

func TestFetchByLocationSuccess(t *testing.T) {
	coords := models.Coordinates{Latitude: 51.5, Longitude: -0.12}
	src := &fakeSource{
		byCoords: &models.CurrentWeather{Place: "London"},
		current:  map[string]*models.CurrentWeather{"London": londonWeather()},
		forecast: series(8),
	}
	locator := geolocation.LocatorFunc(func(context.Context) (models.Coordinates, error) {
		return coords, nil
	})

	state := newTestFlow(src, locator).FetchByLocation(context.Background())

	if state.Phase != PhaseSuccess {
		t.Fatalf("Expected success, got %s (%s)", state.Phase, state.Error)
	}
	if state.Current.Place != "London" || len(state.Forecast) != 5 {
		t.Errorf("Expected London with 5 forecast points, got %s with %d", state.Current.Place, len(state.Forecast))
	}

	want := []string{"coords:" + coords.String(), "current:London", "forecast:London"}
	calls := src.Calls()
	if len(calls) != len(want) {
		t.Fatalf("Expected calls %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("Expected call %d to be %s, got %s", i, want[i], calls[i])
		}
	}
}

func TestFetchByLocationFailures(t *testing.T) {
	okLocator := geolocation.LocatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{Latitude: 1, Longitude: 2}, nil
	})

	tests := []struct {
		name     string
		locator  geolocation.Locator
		src      *fakeSource
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "no locator",
			locator:  nil,
			src:      &fakeSource{},
			wantKind: GeolocationUnsupported,
			wantMsg:  "Geolocation is not supported by this browser.",
		},
		{
			name: "locator unsupported",
			locator: geolocation.LocatorFunc(func(context.Context) (models.Coordinates, error) {
				return models.Coordinates{}, geolocation.ErrUnsupported
			}),
			src:      &fakeSource{},
			wantKind: GeolocationUnsupported,
			wantMsg:  "Geolocation is not supported by this browser.",
		},
		{
			name:     "permission denied",
			locator:  geolocation.DeniedLocator{Reason: "User denied Geolocation"},
			src:      &fakeSource{},
			wantKind: GeolocationDenied,
			wantMsg:  "Unable to retrieve location: User denied Geolocation",
		},
		{
			name: "plain locator error",
			locator: geolocation.LocatorFunc(func(context.Context) (models.Coordinates, error) {
				return models.Coordinates{}, errors.New("no fix")
			}),
			src:      &fakeSource{},
			wantKind: GeolocationDenied,
			wantMsg:  "Unable to retrieve location: no fix",
		},
		{
			name: "coordinates out of range",
			locator: geolocation.LocatorFunc(func(context.Context) (models.Coordinates, error) {
				return models.Coordinates{Latitude: 200, Longitude: 2}, nil
			}),
			src:      &fakeSource{byCoords: &models.CurrentWeather{Place: "London"}},
			wantKind: GeolocationDenied,
			wantMsg:  "Unable to retrieve location: coordinates out of range: 200.0000,2.0000",
		},
		{
			name:     "weather not found",
			locator:  okLocator,
			src:      &fakeSource{byCoordsErr: &fetchers.StatusError{StatusCode: http.StatusNotFound}},
			wantKind: LocationWeatherNotFound,
			wantMsg:  "Could not find weather data for your location.",
		},
		{
			name:     "invalid api key",
			locator:  okLocator,
			src:      &fakeSource{byCoordsErr: &fetchers.StatusError{StatusCode: http.StatusUnauthorized}},
			wantKind: InvalidAPIKey,
			wantMsg:  "Invalid API Key for OpenWeatherMap.",
		},
		{
			name:     "server error",
			locator:  okLocator,
			src:      &fakeSource{byCoordsErr: &fetchers.StatusError{StatusCode: http.StatusInternalServerError}},
			wantKind: LocationFetchFailed,
			wantMsg:  "Unable to fetch location data (Status 500)",
		},
		{
			name:     "transport failure",
			locator:  okLocator,
			src:      &fakeSource{byCoordsErr: errors.New("dial tcp: connection refused")},
			wantKind: LocationFetchFailed,
			wantMsg:  "Unable to fetch location data (Status 0)",
		},
		{
			name:     "malformed body",
			locator:  okLocator,
			src:      &fakeSource{byCoordsErr: &fetchers.DecodeError{Endpoint: fetchers.EndpointCurrentByCoords, Err: errors.New("bad json")}},
			wantKind: LocationNameUnresolved,
			wantMsg:  "Could not determine city name from location.",
		},
		{
			name:     "missing name",
			locator:  okLocator,
			src:      &fakeSource{byCoords: &models.CurrentWeather{Place: "  "}},
			wantKind: LocationNameUnresolved,
			wantMsg:  "Could not determine city name from location.",
		},
		{
			name:    "chained city lookup fails",
			locator: okLocator,
			src: &fakeSource{
				byCoords: &models.CurrentWeather{Place: "Nowhere"},
				current:  map[string]*models.CurrentWeather{},
			},
			wantKind: CityNotFound,
			wantMsg:  "City not found! Try another one",
		},
		{
			name:    "chained forecast fails",
			locator: okLocator,
			src: &fakeSource{
				byCoords:    &models.CurrentWeather{Place: "London"},
				current:     map[string]*models.CurrentWeather{"London": londonWeather()},
				forecastErr: errors.New("timeout"),
			},
			wantKind: ForecastUnavailable,
			wantMsg:  "Unable to fetch forecast data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestFlow(tt.src, tt.locator).FetchByLocation(context.Background())

			if state.Phase != PhaseFailed {
				t.Errorf("Expected phase %s, got %s", PhaseFailed, state.Phase)
			}
			if state.Kind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, state.Kind)
			}
			if state.Error != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, state.Error)
			}
			if state.Loading {
				t.Error("Expected loading to be false")
			}
			if !state.Consistent() {
				t.Errorf("Expected consistent state, got %+v", state)
			}
		})
	}
}

func TestFetchByLocationSkipsProviderWhenLocatorFails(t *testing.T) {
	src := &fakeSource{}
	newTestFlow(src, geolocation.DeniedLocator{}).FetchByLocation(context.Background())

	if calls := src.Calls(); len(calls) != 0 {
		t.Errorf("Expected no provider calls, got %v", calls)
	}
}

func TestFetchByLocationRejectsInvalidCoordinates(t *testing.T) {
	src := &fakeSource{byCoords: &models.CurrentWeather{Place: "London"}}
	locator := geolocation.LocatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{Latitude: 10, Longitude: -181}, nil
	})
	newTestFlow(src, locator).FetchByLocation(context.Background())

	if calls := src.Calls(); len(calls) != 0 {
		t.Errorf("Expected no provider calls, got %v", calls)
	}
}

// blockingSource holds CurrentByCity until release is closed
type blockingSource struct {
	fakeSource
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) CurrentByCity(ctx context.Context, city string) (*models.CurrentWeather, error) {
	if city == "Slow" {
		close(b.started)
		<-b.release
	}
	return b.fakeSource.CurrentByCity(ctx, city)
}

func TestStaleAttemptDoesNotOverwriteNewer(t *testing.T) {
	src := &blockingSource{
		fakeSource: fakeSource{
			current: map[string]*models.CurrentWeather{
				"Slow": {Place: "Slow"},
				"Fast": {Place: "Fast"},
			},
			forecast: series(5),
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	flow := NewFlow(src, nil, nil)

	done := make(chan State)
	go func() {
		done <- flow.FetchByCity(context.Background(), "Slow")
	}()

	<-src.started
	fast := flow.FetchByCity(context.Background(), "Fast")
	close(src.release)
	slow := <-done

	if fast.Current == nil || fast.Current.Place != "Fast" {
		t.Fatalf("Expected fast attempt to succeed, got %+v", fast)
	}
	if slow.Current == nil || slow.Current.Place != "Slow" {
		t.Errorf("Expected slow attempt to report its own result, got %+v", slow)
	}

	stored := flow.Store().Snapshot()
	if stored.Current == nil || stored.Current.Place != "Fast" {
		t.Errorf("Expected stored state to keep the newer result, got %+v", stored.Current)
	}
	if stored.AttemptID != fast.AttemptID {
		t.Errorf("Expected attempt %s, got %s", fast.AttemptID, stored.AttemptID)
	}
}
