package acquisition

import (
	"fmt"
)

// Kind tags a failed attempt
type Kind string

const (
	CityNotFound            Kind = "CityNotFound"
	ForecastUnavailable     Kind = "ForecastUnavailable"
	GeolocationUnsupported  Kind = "GeolocationUnsupported"
	GeolocationDenied       Kind = "GeolocationDenied"
	LocationWeatherNotFound Kind = "LocationWeatherNotFound"
	InvalidAPIKey           Kind = "InvalidApiKey"
	LocationFetchFailed     Kind = "LocationFetchFailed"
	LocationNameUnresolved  Kind = "LocationNameUnresolved"
)

// Kinds lists every failure kind
var Kinds = []Kind{
	CityNotFound,
	ForecastUnavailable,
	GeolocationUnsupported,
	GeolocationDenied,
	LocationWeatherNotFound,
	InvalidAPIKey,
	LocationFetchFailed,
	LocationNameUnresolved,
}

// Error is a classified acquisition failure. Message is what the user sees;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind       Kind
	Reason     string // platform reason text, GeolocationDenied only
	StatusCode int    // HTTP status, LocationFetchFailed only
	Err        error
}

// Message returns the user-facing text for the failure
func (e *Error) Message() string {
	switch e.Kind {
	case CityNotFound:
		return "City not found! Try another one"
	case ForecastUnavailable:
		return "Unable to fetch forecast data"
	case GeolocationUnsupported:
		return "Geolocation is not supported by this browser."
	case GeolocationDenied:
		return "Unable to retrieve location: " + e.Reason
	case LocationWeatherNotFound:
		return "Could not find weather data for your location."
	case InvalidAPIKey:
		return "Invalid API Key for OpenWeatherMap."
	case LocationFetchFailed:
		return fmt.Sprintf("Unable to fetch location data (Status %d)", e.StatusCode)
	case LocationNameUnresolved:
		return "Could not determine city name from location."
	default:
		return "Unknown error"
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}
