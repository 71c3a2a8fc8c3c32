package geolocation

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"weatherwidget/internal/config"
	"weatherwidget/internal/models"
)

// NewFromConfig builds the locator selected by GEOLOCATION_MODE. The
// "disabled" mode yields a nil Locator, which the acquisition flow reports
// as unsupported.
func NewFromConfig(cfg *config.Config, client *resty.Client) (Locator, error) {
	switch cfg.GeolocationMode {
	case config.GeolocationIP:
		return NewIPLocator(client, cfg.GeolocationURL), nil
	case config.GeolocationStatic:
		loc, err := NewStaticLocator(models.Coordinates{
			Latitude:  cfg.GeolocationLatitude,
			Longitude: cfg.GeolocationLongitude,
		})
		if err != nil {
			return nil, err
		}
		return loc, nil
	case config.GeolocationDenied:
		return DeniedLocator{Reason: cfg.GeolocationDeniedReason}, nil
	case config.GeolocationDisabled:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown geolocation mode %q", cfg.GeolocationMode)
	}
}
