package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Geolocation modes
const (
	GeolocationIP       = "ip"
	GeolocationStatic   = "static"
	GeolocationDenied   = "denied"
	GeolocationDisabled = "disabled"
)

// Config holds all configuration for the weather widget service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8080"`

	// OpenWeatherMap configuration. The key is not validated upfront; a bad or
	// missing key shows up as a 401 on the first request.
	OpenWeatherAPIKey  string `env:"OPENWEATHER_API_KEY"`
	OpenWeatherBaseURL string `env:"OPENWEATHER_BASE_URL,default=https://api.openweathermap.org/data/2.5"`
	OpenWeatherIconURL string `env:"OPENWEATHER_ICON_URL,default=https://openweathermap.org/img/wn"`

	// Geolocation configuration
	GeolocationMode         string  `env:"GEOLOCATION_MODE,default=ip"`
	GeolocationURL          string  `env:"GEOLOCATION_URL,default=http://ip-api.com/json"`
	GeolocationLatitude     float64 `env:"GEOLOCATION_LATITUDE,default=0"`
	GeolocationLongitude    float64 `env:"GEOLOCATION_LONGITUDE,default=0"`
	GeolocationDeniedReason string  `env:"GEOLOCATION_DENIED_REASON,default=User denied Geolocation"`

	// Zero means no client timeout; the transport defaults apply.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=0s"`

	// Tracing
	ZipkinURL string `env:"ZIPKIN_URL"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.GeolocationMode = strings.ToLower(strings.TrimSpace(cfg.GeolocationMode))
	switch cfg.GeolocationMode {
	case GeolocationIP, GeolocationStatic, GeolocationDenied, GeolocationDisabled:
	default:
		return nil, fmt.Errorf("invalid GEOLOCATION_MODE %q", cfg.GeolocationMode)
	}

	cfg.OpenWeatherBaseURL = strings.TrimRight(cfg.OpenWeatherBaseURL, "/")
	cfg.OpenWeatherIconURL = strings.TrimRight(cfg.OpenWeatherIconURL, "/")
	cfg.GeolocationURL = strings.TrimRight(cfg.GeolocationURL, "/")

	return &cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if isNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
