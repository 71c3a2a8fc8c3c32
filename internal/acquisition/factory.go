package acquisition

import (
	"fmt"

	"weatherwidget/internal/config"
	"weatherwidget/internal/fetchers"
	"weatherwidget/internal/geolocation"
	"weatherwidget/internal/logger"
)

// NewFlowFromConfig wires the OpenWeatherMap fetcher and the configured
// locator into a flow with a fresh store
func NewFlowFromConfig(cfg *config.Config) (*Flow, error) {
	client := fetchers.NewHTTPClient(cfg.HTTPTimeout)
	source := fetchers.NewOpenWeatherFetcher(client, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey)

	locator, err := geolocation.NewFromConfig(cfg, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create locator: %w", err)
	}

	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set; requests will be rejected", nil)
	}
	logger.Info("Acquisition flow ready", logger.Fields{
		"provider":         cfg.OpenWeatherBaseURL,
		"geolocation_mode": cfg.GeolocationMode,
	})

	return NewFlow(source, locator, nil), nil
}
