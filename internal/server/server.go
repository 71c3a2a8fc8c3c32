package server

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"weatherwidget/internal/acquisition"
	"weatherwidget/internal/config"
	"weatherwidget/internal/logger"
	"weatherwidget/internal/reports"
)

// Server represents the main application server
type Server struct {
	Config *config.Config
	Flow   *acquisition.Flow
	Pages  *reports.HTMLBuilder

	tracer trace.Tracer
	log    *logger.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, flow *acquisition.Flow) (*Server, error) {
	pages, err := reports.NewHTMLBuilder(cfg.OpenWeatherIconURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize page builder: %w", err)
	}

	return &Server{
		Config: cfg,
		Flow:   flow,
		Pages:  pages,
		tracer: otel.GetTracerProvider().Tracer("weatherwidget/server"),
		log:    logger.Component("server"),
	}, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/search", s.HandleSearch)
	mux.HandleFunc("/api/weather", s.HandleWeather)
	mux.HandleFunc("/api/location", s.HandleLocation)
	mux.HandleFunc("/api/state", s.HandleState)
	mux.HandleFunc("/api/events", s.HandleEvents)
	mux.HandleFunc("/forecast.png", s.HandleForecastPNG)

	// Handle root path last (catch-all)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}
