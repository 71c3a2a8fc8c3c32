package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"weatherwidget/internal/charts"
	"weatherwidget/internal/config"
	"weatherwidget/internal/geolocation"
	"weatherwidget/internal/logger"
)

// requestContext picks up a trace propagated by the caller
func requestContext(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// HandleRoot serves the widget page for the current state
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, err := s.Pages.BuildPage(s.Flow.Store().Snapshot())
	if err != nil {
		s.log.Error("Failed to build page", err)
		http.Error(w, "Failed to build page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// HandleSearch is the search form target; it looks up the city and
// redirects back to the page
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, span := s.tracer.Start(requestContext(r), "handle-search")
	defer span.End()

	s.Flow.FetchByCity(ctx, r.URL.Query().Get("city"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleWeather looks up a city and returns the resulting state. Lookup
// failures are part of the state, not HTTP errors.
func (s *Server) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, span := s.tracer.Start(requestContext(r), "handle-weather")
	defer span.End()

	state := s.Flow.FetchByCity(ctx, r.URL.Query().Get("city"))
	if err := writeJSON(w, http.StatusOK, state); err != nil {
		s.log.Warn("Failed to write response", err)
	}
}

// HandleLocation locates the caller and returns the resulting state
func (s *Server) HandleLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, span := s.tracer.Start(requestContext(r), "handle-location")
	defer span.End()

	ip := clientIP(r)
	s.log.Debug("Locating caller", logger.Fields{"client_ip": ip})

	state := s.Flow.FetchByLocation(geolocation.WithClientIP(ctx, ip))
	if err := writeJSON(w, http.StatusOK, state); err != nil {
		s.log.Warn("Failed to write response", err)
	}
}

// HandleState returns the current state without starting an attempt
func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := writeJSON(w, http.StatusOK, s.Flow.Store().Snapshot()); err != nil {
		s.log.Warn("Failed to write response", err)
	}
}

// HandleEvents streams every stored state as a server-sent event until the
// client goes away. The first event carries the current state.
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	states, unsubscribe := s.Flow.Store().Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.log.Debug("Event stream opened", logger.Fields{"client_ip": clientIP(r)})
	for {
		select {
		case <-r.Context().Done():
			s.log.Debug("Event stream closed", logger.Fields{"client_ip": clientIP(r)})
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			data, err := json.Marshal(state)
			if err != nil {
				s.log.Error("Failed to encode state event", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
				s.log.Warn("Failed to write state event", err)
				return
			}
			flusher.Flush()
		}
	}
}

// HandleForecastPNG serves the forecast chart of the current state
func (s *Server) HandleForecastPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if err := s.Pages.RenderForecastPNG(&buf, s.Flow.Store().Snapshot()); err != nil {
		if errors.Is(err, charts.ErrNoForecast) {
			http.Error(w, "No forecast available", http.StatusNotFound)
			return
		}
		s.log.Error("Failed to render forecast chart", err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.Flow.Store().Snapshot()
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.GetVersion(),
		"checks": map[string]string{
			"config":      "ok",
			"geolocation": s.Config.GeolocationMode,
			"phase":       string(state.Phase),
		},
	}

	if err := writeJSON(w, http.StatusOK, health); err != nil {
		s.log.Warn("Failed to write response", err)
	}
}
