package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherwidget/internal/acquisition"
	"weatherwidget/internal/config"
	"weatherwidget/internal/logger"
	"weatherwidget/internal/server"
	"weatherwidget/internal/tracing"
)

const serviceName = "weatherwidget"

// newHTTPServer wires the acquisition flow and routes for cfg. Requests,
// event streams included, are cancelled along with ctx.
func newHTTPServer(ctx context.Context, cfg *config.Config) (*http.Server, *server.Server, error) {
	flow, err := acquisition.NewFlowFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	srv, err := server.NewServer(cfg, flow)
	if err != nil {
		return nil, nil, err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	return httpServer, srv, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("Failed to load .env", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	version := config.GetVersion()
	logger.Info("Starting weather widget service", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"version":     version,
	})

	shutdownTracer, err := tracing.InitTracer(serviceName, version, cfg.ZipkinURL)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", err)
	}

	httpServer, srv, err := newHTTPServer(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create server", err)
	}

	// Locate the device once at startup, like the widget does on first load.
	go func() {
		state := srv.Flow.FetchByLocation(ctx)
		logger.Info("Initial location lookup finished", logger.Fields{"phase": string(state.Phase), "error": state.Error})
	}()

	go func() {
		logger.Infof("Server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", err)
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown error", err)
	}

	logger.Info("Server stopped")
}
