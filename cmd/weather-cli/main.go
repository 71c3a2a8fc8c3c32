package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"weatherwidget/internal/acquisition"
	"weatherwidget/internal/charts"
	"weatherwidget/internal/config"
	"weatherwidget/internal/logger"
	"weatherwidget/internal/reports"
)

// run executes one acquisition attempt and prints it. It returns the
// process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("weather-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	city := fs.String("city", "", "city name; when empty the device location is used")
	asJSON := fs.Bool("json", false, "print the state as JSON instead of markdown")
	pngPath := fs.String("png", "", "write the forecast chart to this PNG file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	flow, err := acquisition.NewFlowFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create flow: %v\n", err)
		return 1
	}

	var state acquisition.State
	if *city != "" {
		state = flow.FetchByCity(ctx, *city)
	} else {
		state = flow.FetchByLocation(ctx)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			fmt.Fprintf(stderr, "failed to encode state: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprint(stdout, reports.Summary(state))
	}

	if *pngPath != "" && len(state.Forecast) > 0 {
		if err := writeChart(*pngPath, state); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
	}

	if state.Phase == acquisition.PhaseFailed {
		return 1
	}
	return 0
}

func writeChart(path string, state acquisition.State) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := charts.NewChartGenerator().RenderForecastPNG(f, state.Forecast); err != nil {
		return err
	}
	return f.Close()
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("Failed to load .env", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
