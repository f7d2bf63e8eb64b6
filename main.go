package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-forecast/api"
	"weather-forecast/datasource"
	"weather-forecast/logging"
	"weather-forecast/output"
	"weather-forecast/providers/openmeteo"

	"github.com/joho/godotenv"
)

const appName = "weather-forecast"

// Set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	// Parse command line arguments
	configFile := flag.String("config", "config.json", "Path to configuration file")
	days := flag.Int("days", -1, "Number of forecast days (overrides configuration)")
	serve := flag.Bool("serve", false, "Serve forecasts over HTTP instead of printing once")
	publish := flag.Bool("publish", false, "Also publish the forecast to the configured MQTT broker")
	flag.Parse()

	cfg, err := loadConfig(*configFile, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg, version, appName)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := datasource.NewShapedForecastSource(openmeteo.NewForecastSource(cfg, logger))

	if *serve {
		err = api.NewServer(source, cfg, logger).Run(ctx)
	} else {
		err = runOnce(ctx, cfg, source, *publish, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string, days int) (*datasource.Config, error) {
	cfg, err := datasource.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if days >= 0 {
		cfg.ForecastDays = days
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runOnce fetches, shapes and presents a single forecast
func runOnce(ctx context.Context, cfg *datasource.Config, source datasource.ForecastSource, publish bool, logger *slog.Logger) error {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	forecast, err := source.FetchForecast(fetchCtx, cfg.Location, cfg.ForecastDays)
	if err != nil {
		return fmt.Errorf("fetch forecast for %s from %s: %w", cfg.Location.Name, source.Name(), err)
	}
	logger.Info("fetched forecast", "location", cfg.Location.Name, "days", cfg.ForecastDays, "source", source.Name())

	report := output.Report{Location: cfg.Location, Days: cfg.ForecastDays, Forecast: forecast}
	sinks := []output.Sink{output.NewConsoleSink(os.Stdout)}

	if publish {
		if cfg.MQTT.Broker == "" {
			return errors.New("-publish requires an MQTT broker (MQTT_BROKER or mqtt.broker in config)")
		}
		client, err := output.ConnectMQTT(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		sinks = append(sinks, output.NewMQTTSink(client, cfg.MQTT.Topic, logger))
	}

	for _, sink := range sinks {
		if err := sink.Present(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
