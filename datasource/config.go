package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"weather-forecast/models"
)

// MaxForecastDays is the longest forecast Open-Meteo serves
const MaxForecastDays = 16

// Config represents the application configuration
type Config struct {
	AppEnv   string     `json:"appEnv"`
	LogLevel slog.Level `json:"-"`

	// Location to forecast
	Location models.Location `json:"location"`

	// Number of forecast days requested and kept after trimming
	ForecastDays int `json:"forecastDays"`

	// Daily variables requested from the provider
	DailyVariables []string `json:"dailyVariables"`

	OpenMeteo struct {
		BaseURL  string        `json:"baseURL"`
		Timezone string        `json:"timezone"`
		Timeout  time.Duration `json:"-"`
		Retries  int           `json:"retries"`
	} `json:"openMeteo"`

	// Address for the API server (serve mode)
	HTTPAddr string `json:"httpAddr"`

	MQTT struct {
		Broker   string `json:"broker"` // e.g. tcp://localhost:1883; empty disables publishing
		Topic    string `json:"topic"`
		ClientID string `json:"clientID"`
	} `json:"mqtt"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{
		AppEnv:       "dev",
		LogLevel:     slog.LevelInfo,
		Location:     models.Location{Name: "Shanghai", Latitude: 31.2304, Longitude: 121.4737},
		ForecastDays: 3,
		DailyVariables: []string{
			"temperature_2m_max",
			"temperature_2m_min",
			"weathercode",
			"precipitation_sum",
			"windspeed_10m_max",
		},
		HTTPAddr: ":8080",
	}
	config.OpenMeteo.BaseURL = "https://api.open-meteo.com/v1"
	config.OpenMeteo.Timezone = "UTC"
	config.OpenMeteo.Timeout = 10 * time.Second
	config.OpenMeteo.Retries = 2
	config.MQTT.Topic = "forecast/daily"
	config.MQTT.ClientID = "weather-forecast"
	return config
}

// LoadConfig loads configuration from a JSON file on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return config, nil
}

// ApplyEnv overrides configuration values from environment variables
func (c *Config) ApplyEnv() error {
	if v := env("APP_ENV"); v != "" {
		c.AppEnv = v
	}
	switch c.AppEnv {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", c.AppEnv)
	}

	if v := env("LOG_LEVEL"); v != "" {
		level, err := ParseLogLevel(v)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}

	if v := env("FORECAST_LOCATION"); v != "" {
		c.Location.Name = v
	}
	if v := env("FORECAST_LATITUDE"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FORECAST_LATITUDE %q: %w", v, err)
		}
		c.Location.Latitude = lat
	}
	if v := env("FORECAST_LONGITUDE"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FORECAST_LONGITUDE %q: %w", v, err)
		}
		c.Location.Longitude = lon
	}
	if v := env("FORECAST_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FORECAST_DAYS %q: %w", v, err)
		}
		c.ForecastDays = days
	}
	if v := env("FORECAST_TIMEZONE"); v != "" {
		c.OpenMeteo.Timezone = v
	}
	if v := env("OPEN_METEO_BASE_URL"); v != "" {
		c.OpenMeteo.BaseURL = strings.TrimRight(v, "/")
	}
	if v := env("OPEN_METEO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid OPEN_METEO_TIMEOUT %q: %w", v, err)
		}
		c.OpenMeteo.Timeout = d
	}
	if v := env("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := env("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := env("MQTT_TOPIC"); v != "" {
		c.MQTT.Topic = v
	}
	if v := env("MQTT_CLIENT_ID"); v != "" {
		c.MQTT.ClientID = v
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Location.Longitude)
	}
	if c.ForecastDays < 0 || c.ForecastDays > MaxForecastDays {
		return fmt.Errorf("forecast days %d out of range [0, %d]", c.ForecastDays, MaxForecastDays)
	}
	if len(c.DailyVariables) == 0 {
		return errors.New("no daily variables configured")
	}
	if c.OpenMeteo.BaseURL == "" {
		return errors.New("open-meteo base URL is empty")
	}
	return nil
}

// ParseLogLevel parses debug, info, warn or error
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
