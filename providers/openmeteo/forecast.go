package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weather-forecast/datasource"
	"weather-forecast/models"

	"github.com/go-resty/resty/v2"
)

const userAgent = "weather-forecast/1.0"

// APIError is the error body Open-Meteo returns for rejected requests
type APIError struct {
	StatusCode int    `json:"-"`
	Failed     bool   `json:"error"`
	Reason     string `json:"reason"`
}

func (e *APIError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Reason)
}

// ForecastSource provides daily forecasts from Open-Meteo
type ForecastSource struct {
	client    *resty.Client
	variables []string
	timezone  string
	logger    *slog.Logger
}

// Ensure ForecastSource implements datasource.ForecastSource
var _ datasource.ForecastSource = (*ForecastSource)(nil)

// NewForecastSource creates a new Open-Meteo forecast source
func NewForecastSource(cfg *datasource.Config, logger *slog.Logger) *ForecastSource {
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.OpenMeteo.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetTimeout(cfg.OpenMeteo.Timeout).
		SetRetryCount(cfg.OpenMeteo.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && (resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError)
		})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("open-meteo request", "method", req.Method, "url", req.URL, "params", req.QueryParam.Encode())
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("open-meteo response",
			"status", resp.StatusCode(),
			"duration", resp.Time().String(),
			"bytes", len(resp.Body()),
		)
		return nil
	})

	return &ForecastSource{
		client:    client,
		variables: append([]string(nil), cfg.DailyVariables...),
		timezone:  cfg.OpenMeteo.Timezone,
		logger:    logger,
	}
}

// Name returns the provider name
func (s *ForecastSource) Name() string {
	return "Open-Meteo"
}

// FetchForecast gets a daily forecast for loc covering days days
func (s *ForecastSource) FetchForecast(ctx context.Context, loc models.Location, days int) (models.ForecastResult, error) {
	if days < 0 || days > datasource.MaxForecastDays {
		return models.ForecastResult{}, fmt.Errorf("forecast days %d out of range [0, %d]", days, datasource.MaxForecastDays)
	}

	params := map[string]string{
		"latitude":      strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		"longitude":     strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		"forecast_days": strconv.Itoa(days),
		"daily":         strings.Join(s.variables, ","),
	}
	if s.timezone != "" {
		params["timezone"] = s.timezone
	}

	var forecast models.ForecastResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&forecast).
		ForceContentType("application/json").
		Get("/forecast")
	if err != nil {
		return models.ForecastResult{}, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if err := json.Unmarshal(resp.Body(), apiErr); err != nil {
			apiErr.Reason = strings.TrimSpace(string(resp.Body()))
		}
		return models.ForecastResult{}, apiErr
	}

	s.logger.Debug("fetched forecast",
		"provider", s.Name(),
		"location", loc.Name,
		"days", days,
		"series", len(forecast.Daily),
	)
	return forecast, nil
}
