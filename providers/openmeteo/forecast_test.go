package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"weather-forecast/datasource"
	"weather-forecast/models"
)

const forecastBody = `{
	"latitude": 31.25,
	"longitude": 121.5,
	"generationtime_ms": 0.12,
	"utc_offset_seconds": 0,
	"timezone": "GMT",
	"timezone_abbreviation": "GMT",
	"elevation": 6.0,
	"daily_units": {"time": "iso8601", "weathercode": "wmo code", "temperature_2m_max": "°C"},
	"daily": {
		"time": ["2024-05-01", "2024-05-02", "2024-05-03"],
		"weathercode": [0, 61, 99],
		"temperature_2m_max": [24.1, 22.8, 19.5]
	}
}`

func newTestSource(t *testing.T, url string, retries int) *ForecastSource {
	t.Helper()
	cfg := datasource.DefaultConfig()
	cfg.OpenMeteo.BaseURL = url
	cfg.OpenMeteo.Retries = retries
	cfg.OpenMeteo.Timeout = 5 * time.Second
	return NewForecastSource(cfg, nil)
}

func TestFetchForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %q, want /forecast", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("latitude"); got != "31.2304" {
			t.Errorf("latitude = %q", got)
		}
		if got := q.Get("longitude"); got != "121.4737" {
			t.Errorf("longitude = %q", got)
		}
		if got := q.Get("forecast_days"); got != "3" {
			t.Errorf("forecast_days = %q", got)
		}
		if got := q.Get("daily"); got != "temperature_2m_max,temperature_2m_min,weathercode,precipitation_sum,windspeed_10m_max" {
			t.Errorf("daily = %q", got)
		}
		if got := q.Get("timezone"); got != "UTC" {
			t.Errorf("timezone = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL, 0)
	loc := models.Location{Name: "Shanghai", Latitude: 31.2304, Longitude: 121.4737}

	got, err := src.FetchForecast(context.Background(), loc, 3)
	if err != nil {
		t.Fatalf("FetchForecast() error = %v", err)
	}
	if got.Timezone != "GMT" || got.Latitude != 31.25 {
		t.Errorf("envelope = %+v", got)
	}
	if got.DailyUnits["weathercode"] != "wmo code" {
		t.Errorf("daily_units = %v", got.DailyUnits)
	}
	codes := got.Daily["weathercode"]
	if len(codes) != 3 || codes[1] != 61.0 {
		t.Errorf("weathercode = %v", codes)
	}
	if src.Name() != "Open-Meteo" {
		t.Errorf("Name() = %q", src.Name())
	}
}

func TestFetchForecast_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Cannot initialize WeatherVariable from invalid String value foo"}`))
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv.URL, 0).FetchForecast(context.Background(), models.Location{}, 3)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Reason != "Cannot initialize WeatherVariable from invalid String value foo" {
		t.Errorf("Reason = %q", apiErr.Reason)
	}
}

func TestFetchForecast_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	got, err := newTestSource(t, srv.URL, 1).FetchForecast(context.Background(), models.Location{}, 3)
	if err != nil {
		t.Fatalf("FetchForecast() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if len(got.Daily["time"]) != 3 {
		t.Errorf("time = %v", got.Daily["time"])
	}
}

func TestFetchForecast_DaysOutOfRange(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL, 0)
	for _, days := range []int{-1, datasource.MaxForecastDays + 1} {
		if _, err := src.FetchForecast(context.Background(), models.Location{}, days); err == nil {
			t.Errorf("FetchForecast(days=%d) error = nil, want non-nil", days)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestFetchForecast_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestSource(t, srv.URL, 0).FetchForecast(ctx, models.Location{}, 3); err == nil {
		t.Fatal("FetchForecast() error = nil, want non-nil")
	}
}
