package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"weather-forecast/datasource"
	"weather-forecast/models"
	"weather-forecast/transform"

	"github.com/go-chi/chi/v5"
)

// Server serves shaped forecasts for the configured location
type Server struct {
	source      datasource.ForecastSource
	location    models.Location
	defaultDays int
	logger      *slog.Logger
	server      *http.Server
}

// NewServer creates a new API server. source should already shape its
// results, e.g. a datasource.ShapedForecastSource.
func NewServer(source datasource.ForecastSource, cfg *datasource.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		source:      source,
		location:    cfg.Location,
		defaultDays: cfg.ForecastDays,
		logger:      logger,
	}
	s.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Router returns the HTTP handler with all routes registered
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealthCheck)
		r.Get("/forecast", s.handleGetForecast)
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("http shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// handleGetForecast fetches and returns the shaped forecast.
// ?days=N overrides the configured day count.
func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	days, err := s.parseDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	forecast, err := s.source.FetchForecast(r.Context(), s.location, days)
	switch {
	case err == nil:
	case errors.Is(err, transform.ErrInvalidDays):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.Canceled):
		return
	default:
		s.logger.Error("forecast fetch failed",
			"source", s.source.Name(),
			"location", s.location.Name,
			"days", days,
			"request_id", r.Header.Get(RequestIDHeader),
			"error", err,
		)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch forecast: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"location":  s.location,
		"days":      days,
		"provider":  s.source.Name(),
		"data":      forecast,
		"timestamp": time.Now().UTC(),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) parseDays(r *http.Request) (int, error) {
	daysStr := r.URL.Query().Get("days")
	if daysStr == "" {
		return s.defaultDays, nil
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return 0, fmt.Errorf("invalid days %q: must be an integer", daysStr)
	}
	if days < 0 {
		return 0, fmt.Errorf("invalid days %d: must be non-negative", days)
	}
	if days > datasource.MaxForecastDays {
		days = datasource.MaxForecastDays
	}
	return days, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(RequestIDHeader),
			"duration", time.Since(start).String(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
