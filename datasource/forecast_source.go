package datasource

import (
	"context"
	"fmt"

	"weather-forecast/models"
	"weather-forecast/transform"
)

// ForecastSource is an interface for services that can fetch daily forecasts
type ForecastSource interface {
	// FetchForecast fetches a daily forecast for a location for the specified number of days
	FetchForecast(ctx context.Context, loc models.Location, days int) (models.ForecastResult, error)

	// Name returns the source's name
	Name() string
}

// ShapedForecastSource wraps a ForecastSource and shapes every forecast it
// returns: weather codes gain descriptions and series are trimmed to the
// requested day count.
type ShapedForecastSource struct {
	source ForecastSource
	name   string
}

// NewShapedForecastSource creates a new shaping wrapper around a forecast source
func NewShapedForecastSource(source ForecastSource) *ShapedForecastSource {
	return &ShapedForecastSource{
		source: source,
		name:   fmt.Sprintf("%s [Described]", source.Name()),
	}
}

// FetchForecast fetches from the underlying source and shapes the result
func (s *ShapedForecastSource) FetchForecast(ctx context.Context, loc models.Location, days int) (models.ForecastResult, error) {
	if days < 0 {
		return models.ForecastResult{}, fmt.Errorf("%w: got %d", transform.ErrInvalidDays, days)
	}

	raw, err := s.source.FetchForecast(ctx, loc, days)
	if err != nil {
		return models.ForecastResult{}, err
	}

	shaped, err := transform.Shape(raw, days)
	if err != nil {
		return models.ForecastResult{}, fmt.Errorf("failed to shape forecast from %s: %w", s.source.Name(), err)
	}
	return shaped, nil
}

// Name returns the source name
func (s *ShapedForecastSource) Name() string {
	return s.name
}

var _ ForecastSource = (*ShapedForecastSource)(nil)
