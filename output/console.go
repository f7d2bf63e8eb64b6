// Package output presents shaped forecasts: on a terminal or over MQTT.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"weather-forecast/models"
)

const (
	consoleHeader = "--- Daily Weather Forecast Data with Descriptions (JSON format) ---"
	consoleFooter = "-----------------------------------------------------------------"
)

// Report is a shaped forecast ready for presentation
type Report struct {
	Location models.Location
	Days     int
	Forecast models.ForecastResult
}

// Sink presents a report somewhere
type Sink interface {
	Present(ctx context.Context, report Report) error
}

// ConsoleSink writes the forecast as indented JSON between banner lines
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a sink writing to w
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Present writes the report
func (c *ConsoleSink) Present(_ context.Context, report Report) error {
	data, err := json.MarshalIndent(report.Forecast, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode forecast: %w", err)
	}

	_, err = fmt.Fprintf(c.w, "%s\n%s\n%s\nSuccessfully fetched and trimmed %d-day daily weather forecast for %s.\n",
		consoleHeader, data, consoleFooter, report.Days, report.Location.Name)
	if err != nil {
		return fmt.Errorf("failed to write forecast: %w", err)
	}
	return nil
}

var _ Sink = (*ConsoleSink)(nil)
