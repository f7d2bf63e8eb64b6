package transform

import (
	"errors"
	"fmt"
	"sort"

	"weather-forecast/models"
)

var (
	// ErrInvalidDays is returned for a negative day count
	ErrInvalidDays = errors.New("days must be non-negative")

	// ErrSeriesLengthMismatch is returned when daily series differ in length
	ErrSeriesLengthMismatch = errors.New("daily series have unequal lengths")
)

// TrimToDays returns a copy of f with every daily series cut to its first
// days entries. Series shorter than days are kept whole. A forecast without
// a daily block is returned unchanged.
func TrimToDays(f models.ForecastResult, days int) (models.ForecastResult, error) {
	if days < 0 {
		return f, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	if f.Daily == nil {
		return f, nil
	}

	out := f.Clone()
	for key, series := range out.Daily {
		if len(series) > days {
			out.Daily[key] = series[:days:days]
		}
	}
	return out, nil
}

// ValidateDaily checks that every daily series has the same length.
// An absent or empty daily block is valid.
func ValidateDaily(d models.Daily) error {
	if len(d) == 0 {
		return nil
	}

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	want := len(d[keys[0]])
	for _, k := range keys[1:] {
		if got := len(d[k]); got != want {
			return fmt.Errorf("%w: %q has %d entries, %q has %d", ErrSeriesLengthMismatch, k, got, keys[0], want)
		}
	}
	return nil
}

// Shape validates f, adds weather descriptions and trims the result to days.
func Shape(f models.ForecastResult, days int) (models.ForecastResult, error) {
	if days < 0 {
		return f, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	if err := ValidateDaily(f.Daily); err != nil {
		return f, err
	}
	return TrimToDays(TranslateWeatherCodes(f), days)
}
