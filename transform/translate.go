// Package transform shapes a raw daily forecast for presentation:
// it adds weather code descriptions and trims every series to a day count.
package transform

import (
	"encoding/json"
	"math"

	"weather-forecast/models"
	"weather-forecast/wmo"
)

const (
	// WeatherCodeKey is the daily series holding WMO codes
	WeatherCodeKey = "weathercode"
	// DescriptionKey is the derived series added by TranslateWeatherCodes
	DescriptionKey = "weather_description"
)

// TranslateWeatherCodes returns a copy of f whose daily block carries a
// weather_description series aligned with weathercode. If there is no daily
// block or no weathercode series, f is returned unchanged.
func TranslateWeatherCodes(f models.ForecastResult) models.ForecastResult {
	if f.Daily == nil {
		return f
	}
	codes, ok := f.Daily[WeatherCodeKey]
	if !ok {
		return f
	}

	descriptions := make(models.Series, len(codes))
	for i, v := range codes {
		descriptions[i] = describe(v)
	}

	out := f.Clone()
	out.Daily[DescriptionKey] = descriptions
	return out
}

// describe maps a decoded JSON value to its description. Values that are not
// integral numbers get the unknown sentinel.
func describe(v any) string {
	code, ok := toCode(v)
	if !ok {
		return wmo.UnknownDescription
	}
	return wmo.Describe(code)
}

func toCode(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
