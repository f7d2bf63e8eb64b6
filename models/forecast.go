package models

// Series holds one daily variable, one entry per forecast day.
// Entries keep whatever JSON type the provider sent (numbers, strings, null).
type Series []any

// Daily maps a variable name such as "temperature_2m_max" or "weathercode" to its series
type Daily map[string]Series

// ForecastResult is a daily forecast as returned by the provider, plus any derived series
type ForecastResult struct {
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	GenerationTimeMs     float64           `json:"generationtime_ms"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation"`
	Elevation            float64           `json:"elevation"`
	DailyUnits           map[string]string `json:"daily_units,omitempty"`
	Daily                Daily             `json:"daily,omitempty"` // nil when the provider sent no daily block
}

// Location is a named point to fetch a forecast for
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Clone returns a deep copy of the forecast. Series entries are copied by value.
func (f ForecastResult) Clone() ForecastResult {
	out := f
	if f.DailyUnits != nil {
		out.DailyUnits = make(map[string]string, len(f.DailyUnits))
		for k, v := range f.DailyUnits {
			out.DailyUnits[k] = v
		}
	}
	out.Daily = f.Daily.Clone()
	return out
}

// Clone returns a deep copy of the daily block, preserving nil
func (d Daily) Clone() Daily {
	if d == nil {
		return nil
	}
	out := make(Daily, len(d))
	for k, s := range d {
		out[k] = s.Clone()
	}
	return out
}

// Clone returns a copy of the series backed by a fresh array
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}
