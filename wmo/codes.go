// Package wmo translates WMO weather interpretation codes (WW) into text.
package wmo

import "sort"

// UnknownDescription is returned for codes outside the table
const UnknownDescription = "Unknown code"

var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Lookup returns the description for code and whether the code is known
func Lookup(code int) (string, bool) {
	desc, ok := descriptions[code]
	return desc, ok
}

// Describe returns the description for code, or UnknownDescription
func Describe(code int) string {
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return UnknownDescription
}

// Codes returns every known code in ascending order
func Codes() []int {
	codes := make([]int, 0, len(descriptions))
	for c := range descriptions {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}
