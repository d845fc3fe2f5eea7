// Package weather fetches daily forecasts and current conditions from
// Open-Meteo for a pair of coordinates.
package weather

import (
	"errors"
	"time"
)

var (
	// ErrUnavailable means the provider could not serve the request.
	ErrUnavailable = errors.New("weather unavailable")

	// ErrMalformed means the provider answered with unusable data.
	ErrMalformed = errors.New("malformed weather response")
)

// Current holds the conditions at the provider's reporting time.
type Current struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	WeatherCode int       `json:"weather_code"`
	Condition
	Humidity *float64 `json:"humidity,omitempty"`
	WindKPH  *float64 `json:"wind_kph,omitempty"`
}

// Day is one day of the daily forecast. Missing provider values stay nil.
type Day struct {
	Date            string   `json:"date"`
	TemperatureMin  *float64 `json:"temperature_min,omitempty"`
	TemperatureMax  *float64 `json:"temperature_max,omitempty"`
	PrecipitationMM *float64 `json:"precipitation_mm,omitempty"`
	WindKPH         *float64 `json:"wind_kph,omitempty"`
	WeatherCode     *int     `json:"weather_code,omitempty"`
	Condition
}

// Forecast is the combined provider answer. Range is the span actually
// served; Clipped reports that it is narrower than requested, or that only
// current conditions could be fetched.
type Forecast struct {
	Current *Current   `json:"current,omitempty"`
	Daily   []Day      `json:"daily"`
	Range   *DateRange `json:"range,omitempty"`
	Clipped bool       `json:"clipped"`
}
