// Package plan composes a TravelPlan from the catalog, the geocoder, the
// weather and attractions providers and the cost estimator.
package plan

import (
	"context"
	"errors"
	"time"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/geocode"
	"github.com/neexbeast/tripplanner/internal/weather"
)

// ErrCityNotSupported is the terminal outcome when a city cannot be resolved.
var ErrCityNotSupported = errors.New("city not supported")

const (
	// MaxTripDays bounds the trip length.
	MaxTripDays = 30

	// NoWeatherMessage is shown when no forecast could be obtained.
	NoWeatherMessage = "no weather data"
)

// WeatherStatus tells whether WeatherReport carries a forecast.
type WeatherStatus string

const (
	WeatherOK          WeatherStatus = "ok"
	WeatherUnavailable WeatherStatus = "unavailable"
)

// Request is the input to Composer.Compose. Optional fields are nil when
// absent; Start and End are calendar dates.
type Request struct {
	City           string           `json:"city"`
	Days           int              `json:"days"`
	Style          string           `json:"style"`
	Start          *time.Time       `json:"start_date,omitempty"`
	End            *time.Time       `json:"end_date,omitempty"`
	Coordinates    *geo.Coordinates `json:"coordinates,omitempty"`
	CostMultiplier *float64         `json:"cost_multiplier,omitempty"`
}

// Query echoes the normalized request inside a plan.
type Query struct {
	City           string            `json:"city"`
	Country        string            `json:"country,omitempty"`
	Days           int               `json:"days"`
	Style          cost.Style        `json:"style"`
	DateRange      weather.DateRange `json:"date_range"`
	CostMultiplier float64           `json:"cost_multiplier"`
	Catalogued     bool              `json:"catalogued"`
}

// WeatherReport is either a forecast or the "no weather data" placeholder.
type WeatherReport struct {
	Status   WeatherStatus     `json:"status"`
	Message  string            `json:"message,omitempty"`
	Forecast *weather.Forecast `json:"forecast,omitempty"`
}

// TravelPlan is the composed result. ID is set once the plan is saved.
type TravelPlan struct {
	ID                string                   `json:"id,omitempty"`
	GeneratedAt       time.Time                `json:"generated_at"`
	Query             Query                    `json:"query"`
	Coordinates       geo.Coordinates          `json:"coordinates"`
	Cost              cost.Estimate            `json:"cost"`
	Weather           WeatherReport            `json:"weather"`
	Attractions       []attractions.Attraction `json:"attractions"`
	AttractionsStatus attractions.Status       `json:"attractions_status"`
	ImageKeyword      string                   `json:"image_keyword,omitempty"`
}

// Geocoder resolves a city name to a location.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (geocode.Location, error)
}

// Forecaster fetches weather for a location and date range.
type Forecaster interface {
	Forecast(ctx context.Context, at geo.Coordinates, r *weather.DateRange) (*weather.Forecast, error)
}

// AttractionFinder finds attractions for a city.
type AttractionFinder interface {
	ForCity(ctx context.Context, city, country string, center *geo.Coordinates, limit int) attractions.Result
}

// CurrencyLookup maps an ISO country code to its currency.
type CurrencyLookup interface {
	CurrencyFor(ctx context.Context, countryCode string) (string, error)
}
