// Package attractions finds points of interest for a city, first through a
// text search and then through radius searches around the city center.
package attractions

import (
	"context"
	"errors"

	"github.com/neexbeast/tripplanner/internal/geo"
)

// ErrNoAPIKey is returned by keyed providers that were configured without a key.
var ErrNoAPIKey = errors.New("attractions provider has no API key")

// Status describes how a Result was obtained.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
)

const (
	// DefaultLimit caps the number of attractions returned.
	DefaultLimit = 10

	// DefaultRadiusKM is the radius searched around a city center.
	DefaultRadiusKM = 30
)

// Attraction is one normalized point of interest. Name is always set.
type Attraction struct {
	Name        string           `json:"name"`
	Address     string           `json:"address,omitempty"`
	Rating      *float64         `json:"rating,omitempty"`
	PriceLevel  *int             `json:"price_level,omitempty"`
	Categories  []string         `json:"categories"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	PhotoURL    string           `json:"photo_url,omitempty"`
	DistanceKM  *float64         `json:"distance_km,omitempty"`
	Source      string           `json:"source"`
}

// Result is the outcome of a lookup. Items is never nil.
type Result struct {
	Status Status       `json:"status"`
	Source string       `json:"source,omitempty"`
	Items  []Attraction `json:"items"`
}

// TextSearcher finds attractions by city name.
type TextSearcher interface {
	Name() string
	Search(ctx context.Context, city, country string, limit int) ([]Attraction, error)
}

// NearbySearcher finds attractions within radiusM meters of center.
type NearbySearcher interface {
	Name() string
	Nearby(ctx context.Context, center geo.Coordinates, radiusM, limit int) ([]Attraction, error)
}
