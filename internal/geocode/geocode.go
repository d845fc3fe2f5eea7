// Package geocode resolves free-text city names to coordinates by trying a
// list of query variants against an ordered chain of geocoding strategies.
package geocode

import (
	"context"
	"errors"

	"github.com/neexbeast/tripplanner/internal/geo"
)

var (
	// ErrCityNotFound means no variant resolved against any strategy.
	ErrCityNotFound = errors.New("city not found")

	// ErrNoResults is returned by a strategy whose provider answered with
	// nothing usable.
	ErrNoResults = errors.New("geocoder returned no results")

	// ErrNotConfigured is returned by a keyed strategy that has no API key.
	ErrNotConfigured = errors.New("geocoder not configured")
)

// Location is a resolved place. Country fields are filled when the
// provider reports them.
type Location struct {
	geo.Coordinates
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Strategy is a single geocoding provider.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, query string) (Location, error)
}

// Cache stores successful resolutions keyed by the exact input string.
// Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*Location, error)
	Put(ctx context.Context, key string, loc Location) error
}
