package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Resolver turns a free-text city name into a Location. It tries every query
// variant against every strategy in order and returns the first success.
type Resolver struct {
	strategies []Strategy
	cache      Cache
	log        *slog.Logger
}

// NewResolver constructs a Resolver. cache may be nil.
func NewResolver(cache Cache, log *slog.Logger, strategies ...Strategy) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{strategies: strategies, cache: cache, log: log}
}

// Resolve returns the Location for city. ErrCityNotFound is returned once all
// variants and strategies are exhausted. Only successes are cached, keyed by
// the exact input.
func (r *Resolver) Resolve(ctx context.Context, city string) (Location, error) {
	if strings.TrimSpace(city) == "" {
		return Location{}, fmt.Errorf("resolving empty city: %w", ErrCityNotFound)
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, city)
		if err != nil {
			r.log.Warn("geocode cache get failed", "city", city, "err", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	for _, query := range Variants(city) {
		for _, s := range r.strategies {
			if err := ctx.Err(); err != nil {
				return Location{}, fmt.Errorf("resolving %q: %w", city, err)
			}

			loc, err := s.Resolve(ctx, query)
			switch {
			case err == nil:
				r.store(ctx, city, loc)
				return loc, nil
			case errors.Is(err, ErrNotConfigured), errors.Is(err, ErrNoResults):
				continue
			default:
				r.log.Warn("geocoder failed", "provider", s.Name(), "query", query, "err", err)
			}
		}
	}

	return Location{}, fmt.Errorf("resolving %q: %w", city, ErrCityNotFound)
}

func (r *Resolver) store(ctx context.Context, city string, loc Location) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(ctx, city, loc); err != nil {
		r.log.Warn("geocode cache put failed", "city", city, "err", err)
	}
}
