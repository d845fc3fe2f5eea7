package attractions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/neexbeast/tripplanner/internal/geo"
)

// Fetcher runs the text search and, when it fails or finds nothing, the
// radius searchers in order.
type Fetcher struct {
	text     TextSearcher
	nearby   []NearbySearcher
	radiusKM int
	log      *slog.Logger
}

// NewFetcher constructs a Fetcher. text may be nil.
func NewFetcher(log *slog.Logger, text TextSearcher, nearby ...NearbySearcher) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{text: text, nearby: nearby, radiusKM: DefaultRadiusKM, log: log}
}

// WithRadius returns a copy of f searching radiusKM around the center.
func (f *Fetcher) WithRadius(radiusKM int) *Fetcher {
	cp := *f
	if radiusKM > 0 {
		cp.radiusKM = radiusKM
	}
	return &cp
}

// ForCity returns up to limit attractions for city. center enables the
// radius fallback. The returned Result never has nil Items.
func (f *Fetcher) ForCity(ctx context.Context, city, country string, center *geo.Coordinates, limit int) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	answered := false

	if f.text != nil {
		items, err := f.text.Search(ctx, city, country, limit)
		switch {
		case err == nil && len(items) > 0:
			return Result{Status: StatusOK, Source: f.text.Name(), Items: finalize(items, center, limit)}
		case err == nil:
			answered = true
		default:
			f.logFailure(f.text.Name(), city, err)
		}
	}

	if center != nil {
		for _, n := range f.nearby {
			items, err := n.Nearby(ctx, *center, f.radiusKM*1000, limit)
			if err != nil {
				f.logFailure(n.Name(), city, err)
				continue
			}
			if len(items) > 0 {
				return Result{Status: StatusOK, Source: n.Name(), Items: finalize(items, center, limit)}
			}
			answered = true
		}
	}

	if answered {
		return Result{Status: StatusEmpty, Items: []Attraction{}}
	}
	return Result{Status: StatusUnavailable, Items: []Attraction{}}
}

func (f *Fetcher) logFailure(provider, city string, err error) {
	if errors.Is(err, ErrNoAPIKey) {
		f.log.Debug("attractions provider not configured", "provider", provider)
		return
	}
	f.log.Warn("attractions provider failed", "provider", provider, "city", city, "err", err)
}
