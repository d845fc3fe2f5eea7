// Package app wires the planner's components from a Config. The HTTP server
// and the CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/cache"
	"github.com/neexbeast/tripplanner/internal/catalog"
	"github.com/neexbeast/tripplanner/internal/config"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/countries"
	"github.com/neexbeast/tripplanner/internal/geocode"
	"github.com/neexbeast/tripplanner/internal/plan"
	"github.com/neexbeast/tripplanner/internal/weather"
)

// RedisGeocodeTTL bounds how long a resolved city stays in Redis.
const RedisGeocodeTTL = 30 * 24 * time.Hour

// App holds the wired components.
type App struct {
	Catalog     *catalog.Catalog
	Geocoder    *geocode.Resolver
	Weather     *weather.Client
	Attractions *attractions.Fetcher
	Countries   *countries.Client
	Composer    *plan.Composer

	// Redis is nil when REDIS_URL is not configured.
	Redis *redis.Client
}

// New builds an App from cfg. It connects to Redis when cfg.RedisURL is set;
// otherwise resolved cities are cached in process.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	a := &App{Catalog: cat}

	var geoCache geocode.Cache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.Redis = client
		geoCache = cache.NewRedis(client, RedisGeocodeTTL)
		log.Info("geocode cache", "backend", "redis")
	} else {
		geoCache = cache.NewMemory(0)
		log.Info("geocode cache", "backend", "memory")
	}

	timeout := cfg.ProviderTimeout
	lang := cfg.ProviderLanguage

	a.Geocoder = geocode.NewResolver(geoCache, log,
		geocode.NewGeoapify(cfg.GeoapifyKey, lang, timeout),
		geocode.NewOpenMeteo(lang, timeout),
		geocode.NewOpenTripMap(cfg.OpenTripMapKey, timeout),
	)
	a.Weather = weather.NewClient(timeout, log)
	a.Attractions = attractions.NewFetcher(log,
		attractions.NewGoogleText(cfg.GooglePlacesKey, lang, timeout),
		attractions.NewGeoapifyPlaces(cfg.GeoapifyKey, lang, timeout),
		attractions.NewOpenTripMapRadius(cfg.OpenTripMapKey, timeout),
		attractions.NewOverpass(timeout),
	)
	a.Countries = countries.NewClient(timeout)

	a.Composer = plan.NewComposer(plan.Deps{
		Catalog:     cat,
		Geocoder:    a.Geocoder,
		Weather:     a.Weather,
		Attractions: a.Attractions,
		Currencies:  a.Countries,
		Estimator:   cost.NewEstimator(),
		Log:         log,
	})

	return a, nil
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Close()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
