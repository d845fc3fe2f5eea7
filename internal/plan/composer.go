package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/catalog"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/geocode"
	"github.com/neexbeast/tripplanner/internal/textnorm"
	"github.com/neexbeast/tripplanner/internal/weather"
)

// Composer builds TravelPlans. It holds no per-request state.
type Composer struct {
	catalog     *catalog.Catalog
	geocoder    Geocoder
	weather     Forecaster
	attractions AttractionFinder
	currencies  CurrencyLookup
	estimator   *cost.Estimator
	log         *slog.Logger
	now         func() time.Time
	limit       int
}

// Deps are the collaborators of a Composer. Currencies may be nil.
type Deps struct {
	Catalog     *catalog.Catalog
	Geocoder    Geocoder
	Weather     Forecaster
	Attractions AttractionFinder
	Currencies  CurrencyLookup
	Estimator   *cost.Estimator
	Log         *slog.Logger
}

// NewComposer constructs a Composer.
func NewComposer(d Deps) *Composer {
	if d.Estimator == nil {
		d.Estimator = cost.NewEstimator()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Composer{
		catalog:     d.Catalog,
		geocoder:    d.Geocoder,
		weather:     d.Weather,
		attractions: d.Attractions,
		currencies:  d.Currencies,
		estimator:   d.Estimator,
		log:         d.Log,
		now:         time.Now,
		limit:       attractions.DefaultLimit,
	}
}

// WithClock returns a copy of c reading the current time from now.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	cp := *c
	cp.now = now
	return &cp
}

// Compose builds a plan for req. An invalid style is rejected before any
// provider is called. ErrCityNotSupported is returned when the city cannot be
// resolved and ctx's error when it ends first; every other provider failure
// degrades to a placeholder.
func (c *Composer) Compose(ctx context.Context, req Request) (*TravelPlan, error) {
	style, err := cost.ParseStyle(req.Style)
	if err != nil {
		return nil, err
	}

	city := textnorm.CollapseSpaces(req.City)
	if city == "" {
		return nil, fmt.Errorf("empty city: %w", ErrCityNotSupported)
	}

	q := Query{City: city, Style: style, CostMultiplier: catalog.DefaultMultiplier}
	currency := ""
	imageKeyword := ""
	if c.catalog != nil {
		if dest, ok := c.catalog.Match(city); ok {
			q.City, q.Country, q.Catalogued = dest.Name, dest.Country, true
			q.CostMultiplier = dest.CostMultiplier
			currency = dest.Currency
			imageKeyword = dest.ImageKeyword
		}
	}
	if req.CostMultiplier != nil && *req.CostMultiplier > 0 {
		q.CostMultiplier = *req.CostMultiplier
	}

	var countryCode string
	var center geo.Coordinates
	if req.Coordinates != nil && req.Coordinates.Valid() {
		center = *req.Coordinates
	} else {
		loc, err := c.geocoder.Resolve(ctx, q.City)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("resolving %s: %w", city, ctxErr)
			}
			c.log.Info("city not supported", "city", city, "err", err)
			return nil, fmt.Errorf("%s: %w", city, ErrCityNotSupported)
		}
		center = loc.Coordinates
		countryCode = loc.CountryCode
		if q.Country == "" {
			q.Country = loc.Country
		}
	}

	q.DateRange = TripRange(req, c.now())
	q.Days = q.DateRange.Days()
	weatherRange := q.DateRange.Clamp(weather.MaxForecastDays)

	var (
		report  WeatherReport
		found   attractions.Result
		localCC = currency
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer recoverTo(c.log, "weather", func() {
			report = WeatherReport{Status: WeatherUnavailable, Message: NoWeatherMessage}
		})
		report = c.fetchWeather(gCtx, q.City, center, weatherRange)
		return nil
	})

	g.Go(func() error {
		defer recoverTo(c.log, "attractions", func() {
			found = attractions.Result{Status: attractions.StatusUnavailable, Items: []attractions.Attraction{}}
		})
		found = c.attractions.ForCity(gCtx, q.City, q.Country, &center, c.limit)
		if found.Status == attractions.StatusUnavailable {
			c.log.Warn("attractions unavailable", "city", q.City)
		}
		return nil
	})

	if localCC == "" && countryCode != "" && c.currencies != nil {
		g.Go(func() error {
			defer recoverTo(c.log, "currency", nil)
			cur, lookupErr := c.currencies.CurrencyFor(gCtx, countryCode)
			if lookupErr != nil {
				c.log.Warn("currency lookup failed", "country_code", countryCode, "err", lookupErr)
				return nil
			}
			localCC = cur
			return nil
		})
	}

	// Every task degrades to its placeholder, so none returns an error.
	_ = g.Wait()

	estimate, err := c.estimator.Estimate(style, q.CostMultiplier, q.Days, localCC)
	if err != nil {
		return nil, err
	}

	items := found.Items
	if items == nil {
		items = []attractions.Attraction{}
	}
	status := found.Status
	if status == "" {
		status = attractions.StatusUnavailable
	}

	return &TravelPlan{
		GeneratedAt:       c.now().UTC(),
		Query:             q,
		Coordinates:       center,
		Cost:              estimate,
		Weather:           report,
		Attractions:       items,
		AttractionsStatus: status,
		ImageKeyword:      imageKeyword,
	}, nil
}

func (c *Composer) fetchWeather(ctx context.Context, city string, at geo.Coordinates, r weather.DateRange) WeatherReport {
	fc, err := c.weather.Forecast(ctx, at, &r)
	if err != nil {
		c.log.Warn("weather unavailable", "city", city, "range", r.String(), "err", err)
		return WeatherReport{Status: WeatherUnavailable, Message: NoWeatherMessage}
	}
	return WeatherReport{Status: WeatherOK, Forecast: fc}
}

// TripRange derives the trip's calendar range from req. Explicit dates win
// and are swapped when inverted; otherwise the trip starts on the given start
// date, or today, and lasts req.Days. The length is clamped to
// [1, MaxTripDays] keeping the start date.
func TripRange(req Request, now time.Time) weather.DateRange {
	days := min(max(req.Days, 1), MaxTripDays)

	var r weather.DateRange
	switch {
	case req.Start != nil && req.End != nil:
		r = weather.NewDateRange(*req.Start, *req.End).Ordered()
	case req.Start != nil:
		start := weather.CalendarDay(*req.Start)
		r = weather.DateRange{Start: start, End: start.AddDate(0, 0, days-1)}
	case req.End != nil:
		end := weather.CalendarDay(*req.End)
		r = weather.DateRange{Start: end.AddDate(0, 0, -(days - 1)), End: end}
	default:
		today := weather.CalendarDay(now)
		r = weather.DateRange{Start: today, End: today.AddDate(0, 0, days-1)}
	}
	return r.Clamp(MaxTripDays)
}

// recoverTo must be deferred directly. A recovered panic is logged and
// fallback, if non-nil, stores the task's placeholder.
func recoverTo(log *slog.Logger, task string, fallback func()) {
	if r := recover(); r != nil {
		log.Error(task+" panicked", "recover", r)
		if fallback != nil {
			fallback()
		}
	}
}

var _ Geocoder = (*geocode.Resolver)(nil)
