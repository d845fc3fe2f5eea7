package plan_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/catalog"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/geocode"
	"github.com/neexbeast/tripplanner/internal/plan"
	"github.com/neexbeast/tripplanner/internal/weather"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type mockGeocoder struct {
	loc   geocode.Location
	err   error
	calls []string
}

func (m *mockGeocoder) Resolve(_ context.Context, city string) (geocode.Location, error) {
	m.calls = append(m.calls, city)
	return m.loc, m.err
}

type mockForecaster struct {
	mu     sync.Mutex
	fc     *weather.Forecast
	err    error
	ranges []weather.DateRange
	panics bool
}

func (m *mockForecaster) Forecast(_ context.Context, _ geo.Coordinates, r *weather.DateRange) (*weather.Forecast, error) {
	if m.panics {
		panic("boom")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranges = append(m.ranges, *r)
	return m.fc, m.err
}

type mockFinder struct {
	res     attractions.Result
	country string
	calls   int
	panics  bool
}

func (m *mockFinder) ForCity(_ context.Context, _, country string, _ *geo.Coordinates, _ int) attractions.Result {
	m.calls++
	if m.panics {
		panic("boom")
	}
	m.country = country
	return m.res
}

type mockCurrencies struct {
	cur    string
	err    error
	codes  []string
	panics bool
}

func (m *mockCurrencies) CurrencyFor(_ context.Context, code string) (string, error) {
	m.codes = append(m.codes, code)
	if m.panics {
		panic("boom")
	}
	return m.cur, m.err
}

type fixture struct {
	geocoder   *mockGeocoder
	weather    *mockForecaster
	finder     *mockFinder
	currencies *mockCurrencies
	composer   *plan.Composer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	f := &fixture{
		geocoder: &mockGeocoder{loc: geocode.Location{
			Coordinates: geo.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
			Country:     "France",
			CountryCode: "fr",
		}},
		weather:    &mockForecaster{fc: &weather.Forecast{Daily: []weather.Day{}}},
		finder:     &mockFinder{res: attractions.Result{Status: attractions.StatusOK, Items: []attractions.Attraction{{Name: "Louvre"}}}},
		currencies: &mockCurrencies{cur: "EUR"},
	}
	f.composer = plan.NewComposer(plan.Deps{
		Catalog:     cat,
		Geocoder:    f.geocoder,
		Weather:     f.weather,
		Attractions: f.finder,
		Currencies:  f.currencies,
	}).WithClock(func() time.Time { return fixedNow })
	return f
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(weather.DateLayout, s)
	require.NoError(t, err)
	return &d
}

func TestCompose_ParisWithDegradedProviders(t *testing.T) {
	f := newFixture(t)
	f.weather.fc, f.weather.err = nil, weather.ErrUnavailable
	f.finder.res = attractions.Result{Status: attractions.StatusUnavailable, Items: []attractions.Attraction{}}

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Paris", Days: 3, Style: "Standard"})
	require.NoError(t, err)

	assert.Equal(t, "Paris", p.Query.City)
	assert.Equal(t, 3, p.Query.Days)
	assert.Equal(t, "2025-06-01..2025-06-03", p.Query.DateRange.String())
	assert.Len(t, p.Cost.Currency, 3)
	assert.Equal(t, "EUR", p.Cost.Currency)
	assert.Equal(t, plan.WeatherUnavailable, p.Weather.Status)
	assert.Equal(t, plan.NoWeatherMessage, p.Weather.Message)
	assert.Nil(t, p.Weather.Forecast)
	assert.NotNil(t, p.Attractions)
	assert.Empty(t, p.Attractions)
	assert.Equal(t, attractions.StatusUnavailable, p.AttractionsStatus)
	assert.Equal(t, fixedNow, p.GeneratedAt)
}

func TestCompose_Success(t *testing.T) {
	f := newFixture(t)

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "  paris ", Days: 5, Style: "standard"})
	require.NoError(t, err)

	assert.Equal(t, plan.WeatherOK, p.Weather.Status)
	assert.NotNil(t, p.Weather.Forecast)
	assert.Len(t, p.Attractions, 1)
	assert.True(t, p.Query.Catalogued)
	assert.Equal(t, cost.Standard, p.Query.Style)
	assert.Equal(t, []string{"Paris"}, f.geocoder.calls)
	assert.Empty(t, f.currencies.codes, "catalog currency wins")
	assert.Equal(t, "France", f.finder.country)
}

func TestCompose_InvalidStyleRejectedFirst(t *testing.T) {
	f := newFixture(t)

	_, err := f.composer.Compose(context.Background(), plan.Request{City: "Paris", Days: 3, Style: "Luxury"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cost.ErrInvalidStyle))
	assert.Empty(t, f.geocoder.calls)
	assert.Empty(t, f.weather.ranges)
	assert.Zero(t, f.finder.calls)
}

func TestCompose_UnresolvableCity(t *testing.T) {
	f := newFixture(t)
	f.geocoder.err = geocode.ErrCityNotFound

	_, err := f.composer.Compose(context.Background(), plan.Request{City: "Atlantis", Days: 3, Style: "Economy"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrCityNotSupported))
	assert.Empty(t, f.weather.ranges)
	assert.Zero(t, f.finder.calls)
}

func TestCompose_DeadlineDuringResolveIsNotCityNotSupported(t *testing.T) {
	f := newFixture(t)
	f.geocoder.err = context.DeadlineExceeded

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.composer.Compose(ctx, plan.Request{City: "Paris", Days: 3, Style: "Standard"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, plan.ErrCityNotSupported))
}

func TestCompose_EmptyCity(t *testing.T) {
	f := newFixture(t)

	_, err := f.composer.Compose(context.Background(), plan.Request{City: "   ", Days: 3, Style: "Economy"})
	assert.True(t, errors.Is(err, plan.ErrCityNotSupported))
}

func TestCompose_SuppliedCoordinatesSkipGeocoder(t *testing.T) {
	f := newFixture(t)
	at := geo.Coordinates{Latitude: 41.9028, Longitude: 12.4964}

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Rome", Days: 2, Style: "Comfort", Coordinates: &at})
	require.NoError(t, err)
	assert.Empty(t, f.geocoder.calls)
	assert.Equal(t, at, p.Coordinates)
}

func TestCompose_UncataloguedCityUsesLookupCurrency(t *testing.T) {
	f := newFixture(t)
	f.geocoder.loc = geocode.Location{Coordinates: geo.Coordinates{Latitude: 45.8150, Longitude: 15.9819}, Country: "Croatia", CountryCode: "hr"}

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Zagreb", Days: 2, Style: "Economy"})
	require.NoError(t, err)

	assert.False(t, p.Query.Catalogued)
	assert.Equal(t, "Zagreb", p.Query.City)
	assert.Equal(t, "Croatia", p.Query.Country)
	assert.Equal(t, catalog.DefaultMultiplier, p.Query.CostMultiplier)
	assert.Equal(t, []string{"hr"}, f.currencies.codes)
	assert.Equal(t, "EUR", p.Cost.Currency)
	assert.Equal(t, 720.0, p.Cost.Total)
}

func TestCompose_CurrencyLookupFailureFallsBackToTarget(t *testing.T) {
	f := newFixture(t)
	f.geocoder.loc.CountryCode = "xx"
	f.currencies.err = errors.New("down")

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Somewhere Else", Days: 1, Style: "Economy"})
	require.NoError(t, err)
	assert.Equal(t, cost.TargetCurrency, p.Cost.Currency)
}

func TestCompose_ExplicitMultiplierWins(t *testing.T) {
	f := newFixture(t)
	m := 1.2

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Paris", Days: 5, Style: "Standard", CostMultiplier: &m})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, p.Cost.Total)
}

func TestCompose_DatesSwappedAndClamped(t *testing.T) {
	f := newFixture(t)

	p, err := f.composer.Compose(context.Background(), plan.Request{
		City:  "Paris",
		Style: "Economy",
		Start: date(t, "2025-08-31"),
		End:   date(t, "2025-07-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-07-01..2025-07-30", p.Query.DateRange.String())
	assert.Equal(t, plan.MaxTripDays, p.Query.Days)
	require.Len(t, f.weather.ranges, 1)
	assert.Equal(t, "2025-07-01..2025-07-16", f.weather.ranges[0].String())
}

func TestCompose_WeatherPanicDegradesToPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.weather.panics = true

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Paris", Days: 3, Style: "Standard"})
	require.NoError(t, err)

	assert.Equal(t, plan.WeatherUnavailable, p.Weather.Status)
	assert.Equal(t, plan.NoWeatherMessage, p.Weather.Message)
	assert.Nil(t, p.Weather.Forecast)
	assert.Equal(t, 1, f.finder.calls)
	assert.Equal(t, attractions.StatusOK, p.AttractionsStatus)
	require.Len(t, p.Attractions, 1)
	assert.Equal(t, "Louvre", p.Attractions[0].Name)
}

func TestCompose_AttractionsPanicDegradesToEmptyList(t *testing.T) {
	f := newFixture(t)
	f.finder.panics = true

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Paris", Days: 3, Style: "Standard"})
	require.NoError(t, err)

	assert.Equal(t, attractions.StatusUnavailable, p.AttractionsStatus)
	assert.NotNil(t, p.Attractions)
	assert.Empty(t, p.Attractions)
	assert.Equal(t, plan.WeatherOK, p.Weather.Status)
}

func TestCompose_CurrencyPanicFallsBackToTarget(t *testing.T) {
	f := newFixture(t)
	f.geocoder.loc.CountryCode = "hr"
	f.currencies.panics = true

	p, err := f.composer.Compose(context.Background(), plan.Request{City: "Zagreb", Days: 2, Style: "Economy"})
	require.NoError(t, err)

	assert.Equal(t, []string{"hr"}, f.currencies.codes)
	assert.Equal(t, cost.TargetCurrency, p.Cost.Currency)
	assert.Equal(t, 720.0, p.Cost.Total)
}

func TestTripRange(t *testing.T) {
	tests := []struct {
		name string
		req  plan.Request
		want string
	}{
		{"default today", plan.Request{Days: 3}, "2025-06-01..2025-06-03"},
		{"zero days is one", plan.Request{Days: 0}, "2025-06-01..2025-06-01"},
		{"too many days", plan.Request{Days: 45}, "2025-06-01..2025-06-30"},
		{"start only", plan.Request{Days: 2, Start: date(t, "2025-09-10")}, "2025-09-10..2025-09-11"},
		{"end only", plan.Request{Days: 3, End: date(t, "2025-09-10")}, "2025-09-08..2025-09-10"},
		{"both ignore days", plan.Request{Days: 9, Start: date(t, "2025-09-10"), End: date(t, "2025-09-12")}, "2025-09-10..2025-09-12"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, plan.TripRange(tc.req, fixedNow).String())
		})
	}
}
