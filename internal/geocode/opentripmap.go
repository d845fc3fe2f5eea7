package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const otmGeonameDefaultURL = "https://api.opentripmap.com/0.1/en/places/geoname"

// OpenTripMap resolves names through the OpenTripMap geoname endpoint.
type OpenTripMap struct {
	apiKey  string
	baseURL string
	client  *upstream.Client
}

// NewOpenTripMap constructs an OpenTripMap strategy. An empty apiKey makes
// every call return ErrNotConfigured.
func NewOpenTripMap(apiKey string, timeout time.Duration) *OpenTripMap {
	return &OpenTripMap{apiKey: apiKey, baseURL: otmGeonameDefaultURL, client: upstream.New("opentripmap-geoname", timeout)}
}

// NewOpenTripMapWithURL constructs an OpenTripMap strategy pointing at a custom base URL (for tests).
func NewOpenTripMapWithURL(baseURL, apiKey string) *OpenTripMap {
	return &OpenTripMap{apiKey: apiKey, baseURL: baseURL, client: upstream.New("opentripmap-geoname", upstream.DefaultTimeout)}
}

func (o *OpenTripMap) Name() string { return "opentripmap" }

type otmGeonameResponse struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Country string   `json:"country"`
	Status  string   `json:"status"`
}

func (o *OpenTripMap) Resolve(ctx context.Context, query string) (Location, error) {
	if o.apiKey == "" {
		return Location{}, ErrNotConfigured
	}

	endpoint := o.baseURL + "?name=" + url.QueryEscape(query) + "&apikey=" + url.QueryEscape(o.apiKey)

	var raw otmGeonameResponse
	if err := o.client.GetJSON(ctx, endpoint, &raw); err != nil {
		return Location{}, fmt.Errorf("opentripmap geoname for %q: %w", query, err)
	}

	if raw.Status != "" && !strings.EqualFold(raw.Status, "OK") {
		return Location{}, ErrNoResults
	}

	c, ok := geo.FromPair(raw.Lat, raw.Lon)
	if !ok {
		return Location{}, ErrNoResults
	}

	// geoname reports the ISO code in "country".
	return Location{Coordinates: c, CountryCode: strings.ToLower(raw.Country)}, nil
}
