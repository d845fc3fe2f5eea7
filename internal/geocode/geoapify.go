package geocode

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const geoapifyDefaultURL = "https://api.geoapify.com/v1/geocode/search"

// Geoapify is the keyed primary geocoder.
type Geoapify struct {
	apiKey  string
	lang    string
	baseURL string
	client  *upstream.Client
}

// NewGeoapify constructs a Geoapify strategy. An empty apiKey makes every
// call return ErrNotConfigured.
func NewGeoapify(apiKey, lang string, timeout time.Duration) *Geoapify {
	return &Geoapify{apiKey: apiKey, lang: lang, baseURL: geoapifyDefaultURL, client: upstream.New("geoapify-geocode", timeout)}
}

// NewGeoapifyWithURL constructs a Geoapify strategy pointing at a custom base URL (for tests).
func NewGeoapifyWithURL(baseURL, apiKey string) *Geoapify {
	return &Geoapify{apiKey: apiKey, lang: "en", baseURL: baseURL, client: upstream.New("geoapify-geocode", upstream.DefaultTimeout)}
}

func (g *Geoapify) Name() string { return "geoapify" }

type geoapifyResponse struct {
	Results []struct {
		Lat         *float64 `json:"lat"`
		Lon         *float64 `json:"lon"`
		Country     string   `json:"country"`
		CountryCode string   `json:"country_code"`
	} `json:"results"`
}

// Resolve geocodes query. A 401 surfaces as an upstream.StatusError.
func (g *Geoapify) Resolve(ctx context.Context, query string) (Location, error) {
	if g.apiKey == "" {
		return Location{}, ErrNotConfigured
	}

	params := url.Values{
		"text":   {query},
		"format": {"json"},
		"limit":  {"1"},
		"apiKey": {g.apiKey},
	}
	if g.lang != "" {
		params.Set("lang", g.lang)
	}

	var raw geoapifyResponse
	if err := g.client.GetJSON(ctx, g.baseURL+"?"+params.Encode(), &raw); err != nil {
		return Location{}, fmt.Errorf("geoapify geocode for %q: %w", query, err)
	}

	if len(raw.Results) == 0 {
		return Location{}, ErrNoResults
	}

	r := raw.Results[0]
	c, ok := geo.FromPair(r.Lat, r.Lon)
	if !ok {
		return Location{}, ErrNoResults
	}

	return Location{Coordinates: c, Country: r.Country, CountryCode: r.CountryCode}, nil
}
