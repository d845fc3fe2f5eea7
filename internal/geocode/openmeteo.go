package geocode

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const openMeteoGeocodeDefaultURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteo is the keyless secondary geocoder.
type OpenMeteo struct {
	lang    string
	baseURL string
	client  *upstream.Client
}

// NewOpenMeteo constructs an OpenMeteo strategy.
func NewOpenMeteo(lang string, timeout time.Duration) *OpenMeteo {
	return &OpenMeteo{lang: lang, baseURL: openMeteoGeocodeDefaultURL, client: upstream.New("openmeteo-geocode", timeout)}
}

// NewOpenMeteoWithURL constructs an OpenMeteo strategy pointing at a custom base URL (for tests).
func NewOpenMeteoWithURL(baseURL string) *OpenMeteo {
	return &OpenMeteo{lang: "en", baseURL: baseURL, client: upstream.New("openmeteo-geocode", upstream.DefaultTimeout)}
}

func (o *OpenMeteo) Name() string { return "openmeteo" }

type openMeteoGeocodeResponse struct {
	Results []struct {
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		Country     string   `json:"country"`
		CountryCode string   `json:"country_code"`
	} `json:"results"`
}

func (o *OpenMeteo) Resolve(ctx context.Context, query string) (Location, error) {
	params := url.Values{
		"name":   {query},
		"count":  {"1"},
		"format": {"json"},
	}
	if o.lang != "" {
		params.Set("language", o.lang)
	}

	var raw openMeteoGeocodeResponse
	if err := o.client.GetJSON(ctx, o.baseURL+"?"+params.Encode(), &raw); err != nil {
		return Location{}, fmt.Errorf("open-meteo geocode for %q: %w", query, err)
	}

	if len(raw.Results) == 0 {
		return Location{}, ErrNoResults
	}

	r := raw.Results[0]
	c, ok := geo.FromPair(r.Latitude, r.Longitude)
	if !ok {
		return Location{}, ErrNoResults
	}

	return Location{Coordinates: c, Country: r.Country, CountryCode: r.CountryCode}, nil
}
