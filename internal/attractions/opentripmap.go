package attractions

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const otmRadiusDefaultURL = "https://api.opentripmap.com/0.1/en/places/radius"

// Kinds requested from OpenTripMap. They mirror the park, nature, water and
// tourism categories asked of the other radius providers.
const otmKinds = "natural,museums,historic,cultural,architecture,view_points,gardens_and_parks,beaches"

// OpenTripMapRadius searches OpenTripMap around a point.
type OpenTripMapRadius struct {
	apiKey  string
	baseURL string
	client  *upstream.Client
}

// NewOpenTripMapRadius constructs an OpenTripMapRadius searcher.
func NewOpenTripMapRadius(apiKey string, timeout time.Duration) *OpenTripMapRadius {
	return &OpenTripMapRadius{apiKey: apiKey, baseURL: otmRadiusDefaultURL, client: upstream.New("opentripmap-radius", timeout)}
}

// NewOpenTripMapRadiusWithURL constructs an OpenTripMapRadius searcher pointing at a custom base URL (for tests).
func NewOpenTripMapRadiusWithURL(baseURL, apiKey string) *OpenTripMapRadius {
	return &OpenTripMapRadius{apiKey: apiKey, baseURL: baseURL, client: upstream.New("opentripmap-radius", upstream.DefaultTimeout)}
}

func (o *OpenTripMapRadius) Name() string { return "opentripmap" }

type otmRadiusResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name  string   `json:"name"`
			Kinds string   `json:"kinds"`
			Dist  *float64 `json:"dist"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *OpenTripMapRadius) Nearby(ctx context.Context, center geo.Coordinates, radiusM, limit int) ([]Attraction, error) {
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{
		"radius": {strconv.Itoa(radiusM)},
		"lon":    {fmtCoord(center.Longitude)},
		"lat":    {fmtCoord(center.Latitude)},
		"kinds":  {otmKinds},
		"rate":   {"2"},
		"limit":  {strconv.Itoa(limit)},
		"format": {"geojson"},
		"apikey": {o.apiKey},
	}

	var raw otmRadiusResponse
	if err := o.client.GetJSON(ctx, o.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("opentripmap radius around %s: %w", center, err)
	}

	out := make([]Attraction, 0, len(raw.Features))
	for _, f := range raw.Features {
		name := strings.TrimSpace(f.Properties.Name)
		if name == "" {
			continue
		}

		a := Attraction{Name: name, Categories: otmLabels(f.Properties.Kinds), Source: o.Name()}
		if cs := f.Geometry.Coordinates; len(cs) == 2 {
			c := geo.Coordinates{Latitude: cs[1], Longitude: cs[0]}
			if c.Valid() {
				a.Coordinates = &c
			}
		}
		if a.Coordinates == nil && f.Properties.Dist != nil {
			d := geo.Round(*f.Properties.Dist/1000, 1)
			a.DistanceKM = &d
		}
		out = append(out, a)
	}
	return out, nil
}

func otmLabels(kinds string) []string {
	out := []string{}
	for _, k := range strings.Split(kinds, ",") {
		if k == "" || k == "interesting_places" {
			continue
		}
		out = appendUnique(out, humanize(k))
	}
	return out
}
