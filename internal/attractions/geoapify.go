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

const (
	geoapifyPlacesDefaultURL = "https://api.geoapify.com/v2/places"
	geoapifyCategories       = "leisure.park,natural,tourism,leisure,water,landuse," +
		"tourism.museum,tourism.attraction,tourism.viewpoint,historic"
)

// GeoapifyPlaces searches the Geoapify Places API around a point.
type GeoapifyPlaces struct {
	apiKey   string
	language string
	baseURL  string
	client   *upstream.Client
}

// NewGeoapifyPlaces constructs a GeoapifyPlaces searcher.
func NewGeoapifyPlaces(apiKey, language string, timeout time.Duration) *GeoapifyPlaces {
	return &GeoapifyPlaces{apiKey: apiKey, language: language, baseURL: geoapifyPlacesDefaultURL, client: upstream.New("geoapify-places", timeout)}
}

// NewGeoapifyPlacesWithURL constructs a GeoapifyPlaces searcher pointing at a custom base URL (for tests).
func NewGeoapifyPlacesWithURL(baseURL, apiKey string) *GeoapifyPlaces {
	return &GeoapifyPlaces{apiKey: apiKey, baseURL: baseURL, client: upstream.New("geoapify-places", upstream.DefaultTimeout)}
}

func (g *GeoapifyPlaces) Name() string { return "geoapify" }

type geoapifyPlacesResponse struct {
	Features []struct {
		Properties struct {
			Name         string   `json:"name"`
			NamePL       string   `json:"name:pl"`
			NameEN       string   `json:"name:en"`
			Categories   []string `json:"categories"`
			Formatted    string   `json:"formatted"`
			AddressLine1 string   `json:"address_line1"`
			AddressLine2 string   `json:"address_line2"`
			Lat          *float64 `json:"lat"`
			Lon          *float64 `json:"lon"`
			Distance     *float64 `json:"distance"`
		} `json:"properties"`
	} `json:"features"`
}

func (g *GeoapifyPlaces) Nearby(ctx context.Context, center geo.Coordinates, radiusM, limit int) ([]Attraction, error) {
	if g.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{
		"filter":     {fmt.Sprintf("circle:%s,%s,%d", fmtCoord(center.Longitude), fmtCoord(center.Latitude), radiusM)},
		"categories": {geoapifyCategories},
		"limit":      {strconv.Itoa(limit)},
		"apiKey":     {g.apiKey},
	}
	if g.language != "" {
		params.Set("lang", g.language)
	}

	var raw geoapifyPlacesResponse
	if err := g.client.GetJSON(ctx, g.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("geoapify places around %s: %w", center, err)
	}

	out := make([]Attraction, 0, len(raw.Features))
	for _, f := range raw.Features {
		p := f.Properties
		name := firstNonEmpty(p.Name, p.NamePL, p.NameEN)
		if name == "" {
			continue
		}

		a := Attraction{
			Name:       name,
			Address:    firstNonEmpty(p.Formatted, p.AddressLine2, p.AddressLine1),
			Categories: geoapifyLabels(p.Categories),
			Source:     g.Name(),
		}
		if c, ok := geo.FromPair(p.Lat, p.Lon); ok {
			a.Coordinates = &c
		} else if p.Distance != nil {
			d := geo.Round(*p.Distance/1000, 1)
			a.DistanceKM = &d
		}
		out = append(out, a)
	}
	return out, nil
}

// geoapifyLabels keeps the most specific segment of each dotted category.
func geoapifyLabels(categories []string) []string {
	out := []string{}
	for _, c := range categories {
		if i := strings.LastIndexByte(c, '.'); i >= 0 {
			c = c[i+1:]
		}
		out = appendUnique(out, humanize(c))
	}
	return out
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
