package attractions

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const overpassDefaultURL = "https://overpass-api.de/api/interpreter"

// Overpass queries OpenStreetMap through the keyless Overpass API.
type Overpass struct {
	baseURL string
	client  *upstream.Client
}

// NewOverpass constructs an Overpass searcher.
func NewOverpass(timeout time.Duration) *Overpass {
	return &Overpass{baseURL: overpassDefaultURL, client: upstream.New("overpass", timeout)}
}

// NewOverpassWithURL constructs an Overpass searcher pointing at a custom base URL (for tests).
func NewOverpassWithURL(baseURL string) *Overpass {
	return &Overpass{baseURL: baseURL, client: upstream.New("overpass", upstream.DefaultTimeout)}
}

func (o *Overpass) Name() string { return "overpass" }

type overpassResponse struct {
	Elements []struct {
		Type   string            `json:"type"`
		Lat    *float64          `json:"lat"`
		Lon    *float64          `json:"lon"`
		Tags   map[string]string `json:"tags"`
		Center *struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"center"`
	} `json:"elements"`
}

// overpassFilters are the tag selectors queried, each paired with the element
// types it applies to.
var overpassFilters = []struct {
	filter string
	types  []string
}{
	{`[leisure=park]`, []string{"node", "way", "relation"}},
	{`[natural~"water|wood|coastline|wetland"]`, []string{"node", "way", "relation"}},
	{`[tourism~"viewpoint|attraction|museum|zoo"]`, []string{"node", "way", "relation"}},
	{`[waterway]`, []string{"node", "way"}},
}

// Query builds the Overpass QL request for the given area.
func Query(center geo.Coordinates, radiusM, limit int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	around := fmt.Sprintf("(around:%d,%s,%s)", radiusM, fmtCoord(center.Latitude), fmtCoord(center.Longitude))
	for _, f := range overpassFilters {
		for _, t := range f.types {
			b.WriteString(t + around + f.filter + ";")
		}
	}
	fmt.Fprintf(&b, ");out center %d;", limit)
	return b.String()
}

func (o *Overpass) Nearby(ctx context.Context, center geo.Coordinates, radiusM, limit int) ([]Attraction, error) {
	form := url.Values{"data": {Query(center, radiusM, limit)}}

	var raw overpassResponse
	if err := o.client.PostFormJSON(ctx, o.baseURL, form, &raw); err != nil {
		return nil, fmt.Errorf("overpass around %s: %w", center, err)
	}

	out := make([]Attraction, 0, len(raw.Elements))
	for _, el := range raw.Elements {
		name := firstNonEmpty(el.Tags["name"], el.Tags["name:pl"], el.Tags["official_name"])
		if name == "" {
			continue
		}

		lat, lon := el.Lat, el.Lon
		if el.Type != "node" && el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		c, ok := geo.FromPair(lat, lon)
		if !ok {
			continue
		}

		a := Attraction{
			Name:        name,
			Address:     overpassAddress(el.Tags),
			Categories:  []string{},
			Coordinates: &c,
			Source:      o.Name(),
		}
		if cat := firstNonEmpty(el.Tags["leisure"], el.Tags["natural"], el.Tags["tourism"], el.Tags["waterway"]); cat != "" {
			a.Categories = append(a.Categories, humanize(cat))
		}
		out = append(out, a)
	}
	return out, nil
}

func overpassAddress(tags map[string]string) string {
	street := tags["addr:street"]
	if street == "" {
		return ""
	}
	if n := tags["addr:housenumber"]; n != "" {
		return street + " " + n
	}
	return street
}
