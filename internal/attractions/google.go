package attractions

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const (
	googleTextSearchDefaultURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	googlePhotoURL             = "https://maps.googleapis.com/maps/api/place/photo"
	photoMaxWidth              = "400"
)

// Readable labels for Google place types. Types mapped to "" are too
// generic to show.
var googleTypes = map[string]string{
	"tourist_attraction": "Tourist attraction",
	"point_of_interest":  "",
	"establishment":      "",
	"museum":             "Museum",
	"art_gallery":        "Art gallery",
	"park":               "Park",
	"church":             "Church",
	"place_of_worship":   "Place of worship",
	"mosque":             "Mosque",
	"synagogue":          "Synagogue",
	"hindu_temple":       "Temple",
	"zoo":                "Zoo",
	"aquarium":           "Aquarium",
	"amusement_park":     "Amusement park",
	"natural_feature":    "Nature",
	"stadium":            "Stadium",
	"library":            "Library",
	"city_hall":          "City hall",
	"shopping_mall":      "Shopping",
	"store":              "Shopping",
	"restaurant":         "Restaurant",
	"cafe":               "Café",
	"bar":                "Bar",
	"night_club":         "Nightlife",
	"lodging":            "Lodging",
	"university":         "University",
	"campground":         "Campground",
}

// GoogleText searches attractions with the Google Places text search.
type GoogleText struct {
	apiKey   string
	language string
	baseURL  string
	client   *upstream.Client
}

// NewGoogleText constructs a GoogleText searcher.
func NewGoogleText(apiKey, language string, timeout time.Duration) *GoogleText {
	return &GoogleText{apiKey: apiKey, language: language, baseURL: googleTextSearchDefaultURL, client: upstream.New("google-places", timeout)}
}

// NewGoogleTextWithURL constructs a GoogleText searcher pointing at a custom base URL (for tests).
func NewGoogleTextWithURL(baseURL, apiKey string) *GoogleText {
	return &GoogleText{apiKey: apiKey, language: "en", baseURL: baseURL, client: upstream.New("google-places", upstream.DefaultTimeout)}
}

func (g *GoogleText) Name() string { return "google" }

type googleTextResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           *float64 `json:"rating"`
		PriceLevel       *int     `json:"price_level"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

// Search queries "attractions in {city}, {country}".
func (g *GoogleText) Search(ctx context.Context, city, country string, limit int) ([]Attraction, error) {
	if g.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	query := "attractions in " + city
	if country != "" {
		query += ", " + country
	}
	params := url.Values{"query": {query}, "key": {g.apiKey}}
	if g.language != "" {
		params.Set("language", g.language)
	}

	var raw googleTextResponse
	if err := g.client.GetJSON(ctx, g.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("google places search for %s: %w", city, err)
	}

	switch raw.Status {
	case "OK", "ZERO_RESULTS", "":
	default:
		return nil, fmt.Errorf("google places search for %s: status %s: %s", city, raw.Status, raw.ErrorMessage)
	}

	out := make([]Attraction, 0, len(raw.Results))
	for _, r := range raw.Results {
		if r.Name == "" {
			continue
		}
		a := Attraction{
			Name:       r.Name,
			Address:    r.FormattedAddress,
			Rating:     r.Rating,
			PriceLevel: r.PriceLevel,
			Categories: googleCategories(r.Types),
			Source:     g.Name(),
		}
		if c, ok := geo.FromPair(r.Geometry.Location.Lat, r.Geometry.Location.Lng); ok {
			a.Coordinates = &c
		}
		if len(r.Photos) > 0 && r.Photos[0].PhotoReference != "" {
			a.PhotoURL = g.photoURL(r.Photos[0].PhotoReference)
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (g *GoogleText) photoURL(ref string) string {
	q := url.Values{"maxwidth": {photoMaxWidth}, "photo_reference": {ref}, "key": {g.apiKey}}
	return googlePhotoURL + "?" + q.Encode()
}

func googleCategories(types []string) []string {
	out := []string{}
	for _, t := range types {
		label, ok := googleTypes[t]
		if !ok {
			label = humanize(t)
		}
		out = appendUnique(out, label)
	}
	return out
}
