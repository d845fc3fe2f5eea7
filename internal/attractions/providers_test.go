package attractions_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/geo"
)

var warsaw = geo.Coordinates{Latitude: 52.2297, Longitude: 21.0122}

func jsonHandler(t *testing.T, body any, check func(r *http.Request)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

func TestGoogleText_Search(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, map[string]any{
		"status": "OK",
		"results": []map[string]any{
			{
				"name":              "Royal Castle",
				"formatted_address": "plac Zamkowy 4, Warszawa",
				"rating":            4.7,
				"price_level":       2,
				"types":             []string{"tourist_attraction", "museum", "point_of_interest", "establishment", "bowling_alley"},
				"geometry":          map[string]any{"location": map[string]any{"lat": 52.2479, "lng": 21.0152}},
				"photos":            []map[string]any{{"photo_reference": "REF1"}, {"photo_reference": "REF2"}},
			},
			{"name": ""},
		},
	}, func(r *http.Request) {
		assert.Equal(t, "attractions in Warsaw, Poland", r.URL.Query().Get("query"))
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
	}))
	defer srv.Close()

	got, err := attractions.NewGoogleTextWithURL(srv.URL, "g-key").Search(context.Background(), "Warsaw", "Poland", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "Royal Castle", a.Name)
	assert.Equal(t, []string{"Tourist attraction", "Museum", "Bowling Alley"}, a.Categories)
	assert.Equal(t, 4.7, *a.Rating)
	assert.Equal(t, 2, *a.PriceLevel)
	require.NotNil(t, a.Coordinates)
	assert.Equal(t, "google", a.Source)

	u, err := url.Parse(a.PhotoURL)
	require.NoError(t, err)
	assert.Equal(t, "/maps/api/place/photo", u.Path)
	assert.Equal(t, "400", u.Query().Get("maxwidth"))
	assert.Equal(t, "REF1", u.Query().Get("photo_reference"))
}

func TestGoogleText_RequestDenied(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, map[string]any{"status": "REQUEST_DENIED", "error_message": "bad key"}, nil))
	defer srv.Close()

	_, err := attractions.NewGoogleTextWithURL(srv.URL, "g-key").Search(context.Background(), "Warsaw", "", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleText_NoKey(t *testing.T) {
	_, err := attractions.NewGoogleTextWithURL("http://127.0.0.1:1", "").Search(context.Background(), "Warsaw", "", 5)
	assert.True(t, errors.Is(err, attractions.ErrNoAPIKey))
}

func TestGeoapifyPlaces_Nearby(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, map[string]any{
		"features": []map[string]any{
			{"properties": map[string]any{
				"name:pl": "Łazienki Królewskie", "categories": []string{"leisure.park", "leisure", "tourism.sights"},
				"address_line2": "Agrykoli 1", "lat": 52.2153, "lon": 21.0355,
			}},
			{"properties": map[string]any{"categories": []string{"tourism.viewpoint"}, "lat": 52.2, "lon": 21.0}},
		},
	}, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "circle:21.0122,52.2297,30000", q.Get("filter"))
		assert.Contains(t, q.Get("categories"), "tourism.viewpoint")
		assert.Equal(t, "10", q.Get("limit"))
	}))
	defer srv.Close()

	got, err := attractions.NewGeoapifyPlacesWithURL(srv.URL, "k").Nearby(context.Background(), warsaw, 30000, 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "nameless features are dropped")
	assert.Equal(t, "Łazienki Królewskie", got[0].Name)
	assert.Equal(t, "Agrykoli 1", got[0].Address)
	assert.Equal(t, []string{"Park", "Leisure", "Sights"}, got[0].Categories)
}

func TestOpenTripMapRadius_Nearby(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, map[string]any{
		"features": []map[string]any{
			{
				"geometry":   map[string]any{"coordinates": []float64{21.0136, 52.2500}},
				"properties": map[string]any{"name": "Old Town Market Place", "kinds": "historic,urban_environment,interesting_places"},
			},
			{"geometry": map[string]any{"coordinates": []float64{21.0, 52.2}}, "properties": map[string]any{"name": ""}},
		},
	}, func(r *http.Request) {
		assert.Equal(t, "geojson", r.URL.Query().Get("format"))
		assert.Equal(t, "otm", r.URL.Query().Get("apikey"))
	}))
	defer srv.Close()

	got, err := attractions.NewOpenTripMapRadiusWithURL(srv.URL, "otm").Nearby(context.Background(), warsaw, 30000, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Historic", "Urban Environment"}, got[0].Categories)
	assert.InDelta(t, 52.25, got[0].Coordinates.Latitude, 1e-9)
}

func TestOverpass_Query(t *testing.T) {
	q := attractions.Query(warsaw, 30000, 10)

	assert.Contains(t, q, "[out:json][timeout:25];(")
	assert.Contains(t, q, `node(around:30000,52.2297,21.0122)[leisure=park];`)
	assert.Contains(t, q, `relation(around:30000,52.2297,21.0122)[tourism~"viewpoint|attraction|museum|zoo"];`)
	assert.Contains(t, q, `way(around:30000,52.2297,21.0122)[waterway];`)
	assert.NotContains(t, q, `relation(around:30000,52.2297,21.0122)[waterway];`)
	assert.True(t, strings.HasSuffix(q, ");out center 10;"))
}

func TestOverpass_Nearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(body))
		assert.NoError(t, err)
		assert.Contains(t, form.Get("data"), "out center 10;")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"elements": []map[string]any{
				{"type": "node", "lat": 52.24, "lon": 21.01, "tags": map[string]string{"name": "Viewpoint", "tourism": "viewpoint", "addr:street": "Krakowskie Przedmieście", "addr:housenumber": "5"}},
				{"type": "way", "center": map[string]any{"lat": 52.21, "lon": 21.03}, "tags": map[string]string{"official_name": "Pole Mokotowskie", "leisure": "park"}},
				{"type": "way", "tags": map[string]string{"name": "No Center"}},
				{"type": "node", "lat": 52.3, "lon": 21.1, "tags": map[string]string{"natural": "wood"}},
			},
		})
	}))
	defer srv.Close()

	got, err := attractions.NewOverpassWithURL(srv.URL).Nearby(context.Background(), warsaw, 30000, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Krakowskie Przedmieście 5", got[0].Address)
	assert.Equal(t, []string{"Viewpoint"}, got[0].Categories)
	assert.Equal(t, "Pole Mokotowskie", got[1].Name)
	assert.InDelta(t, 52.21, got[1].Coordinates.Latitude, 1e-9)
}
