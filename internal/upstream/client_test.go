package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripplanner/internal/upstream"
)

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(map[string]any{"lat": 48.85})
	}))
	defer srv.Close()

	var dst struct {
		Lat float64 `json:"lat"`
	}
	c := upstream.New("test", time.Second)
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &dst))
	assert.Equal(t, 48.85, dst.Lat)
}

func TestGetJSON_StatusErrorRedactsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := upstream.New("geoapify", time.Second)
	err := c.GetJSON(context.Background(), srv.URL+"/v1/search?apiKey=secret", &struct{}{})
	require.Error(t, err)

	var se *upstream.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "bad key")
	assert.NotContains(t, err.Error(), "secret")
	assert.True(t, upstream.HasStatus(err, http.StatusUnauthorized))
	assert.False(t, upstream.HasStatus(err, http.StatusBadRequest))
}

func TestGetJSON_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	}))
	defer srv.Close()

	err := upstream.New("test", time.Second).GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestGetJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	err := upstream.New("slow", 50*time.Millisecond).GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
}

func TestPostFormJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": r.PostForm.Get("data")})
	}))
	defer srv.Close()

	var dst struct {
		Echo string `json:"echo"`
	}
	c := upstream.New("overpass", time.Second)
	require.NoError(t, c.PostFormJSON(context.Background(), srv.URL, url.Values{"data": {"[out:json];"}}, &dst))
	assert.Equal(t, "[out:json];", dst.Echo)
}
