// Package countries looks up country facts, chiefly the local currency, from
// RestCountries. No API key is required.
package countries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/neexbeast/tripplanner/internal/upstream"
)

const (
	restCountriesDefaultURL = "https://restcountries.com/v3.1"
	fields                  = "name,cca2,capital,region,languages,currencies"
	cacheTTL                = 24 * time.Hour
)

// ErrNotFound means RestCountries knows no such country.
var ErrNotFound = errors.New("country not found")

// Country holds the facts used when planning a trip.
type Country struct {
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Capital    string   `json:"capital,omitempty"`
	Region     string   `json:"region,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Currencies []string `json:"currencies"`
}

// Currency returns the first ISO 4217 code, or "" when none is listed.
func (c *Country) Currency() string {
	if len(c.Currencies) == 0 {
		return ""
	}
	return c.Currencies[0]
}

// Client fetches country data. Answers are memoized in process.
type Client struct {
	baseURL string
	client  *upstream.Client
	cache   *gocache.Cache
}

// NewClient constructs a Client using the production URL.
func NewClient(timeout time.Duration) *Client {
	return NewClientWithURL(restCountriesDefaultURL, timeout)
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  upstream.New("restcountries", timeout),
		cache:   gocache.New(cacheTTL, time.Hour),
	}
}

type restCountriesEntry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2       string            `json:"cca2"`
	Capital    []string          `json:"capital"`
	Region     string            `json:"region"`
	Languages  map[string]string `json:"languages"`
	Currencies map[string]struct {
		Name string `json:"name"`
	} `json:"currencies"`
}

// ByCode looks a country up by its ISO 3166-1 alpha-2 or alpha-3 code.
func (c *Client) ByCode(ctx context.Context, code string) (*Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}
	return c.lookup(ctx, "alpha:"+code, c.baseURL+"/alpha/"+url.PathEscape(code)+"?fields="+fields)
}

// ByName looks a country up by its full name.
func (c *Client) ByName(ctx context.Context, name string) (*Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}
	return c.lookup(ctx, "name:"+strings.ToLower(name), c.baseURL+"/name/"+url.PathEscape(name)+"?fullText=true&fields="+fields)
}

// CurrencyFor returns the currency of the country with the given code.
func (c *Client) CurrencyFor(ctx context.Context, code string) (string, error) {
	country, err := c.ByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if cur := country.Currency(); cur != "" {
		return cur, nil
	}
	return "", fmt.Errorf("country %s lists no currency: %w", code, ErrNotFound)
}

func (c *Client) lookup(ctx context.Context, key, endpoint string) (*Country, error) {
	if v, ok := c.cache.Get(key); ok {
		country := v.(Country)
		return &country, nil
	}

	// The alpha endpoint answers with an object for a single code and an
	// array elsewhere, so both shapes are accepted.
	var raw entries
	if err := c.client.GetJSON(ctx, endpoint, &raw); err != nil {
		if upstream.HasStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("restcountries %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("restcountries fetch for %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("restcountries %s: %w", key, ErrNotFound)
	}

	country := toCountry(raw[0])
	c.cache.SetDefault(key, country)
	return &country, nil
}

func toCountry(e restCountriesEntry) Country {
	currencies := make([]string, 0, len(e.Currencies))
	for code := range e.Currencies {
		currencies = append(currencies, strings.ToUpper(code))
	}
	sort.Strings(currencies)

	languages := make([]string, 0, len(e.Languages))
	for _, lang := range e.Languages {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	capital := ""
	if len(e.Capital) > 0 {
		capital = e.Capital[0]
	}

	return Country{
		Name:       e.Name.Common,
		Code:       e.CCA2,
		Capital:    capital,
		Region:     e.Region,
		Languages:  languages,
		Currencies: currencies,
	}
}
