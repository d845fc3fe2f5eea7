// Package catalog holds the curated destination list, matches free-text city
// input against it and recommends destinations by vibe tags.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/neexbeast/tripplanner/internal/textnorm"
)

//go:embed destinations.yaml
var defaultYAML []byte

const (
	// DefaultThreshold is the minimum similarity (0-100) for a catalog match.
	DefaultThreshold = 75

	// DefaultMultiplier applies to cities that are not in the catalog.
	DefaultMultiplier = 1.2
)

// Destination is a single curated city.
type Destination struct {
	Name           string   `yaml:"name" json:"name"`
	Country        string   `yaml:"country" json:"country"`
	Currency       string   `yaml:"currency" json:"currency"`
	CostMultiplier float64  `yaml:"cost_multiplier" json:"cost_multiplier"`
	CostTier       string   `yaml:"cost_tier" json:"cost_tier"`
	Tags           []string `yaml:"tags" json:"tags"`
	ImageKeyword   string   `yaml:"image_keyword" json:"image_keyword,omitempty"`
}

type file struct {
	Destinations []Destination `yaml:"destinations"`
}

// Catalog is an immutable list of destinations, safe for concurrent use.
type Catalog struct {
	destinations []Destination
	keys         []string
}

// New builds a Catalog from destinations, keeping their order.
func New(destinations []Destination) *Catalog {
	c := &Catalog{
		destinations: make([]Destination, len(destinations)),
		keys:         make([]string, len(destinations)),
	}
	copy(c.destinations, destinations)
	for i, d := range c.destinations {
		c.keys[i] = sortedKey(d.Name)
	}
	return c
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Load decodes a YAML catalog. Every entry needs a name; a missing or
// non-positive multiplier becomes DefaultMultiplier.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	for i := range f.Destinations {
		d := &f.Destinations[i]
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if d.CostMultiplier <= 0 {
			d.CostMultiplier = DefaultMultiplier
		}
		d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	}

	return New(f.Destinations), nil
}

// Len returns the number of destinations.
func (c *Catalog) Len() int {
	return len(c.destinations)
}

// All returns a copy of every destination.
func (c *Catalog) All() []Destination {
	out := make([]Destination, len(c.destinations))
	copy(out, c.destinations)
	return out
}

// Match returns the best catalog entry for input at DefaultThreshold.
func (c *Catalog) Match(input string) (Destination, bool) {
	d, _, ok := c.MatchWithThreshold(input, DefaultThreshold)
	return d, ok
}

// MatchWithThreshold returns the highest-scoring destination and its score
// when the score reaches threshold. Ties keep catalog order.
func (c *Catalog) MatchWithThreshold(input string, threshold int) (Destination, int, bool) {
	key := sortedKey(input)
	if key == "" || len(c.destinations) == 0 {
		return Destination{}, 0, false
	}

	best, bestScore := -1, -1
	for i, k := range c.keys {
		if s := ratio(key, k); s > bestScore {
			best, bestScore = i, s
		}
	}

	if bestScore < threshold {
		return Destination{}, bestScore, false
	}
	return c.destinations[best], bestScore, true
}

// Similarity scores a against b from 0 to 100, ignoring case, accents,
// punctuation and word order.
func Similarity(a, b string) int {
	return ratio(sortedKey(a), sortedKey(b))
}

func sortedKey(s string) string {
	tokens := textnorm.Tokens(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := levenshtein.ComputeDistance(a, b)
	return int(100*(1-float64(dist)/float64(longest)) + 0.5)
}
