package catalog

import (
	"math/rand/v2"
	"strings"

	"github.com/neexbeast/tripplanner/internal/cost"
)

const highCostTier = "high"

// Candidates returns destinations carrying at least one of tags. For the
// Economy style, high cost-tier destinations are left out.
func (c *Catalog) Candidates(tags []string, style cost.Style) []Destination {
	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			wanted[t] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var out []Destination
	for _, d := range c.destinations {
		if style == cost.Economy && strings.EqualFold(d.CostTier, highCostTier) {
			continue
		}
		for _, t := range d.Tags {
			if _, ok := wanted[strings.ToLower(t)]; ok {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Recommend picks one random candidate for tags and style. rnd may be nil.
func (c *Catalog) Recommend(tags []string, style cost.Style, rnd *rand.Rand) (Destination, bool) {
	candidates := c.Candidates(tags, style)
	if len(candidates) == 0 {
		return Destination{}, false
	}

	var i int
	if rnd != nil {
		i = rnd.IntN(len(candidates))
	} else {
		i = rand.IntN(len(candidates))
	}
	return candidates[i], true
}
