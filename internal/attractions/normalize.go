package attractions

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/neexbeast/tripplanner/internal/geo"
)

type dedupKey struct {
	name     string
	lat, lon float64
	hasCoord bool
}

// Dedupe drops attractions repeating the same name at the same coordinates
// rounded to 5 decimal places. The first occurrence wins.
func Dedupe(items []Attraction) []Attraction {
	seen := make(map[dedupKey]struct{}, len(items))
	out := make([]Attraction, 0, len(items))
	for _, a := range items {
		k := dedupKey{name: a.Name}
		if a.Coordinates != nil {
			k.lat = geo.Round(a.Coordinates.Latitude, 5)
			k.lon = geo.Round(a.Coordinates.Longitude, 5)
			k.hasCoord = true
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// SortByDistance fills DistanceKM from center where coordinates are known,
// then stable-sorts ascending with unknown distances last.
func SortByDistance(items []Attraction, center *geo.Coordinates) {
	if center != nil {
		for i := range items {
			if items[i].Coordinates == nil {
				continue
			}
			d := geo.Round(geo.DistanceKM(*center, *items[i].Coordinates), 1)
			items[i].DistanceKM = &d
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DistanceKM, items[j].DistanceKM
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// finalize dedupes, orders and caps items. The result is never nil.
func finalize(items []Attraction, center *geo.Coordinates, limit int) []Attraction {
	items = Dedupe(items)
	SortByDistance(items, center)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// humanize turns a provider code such as "amusement_park" into "Amusement Park".
func humanize(code string) string {
	s := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(code)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, have := range dst {
			if have == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
