package geocode

import (
	"strings"

	"github.com/neexbeast/tripplanner/internal/textnorm"
)

// Administrative and country words dropped from geocoding queries, stored in
// textnorm.Fold form. Geocoders often miss "Łódź, Województwo łódzkie,
// Polska" but find "Łódź".
var adminWords = map[string]struct{}{
	"wojewodztwo":  {},
	"woj":          {},
	"powiat":       {},
	"gmina":        {},
	"miasto":       {},
	"region":       {},
	"polska":       {},
	"poland":       {},
	"province":     {},
	"provincia":    {},
	"prowincja":    {},
	"state":        {},
	"county":       {},
	"oblast":       {},
	"district":     {},
	"departement":  {},
	"department":   {},
	"prefecture":   {},
	"land":         {},
	"bundesland":   {},
	"country":      {},
	"municipality": {},
	"city":         {},
}

// Variants returns the query strings tried, in order, for raw:
//
//  1. the whitespace-normalized input,
//  2. the part before the first comma,
//  3. the input with administrative words removed from every segment,
//  4. the first segment with administrative words removed,
//  5. that segment transliterated to ASCII.
//
// Empty and duplicate variants are skipped, so the result is empty only for
// blank input.
func Variants(raw string) []string {
	s := textnorm.CollapseSpaces(raw)
	if s == "" {
		return nil
	}

	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		for _, seen := range out {
			if seen == v {
				return
			}
		}
		out = append(out, v)
	}

	add(s)

	first, _, _ := strings.Cut(s, ",")
	add(first)

	var segments []string
	for _, seg := range strings.Split(s, ",") {
		if cleaned := stripAdminWords(seg); cleaned != "" {
			segments = append(segments, cleaned)
		}
	}
	add(strings.Join(segments, ", "))

	firstClean := stripAdminWords(first)
	add(firstClean)
	add(textnorm.ToASCII(firstClean))

	return out
}

func stripAdminWords(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		key := textnorm.Fold(strings.Trim(w, ".()"))
		if _, ok := adminWords[key]; ok {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
