package geocode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/tripplanner/internal/geocode"
)

func TestVariants_AdministrativeSuffix(t *testing.T) {
	got := geocode.Variants("Łódź, Województwo łódzkie, Polska")

	assert.Equal(t, []string{
		"Łódź, Województwo łódzkie, Polska",
		"Łódź",
		"Łódź, łódzkie",
		"Lodz",
	}, got)
}

func TestVariants_PlainName(t *testing.T) {
	assert.Equal(t, []string{"Paris"}, geocode.Variants("  Paris "))
}

func TestVariants_CollapsesWhitespace(t *testing.T) {
	got := geocode.Variants("New   York,  NY")
	assert.Equal(t, "New York, NY", got[0])
	assert.Equal(t, "New York", got[1])
}

func TestVariants_AdminWordsAreCaseAndAccentInsensitive(t *testing.T) {
	got := geocode.Variants("Kraków, WOJEWODZTWO małopolskie, POLAND")
	assert.Contains(t, got, "Kraków, małopolskie")
	assert.Equal(t, "Krakow", got[len(got)-1])
}

func TestVariants_Blank(t *testing.T) {
	assert.Empty(t, geocode.Variants(""))
	assert.Empty(t, geocode.Variants("   "))
}

func TestVariants_NoDuplicates(t *testing.T) {
	got := geocode.Variants("Zakopane, Zakopane")
	seen := map[string]bool{}
	for _, v := range got {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}
