package geocoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	t.Run("StripsPostalCodeTokens", func(t *testing.T) {
		got := NormalizeQuery("Rua Augusta, 100, CEP 01310-100, Brasil")
		assert.NotContains(t, got, "CEP")
		assert.NotContains(t, got, "01310")
	})

	t.Run("ExpandsStateAbbreviations", func(t *testing.T) {
		assert.Equal(t, "Sao Paulo Sao Paulo", NormalizeQuery("São Paulo - SP"))
		assert.Equal(t, "Rio de Janeiro Rio de Janeiro", NormalizeQuery("Rio de Janeiro - RJ"))
	})

	t.Run("ReplacesPunctuationAndCollapses", func(t *testing.T) {
		assert.Equal(t, "Rua Augusta 100 Bela Vista", NormalizeQuery("Rua Augusta, 100;  Bela-Vista"))
	})

	t.Run("BlankInput", func(t *testing.T) {
		assert.Equal(t, "", NormalizeQuery("  ,;  "))
	})
}

func TestStripNeighborhoodSegment(t *testing.T) {
	t.Run("RemovesThirdSegment", func(t *testing.T) {
		got, ok := StripNeighborhoodSegment("Rua Augusta, 100, Bela Vista, São Paulo - SP, CEP 01310100, Brasil")
		assert.True(t, ok)
		assert.Equal(t, "Rua Augusta, 100, São Paulo - SP, CEP 01310100, Brasil", got)
	})

	t.Run("TooFewSegments", func(t *testing.T) {
		_, ok := StripNeighborhoodSegment("Rua Augusta, 100")
		assert.False(t, ok)
	})

	t.Run("SkipsCityStateSegment", func(t *testing.T) {
		_, ok := StripNeighborhoodSegment("Rua Augusta, 100, São Paulo - SP, Brasil")
		assert.False(t, ok)
	})

	t.Run("SkipsCountryAndPostalSegments", func(t *testing.T) {
		_, ok := StripNeighborhoodSegment("Rua Augusta, 100, Brasil")
		assert.False(t, ok)

		_, ok = StripNeighborhoodSegment("Rua Augusta, 100, CEP 01310100, Brasil")
		assert.False(t, ok)
	})
}
