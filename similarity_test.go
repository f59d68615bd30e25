package vorlage_test

import (
	"testing"

	"github.com/gutachter/vorlage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical strings score one", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 1.0, vorlage.LevenshteinSimilarity("anamnese", "anamnese"))
	})

	t.Run("empty strings score zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0.0, vorlage.LevenshteinSimilarity("", ""))
	})

	t.Run("one empty string scores zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0.0, vorlage.LevenshteinSimilarity("anamnese", ""))
	})

	t.Run("single substitution", func(t *testing.T) {
		t.Parallel()

		// One edit over eight runes.
		assert.InDelta(t, 0.875, vorlage.LevenshteinSimilarity("anamnese", "anamnose"), 1e-9)
	})

	t.Run("handles umlauts as single runes", func(t *testing.T) {
		t.Parallel()

		// "beschwerden" vs itself with one umlaut swap is one edit.
		sim := vorlage.LevenshteinSimilarity("rückkehr", "ruckkehr")
		assert.InDelta(t, 0.875, sim, 1e-9)
	})

	t.Run("heading variants score above anchor threshold", func(t *testing.T) {
		t.Parallel()

		sim := vorlage.LevenshteinSimilarity("zusammenfassung und beurteilung", "zusammenfassung und beurteilung:")
		assert.Greater(t, sim, 0.88)
	})
}

func TestTokenJaccardSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical token sets score one", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 1.0, vorlage.TokenJaccardSimilarity("aktuelle beschwerden", "beschwerden aktuelle"))
	})

	t.Run("disjoint token sets score zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0.0, vorlage.TokenJaccardSimilarity("anamnese", "diagnosen"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		t.Parallel()

		// Shared "und" of three distinct tokens.
		sim := vorlage.TokenJaccardSimilarity("befund und", "und diagnose")
		assert.InDelta(t, 1.0/3.0, sim, 1e-9)
	})
}

func TestSimilarityByName(t *testing.T) {
	t.Parallel()

	t.Run("resolves known metrics", func(t *testing.T) {
		t.Parallel()

		leven := vorlage.SimilarityByName(vorlage.SimilarityLevenshtein)
		require.NotNil(t, leven)
		assert.Equal(t, 1.0, leven("a", "a"))

		jaccard := vorlage.SimilarityByName(vorlage.SimilarityTokenJaccard)
		require.NotNil(t, jaccard)
	})

	t.Run("returns nil for unknown metric", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, vorlage.SimilarityByName("cosine"))
	})
}
