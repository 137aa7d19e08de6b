package matching

import (
	"testing"

	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendors(names ...string) []models.Vendor {
	out := make([]models.Vendor, 0, len(names))
	for i, name := range names {
		out = append(out, models.Vendor{VendorID: "V-" + string(rune('A'+i)), Name: name})
	}
	return out
}

func TestJaroWinkler(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("denso", "denso"))
	assert.Equal(t, 0.0, JaroWinkler("", "denso"))

	// single-character typo stays close to 1
	assert.Greater(t, JaroWinkler("bosh", "bosch"), 0.9)

	// unrelated names score low
	assert.Less(t, JaroWinkler("denso", "bosch"), 0.5)

	// shared prefix is boosted over plain Jaro
	assert.Greater(t, JaroWinkler("denso corp", "denso corporation"), Jaro("denso corp", "denso corporation"))
}

func TestMatcher_Rank(t *testing.T) {
	m := NewMatcher(0.75)

	t.Run("drops candidates below the floor", func(t *testing.T) {
		matches := m.Rank("denso", vendors("Denso Corporation", "Bosch", "Akebono"))
		require.Len(t, matches, 1)
		assert.Equal(t, "Denso Corporation", matches[0].Vendor.Name)
		assert.Greater(t, matches[0].Score, 0.8)
	})

	t.Run("best candidate first", func(t *testing.T) {
		matches := m.Rank("denso corp", vendors("Denso", "Denso Corporation"))
		require.Len(t, matches, 2)
		assert.Equal(t, "Denso Corporation", matches[0].Vendor.Name)
		assert.Equal(t, "Denso", matches[1].Vendor.Name)
		assert.Greater(t, matches[0].Score, matches[1].Score)
	})

	t.Run("tolerates typos", func(t *testing.T) {
		matches := m.Rank("densso corporation", vendors("Denso Corporation"))
		require.Len(t, matches, 1)
		assert.Greater(t, matches[0].Score, 0.9)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		matches := m.Rank("  DENSO CORPORATION ", vendors("Denso Corporation"))
		require.Len(t, matches, 1)
		assert.Equal(t, 1.0, matches[0].Score)
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		assert.Empty(t, m.Rank("  ", vendors("Denso Corporation")))
	})
}

func TestMatcher_Best(t *testing.T) {
	m := NewMatcher(0)

	best, ok := m.Best(nil)
	assert.False(t, ok)
	assert.Empty(t, best.Vendor.Name)

	matches := m.Rank("bosch", vendors("Bosch", "Bosch Mobility"))
	best, ok = m.Best(matches)
	require.True(t, ok)
	assert.Equal(t, "Bosch", best.Vendor.Name)
}

func TestNewMatcher_FloorDefaults(t *testing.T) {
	assert.Equal(t, DefaultMinScore, NewMatcher(0).minScore)
	assert.Equal(t, DefaultMinScore, NewMatcher(1.5).minScore)
	assert.Equal(t, 0.9, NewMatcher(0.9).minScore)
}
