package matching

import (
	"sort"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/sequoia/pkg/models"
)

// DefaultMinScore is the similarity floor for search candidates
const DefaultMinScore = 0.75

// Matcher ranks registered vendors against a free-text name query so the
// admin search tolerates typos and partial names.
type Matcher struct {
	minScore float64
}

// NewMatcher creates a Matcher with the given similarity floor. Scores
// range 0.0 to 1.0; candidates below the floor are dropped.
func NewMatcher(minScore float64) *Matcher {
	if minScore <= 0 || minScore > 1 {
		minScore = DefaultMinScore
	}
	return &Matcher{minScore: minScore}
}

// Rank scores every vendor name against the query and returns the
// candidates at or above the floor, best first. Ties keep name order so
// repeated searches return stable results.
func (m *Matcher) Rank(query string, vendors []models.Vendor) []models.VendorMatch {
	query = normalize(query)
	if query == "" {
		return nil
	}

	scored := ectolinq.Map(vendors, func(v models.Vendor) models.VendorMatch {
		return models.VendorMatch{
			Vendor: v,
			Score:  JaroWinkler(query, normalize(v.Name)),
		}
	})

	matches := make([]models.VendorMatch, 0, len(scored))
	for _, match := range scored {
		if match.Score >= m.minScore {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Vendor.Name < matches[j].Vendor.Name
	})

	return matches
}

// Best returns the top-ranked candidate from an already ranked list
func (m *Matcher) Best(matches []models.VendorMatch) (models.VendorMatch, bool) {
	if len(matches) == 0 {
		return models.VendorMatch{}, false
	}
	return ectolinq.First(matches), true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JaroWinkler calculates the Jaro-Winkler similarity between two strings
// Returns a value between 0.0 (no similarity) and 1.0 (exact match)
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}

	jaro := Jaro(a, b)

	// Winkler modification: boost for common prefix
	prefixLen := 0
	maxPrefix := 4
	for i := 0; i < len(a) && i < len(b) && i < maxPrefix; i++ {
		if a[i] == b[i] {
			prefixLen++
		} else {
			break
		}
	}

	// Winkler scaling factor is typically 0.1
	scalingFactor := 0.1
	return jaro + float64(prefixLen)*scalingFactor*(1.0-jaro)
}

// Jaro calculates the Jaro similarity between two strings
func Jaro(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	// Maximum distance for character matching
	matchDist := max(len(a), len(b))/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatches := make([]bool, len(a))
	bMatches := make([]bool, len(b))

	matches := 0
	transpositions := 0

	// Find matches
	for i := 0; i < len(a); i++ {
		start := max(0, i-matchDist)
		end := min(len(b), i+matchDist+1)

		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions
	k := 0
	for i := 0; i < len(a); i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2

	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}
