package match

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"reelshelf/internal/domain"
	"reelshelf/internal/normalize"
)

// Confidence weights. Year proximity dominates so that a year-exact
// candidate beats a textually identical one from another release
// ("Fargo" 1996 vs 2014); popularity and votes only break ties.
const (
	yearExactBonus  = 3.0
	yearOffOneBonus = 1.5
	yearOffTwoBonus = 0.5
	yearGapPenalty  = -1.0

	titleExactBonus      = 3.0
	titlePrefixBonus     = 2.0
	titleSubstringBonus  = 1.0
	titleNearBonus       = 0.5
	titleMismatchPenalty = -1.0

	popularityCap = 0.5
	voteCap       = 0.5

	// Acceptance bar is stricter when a target year was available: more
	// disambiguating information means a low score is a worse sign.
	acceptWithYear    = 3.5
	acceptWithoutYear = 1.5

	// Levenshtein distance still counted as textual overlap
	nearMatchMaxRank = 2
)

// scoreCandidate computes the confidence score of one candidate against the
// query title and optional target year.
func scoreCandidate(c domain.MovieMatch, query string, year int) float64 {
	score := titleScore(c, query)

	if year > 0 {
		switch gap := absInt(c.Year - year); {
		case c.Year == 0:
			score += yearGapPenalty
		case gap == 0:
			score += yearExactBonus
		case gap == 1:
			score += yearOffOneBonus
		case gap == 2:
			score += yearOffTwoBonus
		default:
			score += yearGapPenalty
		}
	}

	score += capped(c.Popularity/100, popularityCap)
	score += capped(float64(c.VoteCount)/2000, voteCap)
	return score
}

// titleScore compares against both the localized and the original title and
// keeps the better outcome.
func titleScore(c domain.MovieMatch, query string) float64 {
	q := normalize.Fold(query)
	best := titleMismatchPenalty
	for _, t := range []string{c.Title, c.OriginalTitle} {
		if t == "" {
			continue
		}
		if s := compareTitles(q, normalize.Fold(t)); s > best {
			best = s
		}
	}
	return best
}

func compareTitles(query, title string) float64 {
	switch {
	case query == title:
		return titleExactBonus
	case strings.HasPrefix(title, query) || strings.HasPrefix(query, title):
		return titlePrefixBonus
	case strings.Contains(title, query) || strings.Contains(query, title):
		return titleSubstringBonus
	}
	if rank := fuzzy.RankMatchNormalizedFold(query, title); rank >= 0 && rank <= nearMatchMaxRank {
		return titleNearBonus
	}
	return titleMismatchPenalty
}

// selectBest returns the top-scored candidate, or nil when even the best
// falls under the acceptance threshold. A rejection under the year-supplied
// bar is rescored once without the year constraint before giving up.
func selectBest(candidates []domain.MovieMatch, query string, year int) *domain.MovieMatch {
	best, score := top(candidates, query, year)
	if best == nil {
		return nil
	}

	threshold := acceptWithoutYear
	if year > 0 {
		threshold = acceptWithYear
	}
	if score >= threshold {
		return best
	}

	if year > 0 {
		if best, score = top(candidates, query, 0); best != nil && score >= acceptWithoutYear {
			return best
		}
	}
	return nil
}

func top(candidates []domain.MovieMatch, query string, year int) (*domain.MovieMatch, float64) {
	var best *domain.MovieMatch
	bestScore := 0.0
	for i := range candidates {
		if s := scoreCandidate(candidates[i], query, year); best == nil || s > bestScore {
			best = &candidates[i]
			bestScore = s
		}
	}
	return best, bestScore
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func capped(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
