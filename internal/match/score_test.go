package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelshelf/internal/domain"
)

func TestCompareTitles(t *testing.T) {
	tests := []struct {
		name  string
		query string
		title string
		want  float64
	}{
		{"exact", "fargo", "fargo", titleExactBonus},
		{"prefix", "fargo", "fargo season one", titlePrefixBonus},
		{"query prefixed by title", "the matrix reloaded", "the matrix", titlePrefixBonus},
		{"substring", "matrix", "the matrix", titleSubstringBonus},
		{"near miss", "solaris", "solyaris", titleNearBonus},
		{"unrelated", "solaris", "fargo", titleMismatchPenalty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareTitles(tt.query, tt.title))
		})
	}
}

func TestScoreCandidateYearDominates(t *testing.T) {
	exact := scoreCandidate(domain.MovieMatch{Title: "Fargo", Year: 1996}, "Fargo", 1996)
	offOne := scoreCandidate(domain.MovieMatch{Title: "Fargo", Year: 1997}, "Fargo", 1996)
	offTwo := scoreCandidate(domain.MovieMatch{Title: "Fargo", Year: 1998}, "Fargo", 1996)
	far := scoreCandidate(domain.MovieMatch{Title: "Fargo", Year: 2014}, "Fargo", 1996)
	unknown := scoreCandidate(domain.MovieMatch{Title: "Fargo"}, "Fargo", 1996)

	assert.Greater(t, exact, offOne)
	assert.Greater(t, offOne, offTwo)
	assert.Greater(t, offTwo, far)
	assert.Equal(t, far, unknown, "a missing year is penalized like a distant one")
}

func TestScoreCandidatePopularityIsCapped(t *testing.T) {
	modest := scoreCandidate(domain.MovieMatch{Title: "Fargo", Year: 1996, Popularity: 20, VoteCount: 400}, "Fargo", 1996)
	massive := scoreCandidate(domain.MovieMatch{Title: "Fargo", Year: 1996, Popularity: 9000, VoteCount: 900000}, "Fargo", 1996)

	assert.InDelta(t, modest+0.6, massive, 0.001, "popularity and votes can only add their caps")
}

func TestSelectBestRescoresWithoutYear(t *testing.T) {
	// Good title, wrong year: rejected under the with-year bar but rescued
	// by the year-free rescore.
	candidates := []domain.MovieMatch{{ID: 1, Title: "Solaris", Year: 1972}}
	got := selectBest(candidates, "Solaris", 2002)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
}

func TestSelectBestRejectsWeakCandidates(t *testing.T) {
	candidates := []domain.MovieMatch{{ID: 1, Title: "Something Else Entirely", Year: 1980}}
	assert.Nil(t, selectBest(candidates, "Solaris", 2002))
	assert.Nil(t, selectBest(candidates, "Solaris", 0))
}

func TestSelectBestEmptyInput(t *testing.T) {
	assert.Nil(t, selectBest(nil, "Solaris", 0))
}
