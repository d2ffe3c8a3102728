package service

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"reelshelf/internal/config"
	"reelshelf/internal/domain"
)

// Filters are the current gallery filter selections; the zero value matches
// everything.
type Filters = config.FiltersConfig

// filterIndex implements fuzzy.Source over item titles
type filterIndex struct {
	items  []domain.MediaItem
	titles []string // pre-lowered
}

func (idx *filterIndex) String(i int) string { return idx.titles[i] }
func (idx *filterIndex) Len() int            { return len(idx.items) }

func newFilterIndex(items []domain.MediaItem) *filterIndex {
	idx := &filterIndex{items: items, titles: make([]string, len(items))}
	for i, item := range items {
		idx.titles[i] = strings.ToLower(item.Title)
	}
	return idx
}

// Filtered applies the filter selections to one kind's items. The text
// query is fuzzy-ranked; all other predicates are conjunctive.
func (s *LibraryService) Filtered(kind domain.MediaKind, f Filters) []domain.MediaItem {
	items := s.Items(kind)

	var out []domain.MediaItem
	for _, item := range items {
		if s.matchesFilters(item, f) {
			out = append(out, item)
		}
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		idx := newFilterIndex(out)
		ranked := fuzzy.FindFrom(strings.ToLower(q), idx)
		out = make([]domain.MediaItem, 0, len(ranked))
		for _, r := range ranked {
			out = append(out, idx.items[r.Index])
		}
	}
	return out
}

func (s *LibraryService) matchesFilters(item domain.MediaItem, f Filters) bool {
	if !f.IncludeWatched && item.IsDone() {
		return false
	}
	if f.SeriesOnly && !item.IsSeries {
		return false
	}
	if !yearInRange(item, s.matchYear(item), f.YearMin, f.YearMax) {
		return false
	}
	if f.MinRating > 0 && bestRating(item, s) < f.MinRating {
		return false
	}
	if !s.runtimeInRange(item, f.RuntimeMin, f.RuntimeMax) {
		return false
	}
	return true
}

func (s *LibraryService) matchYear(item domain.MediaItem) int {
	if item.Kind == domain.MediaKindBook {
		if m := s.BookMatchFor(item.ID); m != nil {
			return m.Year
		}
		return 0
	}
	if m := s.MovieMatchFor(item.ID); m != nil {
		return m.Year
	}
	return 0
}

func yearInRange(item domain.MediaItem, matchYear, min, max int) bool {
	year := item.Year
	if year == 0 {
		year = matchYear
	}
	if year == 0 {
		// Unknown year passes any range.
		return true
	}
	if min > 0 && year < min {
		return false
	}
	if max > 0 && year > max {
		return false
	}
	return true
}

// bestRating prefers the provider's community rating and falls back to the
// ratings parsed out of the task text.
func bestRating(item domain.MediaItem, s *LibraryService) float64 {
	best := 0.0
	if item.Kind == domain.MediaKindBook {
		if m := s.BookMatchFor(item.ID); m != nil && m.Rating > best {
			best = m.Rating
		}
		for _, r := range []float64{item.LiveLibRating, item.GoodreadsRating} {
			if r > best {
				best = r
			}
		}
		return best
	}
	if m := s.MovieMatchFor(item.ID); m != nil && m.Rating > best {
		best = m.Rating
	}
	for _, r := range []float64{item.KinopoiskRating, item.IMDBRating} {
		if r > best {
			best = r
		}
	}
	return best
}

// runtimeInRange consults only the provider's runtime field. Items lacking
// it pass every range — inclusive by default, deliberately mirroring the
// observed filter behavior rather than excluding unknowns.
func (s *LibraryService) runtimeInRange(item domain.MediaItem, min, max int) bool {
	if min <= 0 && max <= 0 {
		return true
	}
	if item.Kind == domain.MediaKindBook {
		return true
	}
	m := s.MovieMatchFor(item.ID)
	if m == nil || m.Details == nil || m.Details.Runtime == 0 {
		return true
	}
	runtime := m.Details.Runtime
	if min > 0 && runtime < min {
		return false
	}
	if max > 0 && runtime > max {
		return false
	}
	return true
}
