package match

import (
	"context"
	"log/slog"

	"reelshelf/internal/cache"
	"reelshelf/internal/domain"
	"reelshelf/internal/normalize"
)

// BookSearcher is the primary book-metadata provider surface
type BookSearcher interface {
	Search(ctx context.Context, title, author string) ([]domain.BookMatch, error)
}

// CoverSearcher is the secondary, cover-only fallback provider surface
type CoverSearcher interface {
	Search(ctx context.Context, title, author string) (*domain.BookMatch, error)
}

// BookMatcher resolves a title (+ optional author) to at most one
// BookMatch, merging the fallback provider's cover onto the primary result
// when the primary has none.
type BookMatcher struct {
	primary  BookSearcher
	fallback CoverSearcher
	searches *cache.Store[*domain.BookMatch]
	logger   *slog.Logger
}

// NewBookMatcher creates a book matcher over the given providers and cache
func NewBookMatcher(primary BookSearcher, fallback CoverSearcher, searches *cache.Store[*domain.BookMatch], logger *slog.Logger) *BookMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookMatcher{
		primary:  primary,
		fallback: fallback,
		searches: searches,
		logger:   logger,
	}
}

// Search resolves title/author to a match or a confirmed nil, with the same
// caching and degradation rules as the movie matcher.
func (m *BookMatcher) Search(ctx context.Context, title, author string) *domain.BookMatch {
	clean := normalize.Clean(title)
	if clean == "" {
		return nil
	}
	query, _ := normalize.Translate(clean)

	key := normalize.Fold(query) + "|" + normalize.Fold(author)
	if cached, ok := m.searches.Get(key); ok {
		return cached
	}

	result, err := m.searchPrimary(ctx, query, author)
	if err != nil {
		m.logger.Warn("book search degraded to nil", "title", query, "error", err)
		return nil
	}

	// The fallback provider only exists to supply a cover; its errors
	// never discard a primary result.
	if !result.HasCover() {
		if merged := m.mergeFallback(ctx, query, author, result); merged != nil {
			result = merged
		}
	}

	if result == nil {
		m.logger.Debug("no book match", "title", query, "author", author)
	}
	m.searches.Set(key, result)
	return result
}

// searchPrimary queries title+author first, then title-only when that
// produced nothing with a cover image. A covered candidate wins over an
// uncovered one even when found second.
func (m *BookMatcher) searchPrimary(ctx context.Context, query, author string) (*domain.BookMatch, error) {
	best, err := m.bestPrimary(ctx, query, author)
	if err != nil {
		return nil, err
	}
	if best.HasCover() || author == "" {
		return best, nil
	}

	retry, err := m.bestPrimary(ctx, query, "")
	if err != nil {
		// The first query already succeeded; keep its result.
		return best, nil
	}
	if retry.HasCover() {
		return retry, nil
	}
	if best == nil {
		return retry, nil
	}
	return best, nil
}

func (m *BookMatcher) bestPrimary(ctx context.Context, query, author string) (*domain.BookMatch, error) {
	candidates, err := m.primary.Search(ctx, query, author)
	if err != nil {
		return nil, err
	}

	q := normalize.Fold(query)
	var best *domain.BookMatch
	bestScore := 0.0
	for i := range candidates {
		score := compareTitles(q, normalize.Fold(candidates[i].Title))
		if candidates[i].HasCover() {
			score += 2.0
		}
		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	if best != nil && bestScore < 0 {
		// Nothing textually related; treat as no match.
		return nil, nil
	}
	return best, nil
}

// mergeFallback consults the cover provider and either attaches the cover
// (and missing page count) onto the primary result or constructs a minimal
// result when no primary data existed.
func (m *BookMatcher) mergeFallback(ctx context.Context, query, author string, primary *domain.BookMatch) *domain.BookMatch {
	cover, err := m.fallback.Search(ctx, query, author)
	if err != nil {
		m.logger.Warn("cover fallback failed", "title", query, "error", err)
		return nil
	}
	if !cover.HasCover() {
		return nil
	}
	if primary == nil {
		return cover
	}

	merged := *primary
	merged.CoverURL = cover.CoverURL
	if merged.Pages == 0 {
		merged.Pages = cover.Pages
	}
	merged.Source = domain.BookSourceMerged
	return &merged
}

// Flush forces the pending cache writes out
func (m *BookMatcher) Flush() {
	m.searches.Flush()
}
