// Package match reconciles parsed media items with external metadata:
// fuzzy title search against the providers, scored candidate selection, and
// write-through to the persistent caches. Matchers never return errors
// across their public contract; every failure mode degrades to nil.
package match

import (
	"context"
	"fmt"
	"log/slog"

	"reelshelf/internal/cache"
	"reelshelf/internal/domain"
	"reelshelf/internal/normalize"
	"reelshelf/internal/provider/tmdb"
)

const (
	languageRussian  = "ru-RU"
	languageFallback = "en-US"
)

// MovieSearcher is the provider surface the movie matcher needs
type MovieSearcher interface {
	Search(ctx context.Context, query string, opts tmdb.SearchOptions) ([]domain.MovieMatch, error)
	Details(ctx context.Context, id int64, series bool) (*domain.MovieDetails, error)
	WatchProviders(ctx context.Context, id int64, series bool, region string) (*domain.WatchProviders, error)
}

// MovieMatcher resolves a title (+ optional year) to at most one MovieMatch
type MovieMatcher struct {
	provider  MovieSearcher
	searches  *cache.Store[*domain.MovieMatch]
	details   *cache.Store[*domain.MovieDetails]
	providers *cache.Store[*domain.WatchProviders]
	logger    *slog.Logger
}

// NewMovieMatcher creates a movie matcher over the given provider and caches
func NewMovieMatcher(
	provider MovieSearcher,
	searches *cache.Store[*domain.MovieMatch],
	details *cache.Store[*domain.MovieDetails],
	providers *cache.Store[*domain.WatchProviders],
	logger *slog.Logger,
) *MovieMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MovieMatcher{
		provider:  provider,
		searches:  searches,
		details:   details,
		providers: providers,
		logger:    logger,
	}
}

// Search resolves title/year/seriesHint to a match or a confirmed nil. Both
// outcomes are cached; a cached nil is not retried until cache expiry. A
// transport failure returns nil without caching, so the next session may
// try again.
func (m *MovieMatcher) Search(ctx context.Context, title string, year int, seriesHint bool) *domain.MovieMatch {
	clean := normalize.Clean(title)
	if clean == "" {
		return nil
	}

	key := fmt.Sprintf("%s|%d|%t", normalize.Fold(clean), year, seriesHint)
	if cached, ok := m.searches.Get(key); ok {
		return cached
	}

	candidates, query, err := m.searchLadder(ctx, clean, year, seriesHint)
	if err != nil {
		m.logger.Warn("movie search degraded to nil", "title", clean, "error", err)
		return nil
	}
	if len(candidates) == 0 {
		m.logger.Debug("no movie candidates", "title", clean, "year", year)
		m.searches.Set(key, nil)
		return nil
	}

	best := selectBest(candidates, query, year)
	if best == nil {
		m.logger.Info("movie candidates rejected on confidence", "title", clean, "year", year, "candidates", len(candidates))
	}
	m.searches.Set(key, best)
	return best
}

// searchLadder runs the multi-stage query fallback: apparent source
// language first, then the fallback language, then — if a dictionary
// translation was used — once more with the original native title.
func (m *MovieMatcher) searchLadder(ctx context.Context, clean string, year int, series bool) ([]domain.MovieMatch, string, error) {
	query, translated := normalize.Translate(clean)

	lang := languageFallback
	if normalize.HasCyrillic(query) {
		lang = languageRussian
	}

	candidates, err := m.provider.Search(ctx, query, tmdb.SearchOptions{Year: year, Language: lang, Series: series})
	if err != nil {
		return nil, query, err
	}
	if len(candidates) > 0 {
		return candidates, query, nil
	}

	if lang != languageFallback {
		candidates, err = m.provider.Search(ctx, query, tmdb.SearchOptions{Year: year, Language: languageFallback, Series: series})
		if err != nil {
			return nil, query, err
		}
		if len(candidates) > 0 {
			return candidates, query, nil
		}
	}

	if translated {
		candidates, err = m.provider.Search(ctx, clean, tmdb.SearchOptions{Year: year, Language: languageRussian, Series: series})
		if err != nil {
			return nil, clean, err
		}
		return candidates, clean, nil
	}

	return nil, query, nil
}

// Details returns the expanded record for a matched id, cached by external
// id independently of the primary match.
func (m *MovieMatcher) Details(ctx context.Context, id int64, series bool) *domain.MovieDetails {
	key := detailsKey(id, series)
	if cached, ok := m.details.Get(key); ok {
		return cached
	}

	d, err := m.provider.Details(ctx, id, series)
	if err != nil {
		m.logger.Warn("details lookup failed", "id", id, "error", err)
		return nil
	}
	m.details.Set(key, d)
	return d
}

// WatchProviders returns streaming availability for a matched id and region
func (m *MovieMatcher) WatchProviders(ctx context.Context, id int64, series bool, region string) *domain.WatchProviders {
	key := fmt.Sprintf("%s|%s", detailsKey(id, series), region)
	if cached, ok := m.providers.Get(key); ok {
		return cached
	}

	wp, err := m.provider.WatchProviders(ctx, id, series, region)
	if err != nil {
		m.logger.Warn("watch providers lookup failed", "id", id, "error", err)
		return nil
	}
	m.providers.Set(key, wp)
	return wp
}

// Flush forces the pending cache writes out
func (m *MovieMatcher) Flush() {
	m.searches.Flush()
	m.details.Flush()
	m.providers.Flush()
}

func detailsKey(id int64, series bool) string {
	if series {
		return fmt.Sprintf("tv:%d", id)
	}
	return fmt.Sprintf("movie:%d", id)
}
