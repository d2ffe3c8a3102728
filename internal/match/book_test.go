package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelshelf/internal/cache"
	"reelshelf/internal/domain"
)

type fakeBookProvider struct {
	calls   int
	results []domain.BookMatch
	err     error
}

func (f *fakeBookProvider) Search(_ context.Context, _, _ string) ([]domain.BookMatch, error) {
	f.calls++
	return f.results, f.err
}

type fakeCoverProvider struct {
	calls  int
	result *domain.BookMatch
	err    error
}

func (f *fakeCoverProvider) Search(_ context.Context, _, _ string) (*domain.BookMatch, error) {
	f.calls++
	return f.result, f.err
}

func newTestBookMatcher(primary *fakeBookProvider, fallback *fakeCoverProvider) *BookMatcher {
	return NewBookMatcher(primary, fallback, cache.NewStore[*domain.BookMatch](nil, "books", 1, nil), nil)
}

func TestBookSearchCoveredPrimaryNeedsNoFallback(t *testing.T) {
	primary := &fakeBookProvider{results: []domain.BookMatch{
		{ID: "OL1", Title: "Dune", Author: "Frank Herbert", CoverURL: "https://covers/1-M.jpg", Source: domain.BookSourceOpenLibrary},
	}}
	fallback := &fakeCoverProvider{}
	m := newTestBookMatcher(primary, fallback)

	got := m.Search(context.Background(), "Dune", "Frank Herbert")
	require.NotNil(t, got)
	assert.Equal(t, domain.BookSourceOpenLibrary, got.Source)
	assert.Zero(t, fallback.calls, "a covered primary result must not trigger the fallback")
}

func TestBookSearchMergesFallbackCover(t *testing.T) {
	primary := &fakeBookProvider{results: []domain.BookMatch{
		{ID: "OL1", Title: "Dune", Author: "Frank Herbert", Rating: 4.2, Source: domain.BookSourceOpenLibrary},
	}}
	fallback := &fakeCoverProvider{result: &domain.BookMatch{
		Title: "Dune", CoverURL: "https://books/cover.jpg", Pages: 704, Source: domain.BookSourceGoogleBooks,
	}}
	m := newTestBookMatcher(primary, fallback)

	got := m.Search(context.Background(), "Dune", "")
	require.NotNil(t, got)
	assert.Equal(t, domain.BookSourceMerged, got.Source)
	assert.Equal(t, "https://books/cover.jpg", got.CoverURL)
	assert.InDelta(t, 4.2, got.Rating, 0.001, "primary metadata survives the merge")
	assert.Equal(t, 704, got.Pages, "missing page count is filled from the fallback")
}

func TestBookSearchFallbackOnlyResult(t *testing.T) {
	primary := &fakeBookProvider{}
	fallback := &fakeCoverProvider{result: &domain.BookMatch{
		Title: "Dune", CoverURL: "https://books/cover.jpg", Source: domain.BookSourceGoogleBooks,
	}}
	m := newTestBookMatcher(primary, fallback)

	got := m.Search(context.Background(), "Dune", "")
	require.NotNil(t, got)
	assert.Equal(t, domain.BookSourceGoogleBooks, got.Source)
}

func TestBookSearchFallbackErrorKeepsPrimary(t *testing.T) {
	primary := &fakeBookProvider{results: []domain.BookMatch{
		{ID: "OL1", Title: "Dune", Source: domain.BookSourceOpenLibrary},
	}}
	fallback := &fakeCoverProvider{err: errors.New("quota exceeded")}
	m := newTestBookMatcher(primary, fallback)

	got := m.Search(context.Background(), "Dune", "")
	require.NotNil(t, got, "a fallback failure must never discard the primary result")
	assert.Equal(t, domain.BookSourceOpenLibrary, got.Source)
	assert.Empty(t, got.CoverURL)
}

func TestBookSearchConfirmedNilCached(t *testing.T) {
	primary := &fakeBookProvider{}
	fallback := &fakeCoverProvider{}
	m := newTestBookMatcher(primary, fallback)

	assert.Nil(t, m.Search(context.Background(), "Unknown Book", ""))
	primaryCalls, fallbackCalls := primary.calls, fallback.calls

	assert.Nil(t, m.Search(context.Background(), "Unknown Book", ""))
	assert.Equal(t, primaryCalls, primary.calls)
	assert.Equal(t, fallbackCalls, fallback.calls)
}

func TestBookSearchPrimaryErrorNotCached(t *testing.T) {
	primary := &fakeBookProvider{err: errors.New("offline")}
	fallback := &fakeCoverProvider{}
	m := newTestBookMatcher(primary, fallback)

	assert.Nil(t, m.Search(context.Background(), "Dune", ""))

	primary.err = nil
	primary.results = []domain.BookMatch{{ID: "OL1", Title: "Dune", CoverURL: "https://covers/1-M.jpg"}}
	got := m.Search(context.Background(), "Dune", "")
	require.NotNil(t, got, "a transport failure must stay retryable")
}

func TestBookSearchPrefersCoveredCandidate(t *testing.T) {
	primary := &fakeBookProvider{results: []domain.BookMatch{
		{ID: "OL1", Title: "Dune"},
		{ID: "OL2", Title: "Dune", CoverURL: "https://covers/2-M.jpg"},
	}}
	m := newTestBookMatcher(primary, &fakeCoverProvider{})

	got := m.Search(context.Background(), "Dune", "")
	require.NotNil(t, got)
	assert.Equal(t, "OL2", got.ID)
}
