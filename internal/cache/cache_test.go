package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelshelf/internal/domain"
)

func TestStoreRoundtrip(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	store := NewStore[*domain.MovieMatch](db, "searches", 1, nil)
	store.Set("fargo|1996", &domain.MovieMatch{ID: 275, Title: "Fargo", Year: 1996})
	store.Set("nothing|0", nil)
	store.Flush()

	reloaded := NewStore[*domain.MovieMatch](db, "searches", 1, nil)
	require.Equal(t, 2, reloaded.Len())

	m, ok := reloaded.Get("fargo|1996")
	require.True(t, ok)
	require.NotNil(t, m)
	assert.Equal(t, int64(275), m.ID)
	assert.Equal(t, 1996, m.Year)

	// A cached null survives persistence and is distinguishable from a miss.
	m, ok = reloaded.Get("nothing|0")
	require.True(t, ok)
	assert.Nil(t, m)

	_, ok = reloaded.Get("never-seen")
	assert.False(t, ok)
}

func TestStoreVersionMismatchDiscardsWholeBlob(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	store := NewStore[string](db, "searches", 1, nil)
	store.Set("a", "one")
	store.Set("b", "two")
	store.Flush()

	bumped := NewStore[string](db, "searches", 2, nil)
	assert.Zero(t, bumped.Len(), "version bump must discard every entry")

	// The old slot is gone even for a reader at the old version.
	old := NewStore[string](db, "searches", 1, nil)
	assert.Zero(t, old.Len())
}

func TestStoreExpiryDiscardsWholeBlob(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	store := NewStore[string](db, "searches", 1, nil)
	store.Set("a", "one")

	// Stamp an expiry in the past, then persist.
	store.now = func() time.Time { return time.Now().Add(-DefaultTTL - time.Hour) }
	store.Flush()

	reloaded := NewStore[string](db, "searches", 1, nil)
	assert.Zero(t, reloaded.Len(), "expired blob must be discarded whole")
}

func TestStoreSlotsAreIndependent(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	movies := NewStore[string](db, "movie_searches", 1, nil)
	books := NewStore[string](db, "book_searches", 1, nil)
	movies.Set("k", "movie")
	books.Set("k", "book")
	movies.Flush()
	books.Flush()

	// Invalidating one slot leaves the other alone.
	NewStore[string](db, "movie_searches", 2, nil)
	reloaded := NewStore[string](db, "book_searches", 1, nil)
	v, ok := reloaded.Get("k")
	require.True(t, ok)
	assert.Equal(t, "book", v)
}

func TestStoreEvictsOldestWhenOversized(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	store := NewStore[string](db, "searches", 1, nil, WithMaxBytes[string](600))
	big := string(make([]byte, 100))
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		store.Set(k, big)
	}
	store.Flush()

	require.Less(t, store.Len(), 8, "oversized store must evict")

	// Insertion order eviction: the oldest keys go first.
	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("h")
	assert.True(t, ok)
}

func TestStoreDebounceCoalesces(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	store := NewStore[string](db, "searches", 1, nil)
	store.Set("a", "one")
	store.Set("a", "two")

	// Nothing persisted before the quiet period elapses.
	unflushed := NewStore[string](db, "searches", 1, nil)
	assert.Zero(t, unflushed.Len())

	store.Flush()
	flushed := NewStore[string](db, "searches", 1, nil)
	v, ok := flushed.Get("a")
	require.True(t, ok)
	assert.Equal(t, "two", v, "last write wins")
}

func TestStoreClear(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	store := NewStore[string](db, "searches", 1, nil)
	store.Set("a", "one")
	store.Flush()
	store.Clear()

	assert.Zero(t, store.Len())
	reloaded := NewStore[string](db, "searches", 1, nil)
	assert.Zero(t, reloaded.Len())
}
