// Package cache provides versioned, expiring key→value stores persisted in
// a shared bbolt database. Each store owns one slot holding a single
// serialized blob; the whole slot is discarded on version mismatch or
// expiry. Reads are served from an in-memory map, writes are debounced.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// DefaultTTL is the absolute expiry stamped on every save.
	DefaultTTL = 30 * 24 * time.Hour

	// debounceQuiet is the quiet period before a scheduled flush fires;
	// repeated Sets within the window coalesce into one write.
	debounceQuiet = time.Second

	// defaultMaxBytes caps the serialized blob; oversized stores evict
	// the oldest entries by insertion order before writing.
	defaultMaxBytes = 1 << 20

	// evictFraction is the share of entries dropped on an oversized save.
	evictFraction = 0.25
)

var bucketCaches = []byte("caches")

// Open opens (or creates) the shared cache database.
func Open(dir string) (*bolt.DB, error) {
	db, err := bolt.Open(filepath.Join(dir, "reelshelf.db"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCaches)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type entry struct {
	Value json.RawMessage `json:"value"`
	Seq   uint64          `json:"seq"`
}

type blob struct {
	Version   int              `json:"version"`
	ExpiresAt int64            `json:"expiresAt"`
	Entries   map[string]entry `json:"entries"`
}

// Store is a generic versioned cache over one slot of the shared database.
// A stored null is a first-class value ("confirmed no match").
type Store[V any] struct {
	db       *bolt.DB
	slot     []byte
	version  int
	ttl      time.Duration
	maxBytes int
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry
	seq     uint64
	timer   *time.Timer

	now func() time.Time // test hook
}

// Option configures a Store.
type Option[V any] func(*Store[V])

// WithTTL overrides the default 30-day expiry.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(s *Store[V]) { s.ttl = ttl }
}

// WithMaxBytes overrides the serialized-size eviction threshold.
func WithMaxBytes[V any](n int) Option[V] {
	return func(s *Store[V]) { s.maxBytes = n }
}

// NewStore creates a store bound to one named slot and loads any persisted
// blob whose version and expiry still validate. Invalid blobs are discarded
// whole; there is no migration.
func NewStore[V any](db *bolt.DB, slot string, version int, logger *slog.Logger, opts ...Option[V]) *Store[V] {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store[V]{
		db:       db,
		slot:     []byte(slot),
		version:  version,
		ttl:      DefaultTTL,
		maxBytes: defaultMaxBytes,
		logger:   logger,
		entries:  make(map[string]entry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store[V]) load() {
	if s.db == nil {
		return
	}
	var raw []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCaches).Get(s.slot); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if raw == nil {
		return
	}

	var b blob
	if err := json.Unmarshal(raw, &b); err != nil {
		s.logger.Warn("cache blob unreadable, discarding", "slot", string(s.slot), "error", err)
		s.deleteSlot()
		return
	}
	if b.Version != s.version {
		s.logger.Info("cache version changed, discarding", "slot", string(s.slot), "stored", b.Version, "expected", s.version)
		s.deleteSlot()
		return
	}
	if s.now().Unix() >= b.ExpiresAt {
		s.logger.Info("cache expired, discarding", "slot", string(s.slot))
		s.deleteSlot()
		return
	}

	s.entries = b.Entries
	if s.entries == nil {
		s.entries = make(map[string]entry)
	}
	for _, e := range s.entries {
		if e.Seq > s.seq {
			s.seq = e.Seq
		}
	}
	s.logger.Debug("cache loaded", "slot", string(s.slot), "entries", len(s.entries))
}

// Get returns the cached value for key. The second return distinguishes a
// cached null (found, zero V) from a miss.
func (s *Store[V]) Get(key string) (V, bool) {
	var v V
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(e.Value, &v); err != nil {
		return v, false
	}
	return v, true
}

// Set stores a value (including a typed nil) and schedules a debounced
// flush. The timer is cancel-and-reschedule: only the last Set within the
// quiet period triggers a write.
func (s *Store[V]) Set(key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value not serializable", "slot", string(s.slot), "key", key, "error", err)
		return
	}

	s.mu.Lock()
	s.seq++
	s.entries[key] = entry{Value: raw, Seq: s.seq}
	s.scheduleSave()
	s.mu.Unlock()
}

// scheduleSave arms (or re-arms) the flush timer. Caller holds mu.
func (s *Store[V]) scheduleSave() {
	if s.timer != nil {
		s.timer.Reset(debounceQuiet)
		return
	}
	s.timer = time.AfterFunc(debounceQuiet, func() { s.Flush() })
}

// Flush cancels any pending debounce and writes synchronously. Callers must
// flush before any point they cannot await again (end of a batch, shutdown).
func (s *Store[V]) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	raw, err := s.serialize()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("cache serialize failed", "slot", string(s.slot), "error", err)
		return
	}
	if s.db == nil {
		return
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCaches).Put(s.slot, raw)
	})
	if err != nil {
		// On a write failure the slot is cleared rather than left
		// partially written; the session continues without persistence.
		s.logger.Warn("cache write failed, clearing slot", "slot", string(s.slot), "error", err)
		s.deleteSlot()
	}
}

// serialize builds the blob, evicting the oldest entries by insertion order
// if the serialized size exceeds the threshold. Caller holds mu.
func (s *Store[V]) serialize() ([]byte, error) {
	b := blob{
		Version:   s.version,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
		Entries:   s.entries,
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	if len(raw) <= s.maxBytes || len(s.entries) == 0 {
		return raw, nil
	}

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return s.entries[keys[i]].Seq < s.entries[keys[j]].Seq
	})
	drop := int(float64(len(keys)) * evictFraction)
	if drop < 1 {
		drop = 1
	}
	for _, k := range keys[:drop] {
		delete(s.entries, k)
	}
	s.logger.Info("cache evicted oldest entries", "slot", string(s.slot), "dropped", drop, "remaining", len(s.entries))

	b.Entries = s.entries
	return json.Marshal(b)
}

// Clear empties the in-memory map and removes the persisted slot.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.entries = make(map[string]entry)
	s.seq = 0
	s.mu.Unlock()
	s.deleteSlot()
}

// Len returns the number of cached entries, cached nulls included.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store[V]) deleteSlot() {
	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCaches).Delete(s.slot)
	})
}
