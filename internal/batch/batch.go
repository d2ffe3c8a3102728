// Package batch drives the matchers across an item list with bounded
// concurrency: fixed-size groups run their lookups concurrently, groups are
// separated by a rate-limit-avoidance delay, and one item's failure never
// aborts the batch.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"

	"reelshelf/internal/domain"
)

// Progress reports one completed item; Done only ever increases.
type Progress struct {
	Done   int
	Total  int
	ItemID string
}

// MatchFunc resolves one item to a result. A nil result is a valid outcome
// (confirmed no match).
type MatchFunc[R any] func(ctx context.Context, item domain.MediaItem) R

// Options tunes a batch run
type Options struct {
	Concurrency int           // group size; <1 defaults to 3
	Delay       time.Duration // pause between groups
	OnProgress  func(Progress)
	Flush       func() // forced cache flush after the batch completes
	Logger      *slog.Logger
}

// Run partitions items into groups of Options.Concurrency, executes each
// group's lookups concurrently, and returns a complete id-keyed result map.
// Panics inside matchFn are recovered and recorded as the zero result.
func Run[R any](ctx context.Context, items []domain.MediaItem, matchFn MatchFunc[R], opts Options) map[string]R {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = 3
	}

	results := make(map[string]R, len(items))
	var mu sync.Mutex
	done := 0

	for start := 0; start < len(items); start += limit {
		if start > 0 && opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
			}
		}

		end := start + limit
		if end > len(items) {
			end = len(items)
		}
		group := items[start:end]

		var wg sync.WaitGroup
		for _, item := range group {
			wg.Add(1)
			go func(item domain.MediaItem) {
				defer wg.Done()

				var result R
				recovered := panics.Try(func() {
					result = matchFn(ctx, item)
				})
				if recovered != nil {
					// Failed item degrades to the zero result; the
					// rest of the batch is unaffected.
					logger.Error("match panicked", "item", item.ID, "panic", recovered.Value)
					var zero R
					result = zero
				}

				// Callback fires under the lock so the counter is
				// strictly increasing from the observer's side.
				mu.Lock()
				results[item.ID] = result
				done++
				if opts.OnProgress != nil {
					opts.OnProgress(Progress{Done: done, Total: len(items), ItemID: item.ID})
				}
				mu.Unlock()
			}(item)
		}
		wg.Wait()
	}

	// Results must survive an immediate shutdown or reload.
	if opts.Flush != nil {
		opts.Flush()
	}
	return results
}
