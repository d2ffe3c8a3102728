// Package service ties the task source, parser, matchers and batch
// orchestrator into the library the view layer consumes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"reelshelf/internal/batch"
	"reelshelf/internal/domain"
	"reelshelf/internal/match"
	"reelshelf/internal/source/todoist"
)

// UndoWindow is how long a completed task can still be taken back before
// the write-back actually fires.
const UndoWindow = 5 * time.Second

// TaskSource is the task-provider surface the service needs
type TaskSource interface {
	ListTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	ListSections(ctx context.Context, projectID string) ([]domain.Section, error)
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	CreateTask(ctx context.Context, args todoist.CreateTaskArgs) (string, error)
	UpdateDueDate(ctx context.Context, id, date string) error
}

// Options configures a LibraryService
type Options struct {
	MoviesProject string
	BooksProject  string
	Region        string
	Concurrency   int
	BatchDelay    time.Duration
}

// LibraryService owns the refreshed item lists and their id→match maps
type LibraryService struct {
	source TaskSource
	movies *match.MovieMatcher
	books  *match.BookMatcher
	opts   Options
	logger *slog.Logger

	mu           sync.RWMutex
	movieItems   []domain.MediaItem
	bookItems    []domain.MediaItem
	movieMatches map[string]*domain.MovieMatch
	bookMatches  map[string]*domain.BookMatch

	pendingMu sync.Mutex
	pending   map[string]*time.Timer // tasks inside the undo window
	completed map[string]bool        // tasks whose close already fired
}

// NewLibraryService creates the library service
func NewLibraryService(source TaskSource, movies *match.MovieMatcher, books *match.BookMatcher, opts Options, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		source:       source,
		movies:       movies,
		books:        books,
		opts:         opts,
		logger:       logger,
		movieMatches: make(map[string]*domain.MovieMatch),
		bookMatches:  make(map[string]*domain.BookMatch),
		pending:      make(map[string]*time.Timer),
		completed:    make(map[string]bool),
	}
}

// Refresh pulls both projects, parses them and enriches every item through
// the matchers. The movie and book pipelines run in parallel; a progress
// callback (may be nil) fires after every completed lookup across both.
func (s *LibraryService) Refresh(ctx context.Context, onProgress func(batch.Progress)) error {
	var wg conc.WaitGroup
	var movieErr, bookErr error

	wg.Go(func() { movieErr = s.refreshMovies(ctx, onProgress) })
	wg.Go(func() { bookErr = s.refreshBooks(ctx, onProgress) })
	wg.Wait()

	return errors.Join(movieErr, bookErr)
}

func (s *LibraryService) refreshMovies(ctx context.Context, onProgress func(batch.Progress)) error {
	if s.opts.MoviesProject == "" {
		return nil
	}
	items, err := s.loadProject(ctx, domain.MediaKindMovie, s.opts.MoviesProject)
	if err != nil {
		return fmt.Errorf("movies: %w", err)
	}

	matches := batch.Run(ctx, items, func(ctx context.Context, item domain.MediaItem) *domain.MovieMatch {
		return s.movies.Search(ctx, item.Title, item.Year, item.IsSeries)
	}, batch.Options{
		Concurrency: s.opts.Concurrency,
		Delay:       s.opts.BatchDelay,
		OnProgress:  onProgress,
		Flush:       s.movies.Flush,
		Logger:      s.logger,
	})

	s.mu.Lock()
	s.movieItems = items
	s.movieMatches = matches
	s.mu.Unlock()

	s.logger.Info("movies refreshed", "items", len(items), "matched", countMatched(matches))
	return nil
}

func (s *LibraryService) refreshBooks(ctx context.Context, onProgress func(batch.Progress)) error {
	if s.opts.BooksProject == "" {
		return nil
	}
	items, err := s.loadProject(ctx, domain.MediaKindBook, s.opts.BooksProject)
	if err != nil {
		return fmt.Errorf("books: %w", err)
	}

	matches := batch.Run(ctx, items, func(ctx context.Context, item domain.MediaItem) *domain.BookMatch {
		return s.books.Search(ctx, item.Title, item.Author)
	}, batch.Options{
		Concurrency: s.opts.Concurrency,
		Delay:       s.opts.BatchDelay,
		OnProgress:  onProgress,
		Flush:       s.books.Flush,
		Logger:      s.logger,
	})

	s.mu.Lock()
	s.bookItems = items
	s.bookMatches = matches
	s.mu.Unlock()

	s.logger.Info("books refreshed", "items", len(items), "matched", countMatched(matches))
	return nil
}

func (s *LibraryService) loadProject(ctx context.Context, kind domain.MediaKind, projectID string) ([]domain.MediaItem, error) {
	sections, err := s.source.ListSections(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.source.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return todoist.BuildItems(kind, tasks, sections), nil
}

// Items returns the refreshed items of one kind
func (s *LibraryService) Items(kind domain.MediaKind) []domain.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind == domain.MediaKindBook {
		return s.bookItems
	}
	return s.movieItems
}

// MovieMatchFor returns the match for an item id, nil when unmatched
func (s *LibraryService) MovieMatchFor(id string) *domain.MovieMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movieMatches[id]
}

// BookMatchFor returns the match for an item id, nil when unmatched
func (s *LibraryService) BookMatchFor(id string) *domain.BookMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookMatches[id]
}

// ExpandMovie attaches details and watch providers to a matched item; both
// sub-lookups are independently cached by external id.
func (s *LibraryService) ExpandMovie(ctx context.Context, itemID string) *domain.MovieMatch {
	s.mu.RLock()
	m := s.movieMatches[itemID]
	s.mu.RUnlock()
	if m == nil {
		return nil
	}

	expanded := *m
	if expanded.Details == nil {
		expanded.Details = s.movies.Details(ctx, m.ID, m.IsSeries)
	}
	if expanded.Providers == nil {
		expanded.Providers = s.movies.WatchProviders(ctx, m.ID, m.IsSeries, s.opts.Region)
	}

	s.mu.Lock()
	s.movieMatches[itemID] = &expanded
	s.mu.Unlock()
	return &expanded
}

// CompleteWithUndo schedules the close write-back after the undo window.
// Undo within the window cancels the write entirely; nothing is sent until
// the window closes.
func (s *LibraryService) CompleteWithUndo(id string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if _, exists := s.pending[id]; exists {
		return
	}

	s.pending[id] = time.AfterFunc(UndoWindow, func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.source.CloseTask(ctx, id); err != nil {
			s.logger.Error("failed to complete task", "id", id, "error", err)
			return
		}
		s.pendingMu.Lock()
		s.completed[id] = true
		s.pendingMu.Unlock()
		s.logger.Info("task completed", "id", id)
	})
}

// Undo takes back a completion. Inside the window it cancels the pending
// write; after the window it falls back to reopening the task at the source.
func (s *LibraryService) Undo(id string) bool {
	s.pendingMu.Lock()
	if timer, ok := s.pending[id]; ok {
		timer.Stop()
		delete(s.pending, id)
		s.pendingMu.Unlock()
		return true
	}
	wasCompleted := s.completed[id]
	s.pendingMu.Unlock()
	if !wasCompleted {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.source.ReopenTask(ctx, id); err != nil {
		s.logger.Error("failed to reopen task", "id", id, "error", err)
		return false
	}
	s.pendingMu.Lock()
	delete(s.completed, id)
	s.pendingMu.Unlock()
	s.logger.Info("task reopened", "id", id)
	return true
}

// PendingUndo reports whether an item sits inside the undo window
func (s *LibraryService) PendingUndo(id string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Schedule sets (or with an empty date clears) an item's due date
func (s *LibraryService) Schedule(ctx context.Context, id, date string) error {
	if err := s.source.UpdateDueDate(ctx, id, date); err != nil {
		return err
	}

	s.mu.Lock()
	for _, items := range [][]domain.MediaItem{s.movieItems, s.bookItems} {
		for i := range items {
			if items[i].ID == id {
				items[i].DueDate = date
			}
		}
	}
	s.mu.Unlock()
	return nil
}

// CreateFollowUp creates a follow-up task next to the item (e.g. the next
// season of a finished series) and returns the new task id.
func (s *LibraryService) CreateFollowUp(ctx context.Context, item domain.MediaItem, content, note string) (string, error) {
	projectID := s.opts.MoviesProject
	if item.Kind == domain.MediaKindBook {
		projectID = s.opts.BooksProject
	}
	return s.source.CreateTask(ctx, todoist.CreateTaskArgs{
		Content:     content,
		Description: note,
		ProjectID:   projectID,
		SectionID:   item.SectionID,
	})
}

// Close flushes pending cache writes; call on shutdown.
func (s *LibraryService) Close() {
	s.movies.Flush()
	s.books.Flush()
}

func countMatched[R any](m map[string]*R) int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}
