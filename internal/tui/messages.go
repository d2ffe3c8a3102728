package tui

import (
	"reelshelf/internal/batch"
	"reelshelf/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error surfaced to the user
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// RefreshDoneMsg signals that the full refresh pipeline finished
type RefreshDoneMsg struct {
	Err error
}

// ProgressMsg carries one enrichment progress tick
type ProgressMsg struct {
	Progress batch.Progress
}

// MovieExpandedMsg signals details/providers arrived for the selected item
type MovieExpandedMsg struct {
	ItemID string
	Match  *domain.MovieMatch
}

// TaskActionMsg signals a completed write-back (schedule, follow-up)
type TaskActionMsg struct {
	Info string
	Err  error
}

// ToastExpiredMsg clears the transient status line
type ToastExpiredMsg struct {
	ID int
}
