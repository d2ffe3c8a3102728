package domain

import "fmt"

// MediaKind distinguishes the two tracked project types
type MediaKind int

const (
	MediaKindMovie MediaKind = iota
	MediaKindBook
)

func (k MediaKind) String() string {
	if k == MediaKindBook {
		return "book"
	}
	return "movie"
}

// SectionCategory is the stable classification of a Todoist section.
// Branching logic uses the category, never the localized display name.
type SectionCategory int

const (
	SectionWatchlist SectionCategory = iota // default bucket
	SectionWatchingNow
	SectionSeries
	SectionWatched
	SectionReading
	SectionRead
)

// Section is one Todoist section resolved to a stable category.
// Name is kept for display only.
type Section struct {
	ID       string
	Name     string
	Category SectionCategory
}

// Task is the parse input derived from one Todoist task.
type Task struct {
	ID          string
	Content     string
	Description string
	SectionID   string
	ParentID    string
	Labels      []string
	DueDate     string // YYYY-MM-DD, empty when unscheduled
}

// MediaItem represents one task-derived movie or book.
// All derived fields are recomputed deterministically from the raw task;
// ID is the only stable identity.
type MediaItem struct {
	ID          string
	Kind        MediaKind
	Title       string // cleaned display title
	RawTitle    string
	Description string

	SectionID   string
	SectionName string // display only
	Category    SectionCategory

	Labels []string

	Year     int    // 0 = unknown
	Director string // movies
	Author   string // books

	IsSeries    bool
	IsAudiobook bool
	Seasons     int // 0 = unknown
	Episodes    int // subtask count, movies only

	Pages int
	Genre string

	// Ratings parsed from free text, 0 = absent
	KinopoiskRating float64
	IMDBRating      float64
	LiveLibRating   float64
	GoodreadsRating float64

	Reason  string // free-text justification from description
	DueDate string // YYYY-MM-DD, externally mutable
}

// SeriesCode returns a short "3 seasons / 24 ep." style summary for series
func (m MediaItem) SeriesCode() string {
	if !m.IsSeries {
		return ""
	}
	switch {
	case m.Seasons > 0 && m.Episodes > 0:
		return fmt.Sprintf("%d seasons / %d ep.", m.Seasons, m.Episodes)
	case m.Episodes > 0:
		return fmt.Sprintf("%d ep.", m.Episodes)
	default:
		return "series"
	}
}

// IsDone reports whether the item sits in a terminal bucket
func (m MediaItem) IsDone() bool {
	return m.Category == SectionWatched || m.Category == SectionRead
}
