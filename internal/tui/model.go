// Package tui renders the gallery: a filterable list of enriched items
// with a detail pane and the write-back actions.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"reelshelf/internal/batch"
	"reelshelf/internal/config"
	"reelshelf/internal/domain"
	"reelshelf/internal/service"
	"reelshelf/internal/tui/styles"
)

// ApplicationState represents the current interaction mode
type ApplicationState int

const (
	StateLoading ApplicationState = iota
	StateBrowsing
	StateFiltering
	StateScheduling
	StateFollowUp
)

const toastDuration = 3 * time.Second

// Model is the root bubbletea model
type Model struct {
	library *service.LibraryService
	cfg     *config.Config

	state   ApplicationState
	kind    domain.MediaKind
	filters service.Filters

	items  []domain.MediaItem
	cursor int

	input   textinput.Model
	spin    spinner.Model
	width   int
	height  int

	progress   batch.Progress
	toast      string
	toastStyle string // "ok", "warn", "err"
	toastID    int

	progressCh chan batch.Progress
}

// NewModel creates the root model
func NewModel(library *service.LibraryService, cfg *config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return Model{
		library:    library,
		cfg:        cfg,
		state:      StateLoading,
		filters:    cfg.Filters,
		input:      ti,
		spin:       sp,
		progressCh: make(chan batch.Progress, 16),
	}
}

// Init starts the initial refresh
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refreshCmd(), m.listenProgress())
}

// refreshCmd runs the full refresh pipeline off the UI loop, streaming
// progress ticks through the channel.
func (m Model) refreshCmd() tea.Cmd {
	ch := m.progressCh
	lib := m.library
	return func() tea.Msg {
		err := lib.Refresh(context.Background(), func(p batch.Progress) {
			select {
			case ch <- p:
			default: // UI lagging; drop the tick
			}
		})
		return RefreshDoneMsg{Err: err}
	}
}

func (m Model) listenProgress() tea.Cmd {
	ch := m.progressCh
	return func() tea.Msg {
		return ProgressMsg{Progress: <-ch}
	}
}

func (m Model) expandCmd(itemID string) tea.Cmd {
	lib := m.library
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return MovieExpandedMsg{ItemID: itemID, Match: lib.ExpandMovie(ctx, itemID)}
	}
}

func (m *Model) toastCmd(text, style string) tea.Cmd {
	m.toast = text
	m.toastStyle = style
	m.toastID++
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.state == StateLoading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case ProgressMsg:
		m.progress = msg.Progress
		return m, m.listenProgress()

	case RefreshDoneMsg:
		m.state = StateBrowsing
		m.reload()
		if msg.Err != nil {
			return m, m.toastCmd(msg.Err.Error(), "err")
		}
		return m, m.toastCmd(fmt.Sprintf("%d items loaded", len(m.items)), "ok")

	case MovieExpandedMsg:
		return m, nil

	case TaskActionMsg:
		if msg.Err != nil {
			return m, m.toastCmd(msg.Err.Error(), "err")
		}
		return m, m.toastCmd(msg.Info, "ok")

	case ToastExpiredMsg:
		if msg.ID == m.toastID {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) reload() {
	m.items = m.library.Filtered(m.kind, m.filters)
	if m.cursor >= len(m.items) {
		m.cursor = 0
	}
}

func (m Model) selected() *domain.MediaItem {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return &m.items[m.cursor]
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Prompt states route keys to the text input first.
	switch m.state {
	case StateFiltering, StateScheduling, StateFollowUp:
		return m.handlePromptKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "tab":
		if m.kind == domain.MediaKindMovie {
			m.kind = domain.MediaKindBook
		} else {
			m.kind = domain.MediaKindMovie
		}
		m.cursor = 0
		m.reload()

	case "r":
		if m.state == StateBrowsing {
			m.state = StateLoading
			return m, tea.Batch(m.spin.Tick, m.refreshCmd())
		}

	case "/":
		m.state = StateFiltering
		m.input.Placeholder = "filter titles"
		m.input.SetValue(m.filters.Query)
		m.input.Focus()
		return m, textinput.Blink

	case "w":
		m.filters.IncludeWatched = !m.filters.IncludeWatched
		m.saveFilters()
		m.reload()

	case "S":
		m.filters.SeriesOnly = !m.filters.SeriesOnly
		m.saveFilters()
		m.reload()

	case "enter":
		if item := m.selected(); item != nil && item.Kind == domain.MediaKindMovie {
			return m, m.expandCmd(item.ID)
		}

	case "c":
		if item := m.selected(); item != nil {
			m.library.CompleteWithUndo(item.ID)
			return m, m.toastCmd(fmt.Sprintf("completed %q — press u to undo", item.Title), "warn")
		}

	case "u":
		if item := m.selected(); item != nil && m.library.Undo(item.ID) {
			return m, m.toastCmd("completion undone", "ok")
		}
		return m, m.toastCmd("nothing to undo", "warn")

	case "s":
		if m.selected() != nil {
			m.state = StateScheduling
			m.input.Placeholder = "YYYY-MM-DD (empty clears)"
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}

	case "n":
		if m.selected() != nil {
			m.state = StateFollowUp
			m.input.Placeholder = "follow-up task title"
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateBrowsing
		m.input.Blur()
		return m, nil

	case "enter":
		value := m.input.Value()
		state := m.state
		m.state = StateBrowsing
		m.input.Blur()
		return m.submitPrompt(state, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.state == StateFiltering {
		m.filters.Query = m.input.Value()
		m.reload()
	}
	return m, cmd
}

func (m Model) submitPrompt(state ApplicationState, value string) (tea.Model, tea.Cmd) {
	switch state {
	case StateFiltering:
		m.filters.Query = value
		m.saveFilters()
		m.reload()
		return m, nil

	case StateScheduling:
		item := m.selected()
		if item == nil {
			return m, nil
		}
		lib := m.library
		id := item.ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := lib.Schedule(ctx, id, value); err != nil {
				return TaskActionMsg{Err: err}
			}
			if value == "" {
				return TaskActionMsg{Info: "schedule cleared"}
			}
			return TaskActionMsg{Info: "scheduled for " + value}
		}

	case StateFollowUp:
		item := m.selected()
		if item == nil || value == "" {
			return m, nil
		}
		lib := m.library
		it := *item
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := lib.CreateFollowUp(ctx, it, value, "follow-up to: "+it.Title); err != nil {
				return TaskActionMsg{Err: err}
			}
			return TaskActionMsg{Info: "created " + value}
		}
	}
	return m, nil
}

func (m *Model) saveFilters() {
	m.cfg.Filters = m.filters
	if err := config.SaveFilters(m.cfg); err != nil {
		m.toast = "failed to save filters"
		m.toastStyle = "warn"
	}
}
