package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reelshelf/internal/domain"
	"reelshelf/internal/tui/styles"
)

const listWidth = 44

// View renders the gallery
func (m Model) View() string {
	if m.state == StateLoading {
		return m.loadingView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	list := m.listView()
	detail := m.detailView()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) loadingView() string {
	line := fmt.Sprintf("%s loading library…", m.spin.View())
	if m.progress.Total > 0 {
		line = fmt.Sprintf("%s enriching %d/%d", m.spin.View(), m.progress.Done, m.progress.Total)
	}
	return "\n  " + line + "\n"
}

func (m Model) headerView() string {
	movies := styles.TabInactiveStyle.Render("Movies")
	books := styles.TabInactiveStyle.Render("Books")
	if m.kind == domain.MediaKindMovie {
		movies = styles.TabActiveStyle.Render("Movies")
	} else {
		books = styles.TabActiveStyle.Render("Books")
	}

	header := fmt.Sprintf("%s  %s | %s  %s",
		styles.AccentStyle.Render("reelshelf"),
		movies, books,
		styles.DimStyle.Render(fmt.Sprintf("%d items", len(m.items))))
	if m.filters.Query != "" {
		header += styles.DimStyle.Render(fmt.Sprintf("  filter: %q", m.filters.Query))
	}
	return header
}

func (m Model) listView() string {
	if len(m.items) == 0 {
		return styles.DimStyle.Render("  nothing matches the current filters")
	}

	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.items) {
		end = len(m.items)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		item := m.items[i]
		line := truncate(itemLine(item, m), listWidth)
		if i == m.cursor {
			b.WriteString(styles.SelectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(listWidth + 4).Render(b.String())
}

func itemLine(item domain.MediaItem, m Model) string {
	title := item.Title
	if item.Year > 0 {
		title += fmt.Sprintf(" (%d)", item.Year)
	}
	marks := ""
	if item.IsSeries {
		marks += " ⊞"
	}
	if item.IsAudiobook {
		marks += " ♫"
	}
	if item.DueDate != "" {
		marks += " ⏰"
	}
	if m.library.PendingUndo(item.ID) {
		marks += " ✓"
	}
	return title + marks
}

func (m Model) detailView() string {
	item := m.selected()
	if item == nil {
		return ""
	}

	var lines []string
	lines = append(lines, styles.TitleStyle.Render(item.Title))

	meta := metaLine(item)
	if meta != "" {
		lines = append(lines, styles.SubtitleStyle.Render(meta))
	}

	if item.Kind == domain.MediaKindMovie {
		lines = append(lines, m.movieDetailLines(item)...)
	} else {
		lines = append(lines, m.bookDetailLines(item)...)
	}

	if item.Reason != "" {
		lines = append(lines, "", styles.DimStyle.Render(item.Reason))
	}
	if item.DueDate != "" {
		lines = append(lines, styles.WarnStyle.Render("due "+item.DueDate))
	}

	width := m.width - listWidth - 10
	if width < 30 {
		width = 30
	}
	return styles.PaneBorder.Width(width).Render(strings.Join(lines, "\n"))
}

func metaLine(item *domain.MediaItem) string {
	var parts []string
	if item.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", item.Year))
	}
	if item.Director != "" {
		parts = append(parts, item.Director)
	}
	if item.Author != "" {
		parts = append(parts, item.Author)
	}
	if item.IsSeries {
		parts = append(parts, item.SeriesCode())
	}
	if item.SectionName != "" {
		parts = append(parts, item.SectionName)
	}
	return strings.Join(parts, " · ")
}

func (m Model) movieDetailLines(item *domain.MediaItem) []string {
	var lines []string

	if r := ratingsLine(item.KinopoiskRating, "KP", item.IMDBRating, "IMDb"); r != "" {
		lines = append(lines, r)
	}

	match := m.library.MovieMatchFor(item.ID)
	if match == nil {
		lines = append(lines, styles.DimStyle.Render("no metadata match"))
		return lines
	}

	lines = append(lines, fmt.Sprintf("TMDB %.1f (%d votes)", match.Rating, match.VoteCount))
	if d := match.Details; d != nil {
		if len(d.Genres) > 0 {
			lines = append(lines, strings.Join(d.Genres, ", "))
		}
		if d.Runtime > 0 {
			lines = append(lines, fmt.Sprintf("%d min", d.Runtime))
		}
		if d.Director != "" {
			lines = append(lines, "directed by "+d.Director)
		}
		if len(d.Cast) > 0 {
			lines = append(lines, styles.DimStyle.Render(strings.Join(d.Cast, ", ")))
		}
	}
	if p := match.Providers; p != nil && len(p.Stream) > 0 {
		lines = append(lines, styles.SuccessStyle.Render("stream: "+strings.Join(p.Stream, ", ")))
	}
	return lines
}

func (m Model) bookDetailLines(item *domain.MediaItem) []string {
	var lines []string

	if r := ratingsLine(item.LiveLibRating, "LiveLib", item.GoodreadsRating, "Goodreads"); r != "" {
		lines = append(lines, r)
	}
	if item.Pages > 0 {
		lines = append(lines, fmt.Sprintf("%d pages", item.Pages))
	}
	if item.Genre != "" {
		lines = append(lines, item.Genre)
	}

	match := m.library.BookMatchFor(item.ID)
	if match == nil {
		lines = append(lines, styles.DimStyle.Render("no metadata match"))
		return lines
	}
	if match.Rating > 0 {
		lines = append(lines, fmt.Sprintf("rated %.1f (%s)", match.Rating, match.Source))
	}
	if match.HasCover() {
		lines = append(lines, styles.DimStyle.Render(match.CoverURL))
	}
	return lines
}

func ratingsLine(a float64, aName string, b float64, bName string) string {
	var parts []string
	if a > 0 {
		parts = append(parts, fmt.Sprintf("%s %.1f", aName, a))
	}
	if b > 0 {
		parts = append(parts, fmt.Sprintf("%s %.1f", bName, b))
	}
	return strings.Join(parts, " · ")
}

func (m Model) footerView() string {
	switch m.state {
	case StateFiltering, StateScheduling, StateFollowUp:
		return m.input.View()
	}

	help := "↑/↓ move · tab kind · enter expand · c complete · u undo · s schedule · n follow-up · / filter · w watched · r refresh · q quit"
	footer := styles.DimStyle.Render(help)
	if m.toast != "" {
		style := styles.SuccessStyle
		switch m.toastStyle {
		case "warn":
			style = styles.WarnStyle
		case "err":
			style = styles.ErrorStyle
		}
		footer = style.Render(m.toast) + "\n" + footer
	}
	return footer
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
