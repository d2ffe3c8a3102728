// Package parse turns semi-structured Todoist task text into typed media
// records. Parsing is pure and idempotent: the same raw input always yields
// the same MediaItem, and unparseable text degrades to zero values instead
// of failing.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"reelshelf/internal/domain"
)

var (
	bulletRE = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)
	yearRE   = regexp.MustCompile(`\s*\(((?:19|20)\d{2})\)`)

	// Trailing "— Name" clause; em/en dash, or hyphen set off by spaces.
	// "Spider-Man" keeps its hyphen, "Solaris — Tarkovsky" loses the tail.
	personRE = regexp.MustCompile(`\s+(?:[—–]|-\s)\s*([^—–]+?)\s*$`)

	trailingPunctRE = regexp.MustCompile(`[\s,.;:!]+$`)
	quoteRE         = regexp.MustCompile(`[«»“”"]`)

	// \b is ASCII-only in RE2, so the Cyrillic form anchors on start-of-
	// string or whitespace instead.
	seasonRE = regexp.MustCompile(`(?i)(?:\bseason\s*(\d+)|(?:^|\s)сезон\s*(\d+)|(\d+)\s*сезон)`)

	ratingValue = `\s*[:：]?\s*(\d+(?:[.,]\d+)?)(?:\s*/\s*\d+)?\s*$`

	kinopoiskRE = regexp.MustCompile(`(?i)^(?:кинопоиск|кп|kinopoisk)` + ratingValue)
	imdbRE      = regexp.MustCompile(`(?i)^imdb` + ratingValue)
	livelibRE   = regexp.MustCompile(`(?i)^(?:livelib|лайвлиб)` + ratingValue)
	goodreadsRE = regexp.MustCompile(`(?i)^goodreads` + ratingValue)

	pagesRE    = regexp.MustCompile(`(?i)^(?:pages|страниц[а-яё]*)\s*[:：]?\s*(\d+)\s*$`)
	pagesAltRE = regexp.MustCompile(`(?i)^(\d+)\s*(?:стр|pages?)\.?\s*$`)
	authorRE   = regexp.MustCompile(`(?i)^(?:author|автор)\s*[:：]\s*(.+)$`)
	directorRE = regexp.MustCompile(`(?i)^(?:director|режисс[её]р)\s*[:：]\s*(.+)$`)
	genreRE    = regexp.MustCompile(`(?i)^(?:genre|жанр)\s*[:：]\s*(.+)$`)
)

// Parse derives a MediaItem from one top-level task, its subtasks and the
// resolved section table.
func Parse(kind domain.MediaKind, task domain.Task, subtasks []domain.Task, sections map[string]domain.Section) domain.MediaItem {
	item := domain.MediaItem{
		ID:          task.ID,
		Kind:        kind,
		RawTitle:    task.Content,
		Description: task.Description,
		SectionID:   task.SectionID,
		Labels:      task.Labels,
		DueDate:     task.DueDate,
	}

	if sec, ok := sections[task.SectionID]; ok {
		item.SectionName = sec.Name
		item.Category = sec.Category
	}

	item.Title, item.Year, item.Director = cleanTitle(task.Content)
	if kind == domain.MediaKindBook {
		item.Author, item.Director = item.Director, ""
	}

	parseDescription(&item)
	inferSeries(&item, subtasks)
	item.IsAudiobook = kind == domain.MediaKindBook && hasAudioLabel(task.Labels)

	return item
}

// cleanTitle applies the cleanup pipeline in order: leading markers, the
// parenthesized year, the trailing person clause, residual punctuation.
func cleanTitle(raw string) (title string, year int, person string) {
	s := bulletRE.ReplaceAllString(raw, "")

	if m := yearRE.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		s = strings.Replace(s, m[0], "", 1)
	}

	if m := personRE.FindStringSubmatch(s); m != nil {
		person = strings.TrimSpace(m[1])
		s = s[:len(s)-len(m[0])]
	}

	s = quoteRE.ReplaceAllString(s, "")
	s = trailingPunctRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s), year, person
}

// inferSeries resolves the series flag and season/episode counts. The
// precedence is fixed: the Series section always wins; then subtask
// structure; then the Watching-Now override; then the section-name
// heuristic that seeded the flag.
func inferSeries(item *domain.MediaItem, subtasks []domain.Task) {
	if item.Kind != domain.MediaKindMovie {
		return
	}

	// Section-name heuristic seeds the flag before subtask inspection.
	name := strings.ToLower(item.SectionName)
	item.IsSeries = strings.Contains(name, "series") || strings.Contains(name, "сериал")

	if len(subtasks) > 0 {
		item.IsSeries = true
		item.Episodes = len(subtasks)
		item.Seasons = maxSeason(subtasks)
	} else if item.Category == domain.SectionWatchingNow {
		item.IsSeries = false
	}

	// Final check wins: the Series bucket forces the flag regardless of
	// subtask presence.
	if item.Category == domain.SectionSeries {
		item.IsSeries = true
	}
}

func maxSeason(subtasks []domain.Task) int {
	max := 0
	for _, st := range subtasks {
		for _, m := range seasonRE.FindAllStringSubmatch(st.Content, -1) {
			for _, g := range m[1:] {
				if g == "" {
					continue
				}
				if n, err := strconv.Atoi(g); err == nil && n > max {
					max = n
				}
			}
		}
	}
	return max
}

// parseDescription scans each line for labeled metadata. Lines that match a
// metadata pattern are excluded from the free-text reason, which is the
// concatenation of whatever remains.
func parseDescription(item *domain.MediaItem) {
	var reason []string
	for _, line := range strings.Split(item.Description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if matchLine(item, line) {
			continue
		}
		reason = append(reason, line)
	}
	item.Reason = strings.Join(reason, "\n")
}

func matchLine(item *domain.MediaItem, line string) bool {
	if m := kinopoiskRE.FindStringSubmatch(line); m != nil {
		item.KinopoiskRating = parseFloat(m[1])
		return true
	}
	if m := imdbRE.FindStringSubmatch(line); m != nil {
		item.IMDBRating = parseFloat(m[1])
		return true
	}
	if m := livelibRE.FindStringSubmatch(line); m != nil {
		item.LiveLibRating = parseFloat(m[1])
		return true
	}
	if m := goodreadsRE.FindStringSubmatch(line); m != nil {
		item.GoodreadsRating = parseFloat(m[1])
		return true
	}
	if m := pagesRE.FindStringSubmatch(line); m != nil {
		item.Pages, _ = strconv.Atoi(m[1])
		return true
	}
	if m := pagesAltRE.FindStringSubmatch(line); m != nil {
		item.Pages, _ = strconv.Atoi(m[1])
		return true
	}
	if m := authorRE.FindStringSubmatch(line); m != nil {
		if item.Author == "" {
			item.Author = strings.TrimSpace(m[1])
		}
		return true
	}
	if m := directorRE.FindStringSubmatch(line); m != nil {
		if item.Director == "" {
			item.Director = strings.TrimSpace(m[1])
		}
		return true
	}
	if m := genreRE.FindStringSubmatch(line); m != nil {
		item.Genre = strings.TrimSpace(m[1])
		return true
	}
	return false
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return f
}

func hasAudioLabel(labels []string) bool {
	for _, l := range labels {
		switch strings.ToLower(l) {
		case "audiobook", "audio", "аудиокнига", "аудио":
			return true
		}
	}
	return false
}
