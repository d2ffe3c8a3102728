package todoist

import (
	"sort"
	"strings"

	"reelshelf/internal/domain"
	"reelshelf/internal/parse"
)

func mapTasks(dtos []taskDTO) []domain.Task {
	tasks := make([]domain.Task, 0, len(dtos))
	for _, d := range dtos {
		t := domain.Task{
			ID:          d.ID,
			Content:     d.Content,
			Description: d.Description,
			SectionID:   d.SectionID,
			ParentID:    d.ParentID,
			Labels:      d.Labels,
		}
		if d.Due != nil {
			t.DueDate = d.Due.Date
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func mapSections(dtos []sectionDTO) []domain.Section {
	sections := make([]domain.Section, 0, len(dtos))
	for _, d := range dtos {
		sections = append(sections, domain.Section{
			ID:       d.ID,
			Name:     d.Name,
			Category: classifySection(d.Name),
		})
	}
	return sections
}

// classifySection resolves a localized display name to a stable category
// once, at the network boundary; all downstream branching uses the category.
func classifySection(name string) domain.SectionCategory {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "series") || strings.Contains(n, "сериал"):
		return domain.SectionSeries
	case strings.Contains(n, "watching") || strings.Contains(n, "смотрю"):
		return domain.SectionWatchingNow
	case strings.Contains(n, "watched") || strings.Contains(n, "просмотрено"):
		return domain.SectionWatched
	case strings.Contains(n, "reading") || strings.Contains(n, "читаю"):
		return domain.SectionReading
	case strings.Contains(n, "read") || strings.Contains(n, "прочитано"):
		return domain.SectionRead
	default:
		return domain.SectionWatchlist
	}
}

// BuildItems groups subtasks under their parents and parses every top-level
// task into a MediaItem, preserving the project's task order.
func BuildItems(kind domain.MediaKind, tasks []domain.Task, sections []domain.Section) []domain.MediaItem {
	sectionByID := make(map[string]domain.Section, len(sections))
	for _, s := range sections {
		sectionByID[s.ID] = s
	}

	children := make(map[string][]domain.Task)
	for _, t := range tasks {
		if t.ParentID != "" {
			children[t.ParentID] = append(children[t.ParentID], t)
		}
	}

	var items []domain.MediaItem
	for _, t := range tasks {
		if t.ParentID != "" {
			continue
		}
		items = append(items, parse.Parse(kind, t, children[t.ID], sectionByID))
	}

	// Stable ordering: keep section grouping, then title
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return false
	})
	return items
}
