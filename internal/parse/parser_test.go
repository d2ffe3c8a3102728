package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelshelf/internal/domain"
)

func sectionTable(secs ...domain.Section) map[string]domain.Section {
	m := make(map[string]domain.Section, len(secs))
	for _, s := range secs {
		m[s.ID] = s
	}
	return m
}

func TestParseCleanTitle(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantTitle  string
		wantYear   int
		wantPerson string
	}{
		{"plain", "Solaris", "Solaris", 0, ""},
		{"year", "Solaris (1972)", "Solaris", 1972, ""},
		{"year and director", "Solaris (1972) — Andrei Tarkovsky", "Solaris", 1972, "Andrei Tarkovsky"},
		{"spaced hyphen person", "Dune - Denis Villeneuve", "Dune", 0, "Denis Villeneuve"},
		{"in-word hyphen kept", "Spider-Man (2002)", "Spider-Man", 2002, ""},
		{"bullet stripped", "- Fargo (1996)", "Fargo", 1996, ""},
		{"numbered bullet stripped", "3. Fargo", "Fargo", 0, ""},
		{"quotes stripped", "«Сталкер» (1979)", "Сталкер", 1979, ""},
		{"future year ignored", "Blade Runner (2199)", "Blade Runner (2199)", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Parse(domain.MediaKindMovie, domain.Task{ID: "1", Content: tt.content}, nil, nil)
			assert.Equal(t, tt.wantTitle, item.Title)
			assert.Equal(t, tt.wantYear, item.Year)
			assert.Equal(t, tt.wantPerson, item.Director)
		})
	}
}

func TestParseBookAuthorFromTitle(t *testing.T) {
	item := Parse(domain.MediaKindBook, domain.Task{ID: "1", Content: "Dune — Frank Herbert"}, nil, nil)
	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, "Frank Herbert", item.Author)
	assert.Empty(t, item.Director)
}

func TestParseIdempotent(t *testing.T) {
	task := domain.Task{ID: "1", Content: "Solaris (1972) — Tarkovsky", Description: "imdb: 8.1\ngreat atmosphere"}
	first := Parse(domain.MediaKindMovie, task, nil, nil)
	second := Parse(domain.MediaKindMovie, task, nil, nil)
	require.Equal(t, first, second)
}

func TestInferSeriesPrecedence(t *testing.T) {
	seriesSection := domain.Section{ID: "s1", Name: "Series", Category: domain.SectionSeries}
	watchingSection := domain.Section{ID: "s2", Name: "Watching Now", Category: domain.SectionWatchingNow}
	plainSection := domain.Section{ID: "s3", Name: "Watchlist", Category: domain.SectionWatchlist}

	subtasks := []domain.Task{
		{ID: "c1", Content: "сезон 1", ParentID: "1"},
		{ID: "c2", Content: "Season 2", ParentID: "1"},
		{ID: "c3", Content: "2 сезон, finale", ParentID: "1"},
	}

	t.Run("series section wins without subtasks", func(t *testing.T) {
		item := Parse(domain.MediaKindMovie, domain.Task{ID: "1", Content: "Fargo", SectionID: "s1"}, nil, sectionTable(seriesSection))
		assert.True(t, item.IsSeries)
		assert.Zero(t, item.Episodes)
	})

	t.Run("subtasks imply series and counts", func(t *testing.T) {
		item := Parse(domain.MediaKindMovie, domain.Task{ID: "1", Content: "Fargo", SectionID: "s3"}, subtasks, sectionTable(plainSection))
		assert.True(t, item.IsSeries)
		assert.Equal(t, 3, item.Episodes)
		assert.Equal(t, 2, item.Seasons)
	})

	t.Run("watching now without subtasks is a movie", func(t *testing.T) {
		item := Parse(domain.MediaKindMovie, domain.Task{ID: "1", Content: "Dune", SectionID: "s2"}, nil, sectionTable(watchingSection))
		assert.False(t, item.IsSeries)
	})

	t.Run("watching now with subtasks stays a series", func(t *testing.T) {
		item := Parse(domain.MediaKindMovie, domain.Task{ID: "1", Content: "Fargo", SectionID: "s2"}, subtasks, sectionTable(watchingSection))
		assert.True(t, item.IsSeries)
	})

	t.Run("books never become series", func(t *testing.T) {
		item := Parse(domain.MediaKindBook, domain.Task{ID: "1", Content: "Dune", SectionID: "s1"}, subtasks, sectionTable(seriesSection))
		assert.False(t, item.IsSeries)
	})
}

func TestParseDescription(t *testing.T) {
	task := domain.Task{
		ID:      "1",
		Content: "Fargo (1996)",
		Description: "кинопоиск: 8.0\n" +
			"IMDb 8.1/10\n" +
			"режиссёр: Joel Coen\n" +
			"жанр: crime\n" +
			"\n" +
			"recommended by Alex",
	}
	item := Parse(domain.MediaKindMovie, task, nil, nil)

	assert.InDelta(t, 8.0, item.KinopoiskRating, 0.001)
	assert.InDelta(t, 8.1, item.IMDBRating, 0.001)
	assert.Equal(t, "Joel Coen", item.Director)
	assert.Equal(t, "crime", item.Genre)
	assert.Equal(t, "recommended by Alex", item.Reason, "metadata lines must not leak into the reason")
}

func TestParseDescriptionBook(t *testing.T) {
	task := domain.Task{
		ID:      "1",
		Content: "Дюна",
		Description: "автор: Frank Herbert\n" +
			"livelib: 4,5\n" +
			"страницы: 704",
	}
	item := Parse(domain.MediaKindBook, task, nil, nil)

	assert.Equal(t, "Frank Herbert", item.Author)
	assert.InDelta(t, 4.5, item.LiveLibRating, 0.001, "comma decimal separator must parse")
	assert.Equal(t, 704, item.Pages)
	assert.Empty(t, item.Reason)
}

func TestParseDescriptionDoesNotOverrideTitleClause(t *testing.T) {
	task := domain.Task{
		ID:          "1",
		Content:     "Dune — Frank Herbert",
		Description: "автор: Somebody Else",
	}
	item := Parse(domain.MediaKindBook, task, nil, nil)
	assert.Equal(t, "Frank Herbert", item.Author, "title clause takes precedence over description")
}

func TestParseAudiobookLabel(t *testing.T) {
	book := Parse(domain.MediaKindBook, domain.Task{ID: "1", Content: "Dune", Labels: []string{"Аудиокнига"}}, nil, nil)
	assert.True(t, book.IsAudiobook)

	movie := Parse(domain.MediaKindMovie, domain.Task{ID: "1", Content: "Dune", Labels: []string{"audio"}}, nil, nil)
	assert.False(t, movie.IsAudiobook, "audiobook flag only applies to books")

	plain := Parse(domain.MediaKindBook, domain.Task{ID: "1", Content: "Dune", Labels: []string{"favorite"}}, nil, nil)
	assert.False(t, plain.IsAudiobook)
}

func TestParsePagesShortForm(t *testing.T) {
	item := Parse(domain.MediaKindBook, domain.Task{ID: "1", Content: "Dune", Description: "704 стр."}, nil, nil)
	assert.Equal(t, 704, item.Pages)
}
