package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"year removed", "Solaris (1972)", "Solaris"},
		{"trailing dash clause removed", "Solaris — Tarkovsky", "Solaris"},
		{"year then clause", "Solaris (1972) — rewatch", "Solaris"},
		{"in-word hyphen survives", "Spider-Man", "Spider-Man"},
		{"spaced hyphen clause removed", "Dune - recommended by Alex", "Dune"},
		{"quotes stripped", "«Мастер и Маргарита»", "Мастер и Маргарита"},
		{"volume marker", "The Expanse #3", "The Expanse"},
		{"vol marker", "Sandman Vol. 2", "Sandman"},
		{"russian volume marker", "Дюна Том 2", "Дюна"},
		{"whitespace collapsed", "The   Wire", "The Wire"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{"Solaris (1972) — Tarkovsky", "Spider-Man", "«Дюна» Том 2"}
	for _, in := range inputs {
		once := Clean(in)
		require.Equal(t, once, Clean(once), "Clean must be idempotent for %q", in)
	}
}

func TestTranslate(t *testing.T) {
	got, ok := Translate("Фарго")
	require.True(t, ok)
	assert.Equal(t, "Fargo", got)

	// Lookup is case-insensitive on the source side
	got, ok = Translate("фарго")
	require.True(t, ok)
	assert.Equal(t, "Fargo", got)

	got, ok = Translate("Some Unknown Title")
	assert.False(t, ok)
	assert.Equal(t, "Some Unknown Title", got)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "amelie", Fold("Amélie!"))
	assert.Equal(t, Fold("Amélie"), Fold("amelie"))
	assert.Equal(t, "spiderman", Fold("Spider-Man"))
	assert.Equal(t, "the wire", Fold("  The   Wire  "))
	assert.Equal(t, "фарго", Fold("Фарго"))
}

func TestHasCyrillic(t *testing.T) {
	assert.True(t, HasCyrillic("Левиафан"))
	assert.True(t, HasCyrillic("Fargo сезон 2"))
	assert.False(t, HasCyrillic("Fargo"))
	assert.False(t, HasCyrillic(""))
}
