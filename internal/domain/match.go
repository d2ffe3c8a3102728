package domain

// MovieMatch is the normalized TMDB metadata for one movie or series.
// Details and Providers are independently fetched sub-lookups; either may
// be nil on a match that has not been expanded yet.
type MovieMatch struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"originalTitle,omitempty"`
	PosterPath    string  `json:"posterPath,omitempty"`
	BackdropPath  string  `json:"backdropPath,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	VoteCount     int64   `json:"voteCount,omitempty"`
	Popularity    float64 `json:"popularity,omitempty"`
	Year          int     `json:"year,omitempty"`
	IsSeries      bool    `json:"isSeries,omitempty"`

	Details   *MovieDetails   `json:"details,omitempty"`
	Providers *WatchProviders `json:"providers,omitempty"`
}

// MovieDetails carries the expanded TMDB record
type MovieDetails struct {
	Overview  string   `json:"overview,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Cast      []string `json:"cast,omitempty"`
	Director  string   `json:"director,omitempty"`
	Runtime   int      `json:"runtime,omitempty"` // minutes, 0 = unknown
	Countries []string `json:"countries,omitempty"`
}

// WatchProviders lists streaming availability for one region
type WatchProviders struct {
	Region string   `json:"region"`
	Stream []string `json:"stream,omitempty"`
	Rent   []string `json:"rent,omitempty"`
	Buy    []string `json:"buy,omitempty"`
}

// BookSource identifies which provider produced a book match
type BookSource string

const (
	BookSourceOpenLibrary BookSource = "openlibrary"
	BookSourceGoogleBooks BookSource = "googlebooks"
	BookSourceMerged      BookSource = "merged"
)

// BookMatch is the normalized book metadata, possibly merged from the
// primary provider and the cover fallback.
type BookMatch struct {
	ID       string     `json:"id"` // Open Library work key or Google volume id
	Title    string     `json:"title"`
	Author   string     `json:"author,omitempty"`
	CoverURL string     `json:"coverUrl,omitempty"`
	Rating   float64    `json:"rating,omitempty"`
	Year     int        `json:"year,omitempty"`
	Pages    int        `json:"pages,omitempty"`
	Source   BookSource `json:"source,omitempty"`
}

// HasCover reports whether the match carries a usable cover image
func (b *BookMatch) HasCover() bool {
	return b != nil && b.CoverURL != ""
}
