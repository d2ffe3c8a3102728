package tmdb

// searchResponse models the TMDB paginated search payload
type searchResponse struct {
	Page         int      `json:"page"`
	Results      []result `json:"results"`
	TotalResults int      `json:"total_results"`
}

// result is one search candidate; movie and TV payloads share the shape,
// with title/name and release_date/first_air_date varying by kind.
type result struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
}

type genreDTO struct {
	Name string `json:"name"`
}

type countryDTO struct {
	Name string `json:"name"`
}

type castDTO struct {
	Name string `json:"name"`
}

type crewDTO struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type creditsDTO struct {
	Cast []castDTO `json:"cast"`
	Crew []crewDTO `json:"crew"`
}

// detailsResponse models movie/TV details with appended credits
type detailsResponse struct {
	Overview            string       `json:"overview"`
	Genres              []genreDTO   `json:"genres"`
	Runtime             int          `json:"runtime"`          // movies
	EpisodeRunTime      []int        `json:"episode_run_time"` // series
	ProductionCountries []countryDTO `json:"production_countries"`
	Credits             creditsDTO   `json:"credits"`
	CreatedBy           []crewDTO    `json:"created_by"` // series
}

type providerDTO struct {
	ProviderName string `json:"provider_name"`
}

type regionProvidersDTO struct {
	Flatrate []providerDTO `json:"flatrate"`
	Rent     []providerDTO `json:"rent"`
	Buy      []providerDTO `json:"buy"`
}

// providersResponse models the watch/providers payload keyed by region
type providersResponse struct {
	Results map[string]regionProvidersDTO `json:"results"`
}
