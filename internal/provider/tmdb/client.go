// Package tmdb is the movie/TV metadata provider client. Responses are
// converted to domain types at this boundary; scoring never sees DTOs.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelshelf/internal/domain"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	defaultTimeout = 10 * time.Second

	// DefaultRegion is the fallback locale for watch-provider availability
	DefaultRegion = "DE"
)

// SearchOptions narrows a title search
type SearchOptions struct {
	Year     int
	Language string // e.g. "en-US", "ru-RU"
	Series   bool   // search TV instead of movies
}

// Client provides access to the TMDB search, details and watch-providers
// endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests)
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a TMDB client
func New(apiKey string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("tmdb api key required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	query.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	default:
		return nil, fmt.Errorf("tmdb: unexpected status code %d", resp.StatusCode)
	}
}

// Search queries the localized title-search endpoint and returns candidates
// converted to domain matches.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.MovieMatch, error) {
	path := "/search/movie"
	if opts.Series {
		path = "/search/tv"
	}

	q := url.Values{"query": {query}, "include_adult": {"false"}}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Year > 0 {
		if opts.Series {
			q.Set("first_air_date_year", strconv.Itoa(opts.Year))
		} else {
			q.Set("year", strconv.Itoa(opts.Year))
		}
	}

	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("tmdb: failed to parse search response: %w", err)
	}

	matches := make([]domain.MovieMatch, 0, len(resp.Results))
	for _, r := range resp.Results {
		matches = append(matches, toMatch(r, opts.Series))
	}
	return matches, nil
}

// Details fetches the expanded record (genres, cast, runtime, countries)
// for one external id.
func (c *Client) Details(ctx context.Context, id int64, series bool) (*domain.MovieDetails, error) {
	path := fmt.Sprintf("/movie/%d", id)
	if series {
		path = fmt.Sprintf("/tv/%d", id)
	}

	body, err := c.get(ctx, path, url.Values{"append_to_response": {"credits"}})
	if err != nil {
		return nil, err
	}

	var resp detailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("tmdb: failed to parse details response: %w", err)
	}
	return toDetails(resp, series), nil
}

// WatchProviders fetches streaming availability for one region
func (c *Client) WatchProviders(ctx context.Context, id int64, series bool, region string) (*domain.WatchProviders, error) {
	if region == "" {
		region = DefaultRegion
	}
	path := fmt.Sprintf("/movie/%d/watch/providers", id)
	if series {
		path = fmt.Sprintf("/tv/%d/watch/providers", id)
	}

	body, err := c.get(ctx, path, url.Values{})
	if err != nil {
		return nil, err
	}

	var resp providersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("tmdb: failed to parse providers response: %w", err)
	}

	rp, ok := resp.Results[region]
	if !ok {
		return &domain.WatchProviders{Region: region}, nil
	}
	return &domain.WatchProviders{
		Region: region,
		Stream: providerNames(rp.Flatrate),
		Rent:   providerNames(rp.Rent),
		Buy:    providerNames(rp.Buy),
	}, nil
}

func toMatch(r result, series bool) domain.MovieMatch {
	title, original, date := r.Title, r.OriginalTitle, r.ReleaseDate
	if series {
		title, original, date = r.Name, r.OriginalName, r.FirstAirDate
	}
	return domain.MovieMatch{
		ID:            r.ID,
		Title:         title,
		OriginalTitle: original,
		PosterPath:    r.PosterPath,
		BackdropPath:  r.BackdropPath,
		Rating:        r.VoteAverage,
		VoteCount:     r.VoteCount,
		Popularity:    r.Popularity,
		Year:          yearOf(date),
		IsSeries:      series,
	}
}

func toDetails(resp detailsResponse, series bool) *domain.MovieDetails {
	d := &domain.MovieDetails{
		Overview: resp.Overview,
		Runtime:  resp.Runtime,
	}
	if series && len(resp.EpisodeRunTime) > 0 {
		d.Runtime = resp.EpisodeRunTime[0]
	}
	for _, g := range resp.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	for _, pc := range resp.ProductionCountries {
		d.Countries = append(d.Countries, pc.Name)
	}
	for i, cast := range resp.Credits.Cast {
		if i == 8 {
			break
		}
		d.Cast = append(d.Cast, cast.Name)
	}
	for _, crew := range resp.Credits.Crew {
		if crew.Job == "Director" {
			d.Director = crew.Name
			break
		}
	}
	if d.Director == "" && len(resp.CreatedBy) > 0 {
		d.Director = resp.CreatedBy[0].Name
	}
	return d
}

func providerNames(ps []providerDTO) []string {
	if len(ps) == 0 {
		return nil
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.ProviderName)
	}
	return names
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, _ := strconv.Atoi(date[:4])
	return y
}
