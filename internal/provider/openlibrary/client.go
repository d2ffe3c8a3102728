// Package openlibrary is the primary book-metadata provider. No API key is
// required; covers are addressed by numeric cover id or ISBN.
package openlibrary

import (
	"context"
	"encoding/json"
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
	defaultBaseURL  = "https://openlibrary.org"
	defaultCoverURL = "https://covers.openlibrary.org"
	defaultTimeout  = 10 * time.Second
	searchLimit     = 5
)

type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int64    `json:"cover_i"`
	RatingsAverage   float64  `json:"ratings_average"`
	PagesMedian      int      `json:"number_of_pages_median"`
}

// Client provides access to the Open Library search and cover endpoints
type Client struct {
	baseURL    string
	coverURL   string
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

// New creates an Open Library client
func New(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		coverURL:   defaultCoverURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries by title and optional author and returns candidates
// converted to domain matches; candidates with a cover id get a cover URL.
func (c *Client) Search(ctx context.Context, title, author string) ([]domain.BookMatch, error) {
	q := url.Values{
		"title":  {title},
		"limit":  {strconv.Itoa(searchLimit)},
		"fields": {"key,title,author_name,first_publish_year,cover_i,ratings_average,number_of_pages_median"},
	}
	if author != "" {
		q.Set("author", author)
	}

	reqURL := c.baseURL + "/search.json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("openlibrary request", "title", title, "author", author)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary: unexpected status code %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("openlibrary: failed to parse search response: %w", err)
	}

	matches := make([]domain.BookMatch, 0, len(sr.Docs))
	for _, d := range sr.Docs {
		matches = append(matches, c.toMatch(d))
	}
	return matches, nil
}

func (c *Client) toMatch(d doc) domain.BookMatch {
	m := domain.BookMatch{
		ID:     d.Key,
		Title:  d.Title,
		Rating: d.RatingsAverage,
		Year:   d.FirstPublishYear,
		Pages:  d.PagesMedian,
		Source: domain.BookSourceOpenLibrary,
	}
	if len(d.AuthorName) > 0 {
		m.Author = d.AuthorName[0]
	}
	if d.CoverID > 0 {
		m.CoverURL = c.CoverURLByID(d.CoverID)
	}
	return m
}

// CoverURLByID returns the medium-size cover image URL for a cover id
func (c *Client) CoverURLByID(id int64) string {
	return fmt.Sprintf("%s/b/id/%d-M.jpg", c.coverURL, id)
}

// CoverURLByISBN returns the medium-size cover image URL for an ISBN
func (c *Client) CoverURLByISBN(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.coverURL, url.PathEscape(isbn))
}
