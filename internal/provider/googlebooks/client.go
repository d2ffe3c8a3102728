// Package googlebooks is the secondary, cover-focused book provider; it is
// only consulted when the primary provider produced no usable cover image.
package googlebooks

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
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	defaultTimeout = 10 * time.Second
)

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	PublishedDate string     `json:"publishedDate"`
	PageCount     int        `json:"pageCount"`
	AverageRating float64    `json:"averageRating"`
	ImageLinks    imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// Client provides access to the Google Books volume search
type Client struct {
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

// New creates a Google Books client
func New(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the first volume carrying a thumbnail, or nil when none of
// the results has one.
func (c *Client) Search(ctx context.Context, title, author string) (*domain.BookMatch, error) {
	terms := `intitle:"` + title + `"`
	if author != "" {
		terms += ` inauthor:"` + author + `"`
	}
	q := url.Values{"q": {terms}, "maxResults": {"5"}}

	reqURL := c.baseURL + "/volumes?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("googlebooks request", "title", title, "author", author)

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
		return nil, fmt.Errorf("googlebooks: unexpected status code %d", resp.StatusCode)
	}

	var vr volumesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("googlebooks: failed to parse volumes response: %w", err)
	}

	for _, v := range vr.Items {
		thumb := v.VolumeInfo.ImageLinks.Thumbnail
		if thumb == "" {
			thumb = v.VolumeInfo.ImageLinks.SmallThumbnail
		}
		if thumb == "" {
			continue
		}
		return toMatch(v, thumb), nil
	}
	return nil, nil
}

func toMatch(v volume, thumb string) *domain.BookMatch {
	m := &domain.BookMatch{
		ID:       v.ID,
		Title:    v.VolumeInfo.Title,
		CoverURL: upgradeScheme(thumb),
		Rating:   v.VolumeInfo.AverageRating,
		Pages:    v.VolumeInfo.PageCount,
		Source:   domain.BookSourceGoogleBooks,
	}
	if len(v.VolumeInfo.Authors) > 0 {
		m.Author = v.VolumeInfo.Authors[0]
	}
	if len(v.VolumeInfo.PublishedDate) >= 4 {
		m.Year, _ = strconv.Atoi(v.VolumeInfo.PublishedDate[:4])
	}
	return m
}

// upgradeScheme rewrites the http:// thumbnail links Google still serves
func upgradeScheme(u string) string {
	return strings.Replace(u, "http://", "https://", 1)
}
