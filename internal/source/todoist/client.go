// Package todoist is the task-source client: read the Movies/Books
// projects, and the few write-back actions the app supports. Network-level
// failures are retried with exponential backoff; HTTP errors are surfaced
// immediately as domain sentinels.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"reelshelf/internal/domain"
)

const (
	defaultBaseURL = "https://api.todoist.com/rest/v2"
	defaultTimeout = 30 * time.Second
	userAgent      = "Reelshelf/1.0"

	retryAttempts = 3
	retryBaseWait = time.Second // 1s, 2s, 4s
)

// Client is an authenticated Todoist REST client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API endpoint; used for the optional relay and
// for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
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

// NewClient creates a Todoist client
func NewClient(token string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs an authenticated request with retry-on-network-failure.
// HTTP error statuses are not retried; they map to domain sentinels.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	// Idempotency key so a retried write is not applied twice
	requestID := ""
	if method != http.MethodGet {
		requestID = uuid.NewString()
	}

	var respBody []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", "Bearer "+c.token)
			req.Header.Set("User-Agent", userAgent)
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			if requestID != "" {
				req.Header.Set("X-Request-Id", requestID)
			}

			c.logger.Debug("todoist request", "method", method, "url", reqURL)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Warn("todoist request failed", "error", err)
				return err // network-level: retryable
			}
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if err := statusError(resp.StatusCode); err != nil {
				c.logger.Error("todoist request error", "status", resp.StatusCode, "body", string(b))
				return retry.Unrecoverable(err)
			}
			respBody = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryBaseWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceOffline, err)
	}
	return respBody, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.ErrAuthFailed
	case code == http.StatusNotFound:
		return domain.ErrItemNotFound
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code >= 500:
		return domain.ErrServerError
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}

func isDomainError(err error) bool {
	for _, sentinel := range []error{domain.ErrAuthFailed, domain.ErrItemNotFound, domain.ErrRateLimited, domain.ErrServerError} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// ListTasks returns all tasks of a project, subtasks included.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	q := url.Values{"project_id": {projectID}}
	body, err := c.do(ctx, http.MethodGet, "/tasks", q, nil)
	if err != nil {
		return nil, err
	}
	var dtos []taskDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}
	return mapTasks(dtos), nil
}

// ListSections returns the project's sections resolved to stable categories.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]domain.Section, error) {
	q := url.Values{"project_id": {projectID}}
	body, err := c.do(ctx, http.MethodGet, "/sections", q, nil)
	if err != nil {
		return nil, err
	}
	var dtos []sectionDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse sections: %w", err)
	}
	return mapSections(dtos), nil
}

// CloseTask marks a task completed
func (c *Client) CloseTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+id+"/close", nil, nil)
	return err
}

// ReopenTask undoes a completion
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+id+"/reopen", nil, nil)
	return err
}

// CreateTaskArgs describes a follow-up task
type CreateTaskArgs struct {
	Content     string
	Description string
	ProjectID   string
	SectionID   string
	DueDate     string
}

// CreateTask creates a task and returns its id
func (c *Client) CreateTask(ctx context.Context, args CreateTaskArgs) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/tasks", nil, createTaskDTO{
		Content:     args.Content,
		Description: args.Description,
		ProjectID:   args.ProjectID,
		SectionID:   args.SectionID,
		DueDate:     args.DueDate,
	})
	if err != nil {
		return "", err
	}
	var dto taskDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return "", fmt.Errorf("failed to parse created task: %w", err)
	}
	return dto.ID, nil
}

// UpdateDueDate sets or, with an empty date, clears a task's schedule
func (c *Client) UpdateDueDate(ctx context.Context, id, date string) error {
	dto := updateDueDTO{DueDate: date}
	if date == "" {
		dto.DueString = "no date"
	}
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+id, nil, dto)
	return err
}
