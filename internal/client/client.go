package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/toolsuite/pagebuilder"
)

// maxResponseSize caps response bodies to prevent OOM on a misbehaving
// backend (10MB).
const maxResponseSize = 10 * 1024 * 1024

// PageComponents is the transport contract the editor state machine depends
// on. One method per backend endpoint.
type PageComponents interface {
	ListByPage(ctx context.Context, pageKey string) ([]pagebuilder.Section, error)
	Update(ctx context.Context, id int64, patch UpdatePatch) (pagebuilder.Section, error)
	Duplicate(ctx context.Context, id int64) (pagebuilder.Section, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, items []pagebuilder.ReorderItem) error
}

// UpdatePatch is a partial update body. Nil fields are omitted from the wire
// so the backend only touches what the editor actually changed.
type UpdatePatch struct {
	ComponentData  map[string]any      `json:"component_data,omitempty"`
	IsActive       *bool               `json:"is_active,omitempty"`
	Status         *pagebuilder.Status `json:"status,omitempty"`
	ComponentName  *string             `json:"component_name,omitempty"`
	ComponentOrder *int                `json:"component_order,omitempty"`
}

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the page-components admin REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	retryCfg   RetryConfig
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHeader adds a header to every request (e.g. an API token).
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithRetry overrides the retry configuration used by ListByPage.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retryCfg = cfg
	}
}

// New creates a client for the given base URL (e.g. "https://api.example.com").
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers:  make(map[string]string),
		retryCfg: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListByPage fetches all sections for a page, any status (admin view).
// This is the only call wrapped with transport-level retry: it is idempotent
// and runs on every load.
func (c *Client) ListByPage(ctx context.Context, pageKey string) ([]pagebuilder.Section, error) {
	return withRetry(ctx, "list", c.retryCfg, func(ctx context.Context) ([]pagebuilder.Section, error) {
		query := url.Values{"page_key": {pageKey}}.Encode()
		env, err := c.do(ctx, "list", http.MethodGet, "/page-components/admin?"+query, nil)
		if err != nil {
			return nil, err
		}
		var sections []pagebuilder.Section
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &sections); err != nil {
				return nil, &TransportError{Operation: "list", Err: fmt.Errorf("decode sections: %w", err)}
			}
		}
		return sections, nil
	})
}

// Update sends a partial update for one section.
func (c *Client) Update(ctx context.Context, id int64, patch UpdatePatch) (pagebuilder.Section, error) {
	env, err := c.do(ctx, "update", http.MethodPut, fmt.Sprintf("/page-components/admin/%d", id), patch)
	if err != nil {
		return pagebuilder.Section{}, err
	}
	return decodeSection("update", env.Data)
}

// Duplicate asks the backend to duplicate a section server-side. The new
// section's id and order are server-assigned.
func (c *Client) Duplicate(ctx context.Context, id int64) (pagebuilder.Section, error) {
	env, err := c.do(ctx, "duplicate", http.MethodPost, fmt.Sprintf("/page-components/admin/%d/duplicate", id), nil)
	if err != nil {
		return pagebuilder.Section{}, err
	}
	return decodeSection("duplicate", env.Data)
}

// Delete removes a section permanently.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, fmt.Sprintf("/page-components/admin/%d", id), nil)
	return err
}

// Reorder persists a complete replacement ordering for the page.
func (c *Client) Reorder(ctx context.Context, items []pagebuilder.ReorderItem) error {
	body := map[string]any{"items": items}
	_, err := c.do(ctx, "reorder", http.MethodPost, "/page-components/admin/reorder", body)
	return err
}

// do executes one request and normalizes the outcome: a parseable envelope
// with success=false becomes an *APIError, everything transport-shaped
// becomes *TransportError or *HTTPError.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Operation: operation, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &TransportError{Operation: operation, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Operation: operation, Err: fmt.Errorf("read response: %w", err)}
	}

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(raw[:min(len(raw), 1024)])),
			}
		}
		return nil, &TransportError{Operation: operation, Err: fmt.Errorf("decode envelope: %w", jsonErr)}
	}

	if !env.Success {
		return nil, &APIError{Operation: operation, Message: env.Message}
	}
	return &env, nil
}

func decodeSection(operation string, data json.RawMessage) (pagebuilder.Section, error) {
	var section pagebuilder.Section
	if len(data) == 0 {
		return section, &TransportError{Operation: operation, Err: fmt.Errorf("empty data in envelope")}
	}
	if err := json.Unmarshal(data, &section); err != nil {
		return section, &TransportError{Operation: operation, Err: fmt.Errorf("decode section: %w", err)}
	}
	return section, nil
}
