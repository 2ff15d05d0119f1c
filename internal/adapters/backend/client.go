// internal/adapters/backend/client.go
package backend

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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/ports"
)

// ErrSessionExpired is returned when the backend answers 401; the injected
// session handler has already been invoked by then.
var ErrSessionExpired = errors.New("session expired")

// SessionExpiredHandler is called once per 401 response so the embedding
// application can reset its session (token wipe, login redirect).
type SessionExpiredHandler func()

// Config holds HTTP client configuration
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is the HTTP adapter for the shop's REST API. It attaches the bearer
// credential and a correlation id to every request and maps 401 responses to
// the session-expiry flow.
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	logger    *slog.Logger
	onExpired SessionExpiredHandler
}

// Statically assert that *Client implements the BackendClient port.
var _ ports.BackendClient = (*Client)(nil)

// NewClient creates a new backend client. onExpired may be nil.
func NewClient(cfg Config, logger *slog.Logger, onExpired SessionExpiredHandler) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		http:      &http.Client{Timeout: timeout},
		logger:    logger.With(slog.String("adapter", "backend")),
		onExpired: onExpired,
	}
}

// ListCollections fetches the full collection list
func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var out []domain.Collection
	if err := c.do(ctx, http.MethodGet, "/collections", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCollection pushes a full collection record and returns the canonical
// updated copy
func (c *Client) UpdateCollection(ctx context.Context, collection domain.Collection) (*domain.Collection, error) {
	var out domain.Collection
	path := fmt.Sprintf("/collections/%d", collection.ID)
	if err := c.do(ctx, http.MethodPut, path, nil, collection, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListItems fetches the items belonging to one collection
func (c *Client) ListItems(ctx context.Context, collectionID int64) ([]domain.Item, error) {
	query := url.Values{"collection_id": {strconv.FormatInt(collectionID, 10)}}
	var out []domain.Item
	if err := c.do(ctx, http.MethodGet, "/items", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrders fetches the full order list
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration_ms", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onExpired != nil {
			c.onExpired()
		}
		return ErrSessionExpired
	}
	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
