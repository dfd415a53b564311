// Package client talks to the garden controller's HTTP API: the zone list
// and the start/stop commands.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"garden_panel/internal/logger"
	"garden_panel/internal/models"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 5 * time.Second
	maxErrorBody   = 1 << 10

	headerRequestID = "X-Request-ID"
)

// StatusError is returned when the garden API answers with a non-2xx code.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Option configures a ZoneClient.
type Option func(*ZoneClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ZoneClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *ZoneClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *ZoneClient) { c.log = logger.OrNop(log) }
}

// ZoneClient is a client for one garden controller.
type ZoneClient struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *ZoneClient {
	c := &ZoneClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListZones fetches GET <base>/zone/.
func (c *ZoneClient) ListZones(ctx context.Context) (models.ZoneFeed, error) {
	var feed models.ZoneFeed

	resp, err := c.get(ctx, "list zones", c.baseURL+"/zone/")
	if err != nil {
		return feed, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return models.ZoneFeed{}, fmt.Errorf("list zones: decode body: %w", err)
	}
	return feed, nil
}

// StartZone sends GET <base>/start/<id>. A run length of at least one
// minute is sent as ?time=<whole minutes>; otherwise the server default
// applies.
func (c *ZoneClient) StartZone(ctx context.Context, id models.ZoneID, runLength time.Duration) error {
	u := c.baseURL + "/start/" + url.PathEscape(string(id))
	if mins := int64(runLength / time.Minute); mins > 0 {
		u += "?time=" + strconv.FormatInt(mins, 10)
	}
	return c.command(ctx, "start zone "+string(id), u)
}

// StopZone sends GET <base>/stop/<id>.
func (c *ZoneClient) StopZone(ctx context.Context, id models.ZoneID) error {
	return c.command(ctx, "stop zone "+string(id), c.baseURL+"/stop/"+url.PathEscape(string(id)))
}

func (c *ZoneClient) command(ctx context.Context, op, u string) error {
	resp, err := c.get(ctx, op, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// get issues the request and returns the response only for 2xx codes.
func (c *ZoneClient) get(ctx context.Context, op, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(headerRequestID, reqID)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("garden_request_failed", "op", op, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Debugw("garden_request",
		"op", op,
		"request_id", reqID,
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
