// Package api is the HTTP client for the memescope analytics backend.
//
// Every method takes a context; cancelling it aborts the request and the
// returned error satisfies IsCanceled. Non-2xx responses are reported as
// *StatusError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/memescope/internal/model"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:5174/api"

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// IsCanceled reports whether err was caused by cancelling the request's
// context, as opposed to a server or network failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout applies to collection calls only. Analysis requests are never
	// timed out by the client; they end when their context is cancelled.
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	UserAgent     string
}

// Client talks to the backend.
type Client struct {
	base       string
	analyze    *http.Client
	collection *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// New creates a Client. Zero options fall back to defaults.
func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "memescope/0.1"
	}
	return &Client{
		base:       base,
		analyze:    &http.Client{},
		collection: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		userAgent:  ua,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.base
}

type coinRequest struct {
	Coin string `json:"coin"`
}

// Analyze runs POST /analyze for coin.
func (c *Client) Analyze(ctx context.Context, coin string) (*model.Analysis, error) {
	var out model.Analysis
	if err := c.do(ctx, c.analyze, http.MethodPost, "/analyze", coinRequest{Coin: coin}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History runs GET /history.
func (c *Client) History(ctx context.Context) ([]model.HistoryEntry, error) {
	var out []model.HistoryEntry
	if err := c.do(ctx, c.collection, http.MethodGet, "/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Favorites runs GET /favorites.
func (c *Client) Favorites(ctx context.Context) ([]model.Favorite, error) {
	var out []model.Favorite
	if err := c.do(ctx, c.collection, http.MethodGet, "/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddFavorite runs POST /favorites.
func (c *Client) AddFavorite(ctx context.Context, coin string) error {
	return c.do(ctx, c.collection, http.MethodPost, "/favorites", coinRequest{Coin: coin}, nil)
}

// RemoveFavorite runs DELETE /favorites/{coin}. The coin is lower-cased.
func (c *Client) RemoveFavorite(ctx context.Context, coin string) error {
	path := "/favorites/" + url.PathEscape(strings.ToLower(coin))
	return c.do(ctx, c.collection, http.MethodDelete, path, nil, nil)
}

// Portfolio runs GET /portfolio.
func (c *Client) Portfolio(ctx context.Context) ([]model.Holding, error) {
	var out []model.Holding
	if err := c.do(ctx, c.collection, http.MethodGet, "/portfolio", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddHolding runs POST /portfolio.
func (c *Client) AddHolding(ctx context.Context, form model.HoldingForm) (*model.Holding, error) {
	var out model.Holding
	if err := c.do(ctx, c.collection, http.MethodPost, "/portfolio", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveHolding runs DELETE /portfolio/{id}.
func (c *Client) RemoveHolding(ctx context.Context, id int64) error {
	return c.do(ctx, c.collection, http.MethodDelete, "/portfolio/"+strconv.FormatInt(id, 10), nil, nil)
}

// Performance runs GET /portfolio/performance.
func (c *Client) Performance(ctx context.Context) (*model.Performance, error) {
	var out model.Performance
	if err := c.do(ctx, c.collection, http.MethodGet, "/portfolio/performance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("rate limit: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
