// Package tmdb is the gateway to the upstream metadata service.
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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "Zapit/1.0"
)

// Image sizes used by presentation
const (
	PosterSize = "w500"
	LogoSize   = "original"
)

// Client implements domain.CatalogRepository, domain.SearchRepository,
// domain.GenreRepository, and domain.AvailabilityRepository for TMDB
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	group        singleflight.Group
	mu           sync.Mutex
	flights      map[string]*flight
	cache        domain.ResponseCache
	cacheTTL     time.Duration
	logger       *slog.Logger
}

// NewClient creates a new gateway client. cache may be nil.
func NewClient(cfg config.UpstreamConfig, cache domain.ResponseCache, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(limit, burst),
		flights:      make(map[string]*flight),
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// ImageURL builds an artwork URL for a relative image path
func (c *Client) ImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + size + path
}

// Query issues one upstream request. Every returned error is a *domain.FetchError.
func (c *Client) Query(ctx context.Context, endpoint Endpoint, params Params) (*Payload, error) {
	path, err := endpoint.path(params)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchUpstreamRejected, Endpoint: string(endpoint), Err: err}
	}

	query := endpoint.values(params)
	key := path
	if len(query) > 0 {
		key = path + "?" + query.Encode()
	}

	if body, ok := c.cacheGet(ctx, key); ok {
		if payload, err := decodePayload(body); err == nil {
			c.logger.Debug("upstream cache hit", "endpoint", endpoint, "key", key)
			return payload, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchNetwork, Endpoint: string(endpoint), Err: err}
	}

	// Identical requests share one fetch. The fetch runs on a context that
	// lives as long as any caller still waits for it.
	ictx := c.join(ctx, key)
	defer c.leave(key)

	ch := c.group.DoChan(key, func() (any, error) {
		body, err := c.fetch(ictx, endpoint, key)
		if err != nil {
			return nil, err
		}
		payload, err := decodePayload(body)
		if err != nil {
			return nil, &domain.FetchError{Kind: domain.FetchParse, Endpoint: string(endpoint), Err: err}
		}
		c.cacheSet(ictx, key, body)
		return payload, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Payload), nil
	case <-ctx.Done():
		return nil, &domain.FetchError{Kind: domain.FetchNetwork, Endpoint: string(endpoint), Err: ctx.Err()}
	}
}

// flight is the shared context of the callers waiting on one key
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// join registers a caller for key and returns the shared fetch context
func (c *Client) join(ctx context.Context, key string) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++
	return f.ctx
}

// leave unregisters a caller. The last one out cancels the fetch and makes
// the key start a fresh request next time.
func (c *Client) leave(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.flights[key]
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	delete(c.flights, key)
	c.group.Forget(key)
}

// fetch performs the HTTP round trip for a cache key (path plus query)
func (c *Client) fetch(ctx context.Context, endpoint Endpoint, key string) ([]byte, error) {
	fail := func(kind domain.FetchErrorKind, status int, err error) error {
		return &domain.FetchError{Kind: kind, Endpoint: string(endpoint), Status: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, fail(domain.FetchNetwork, 0, ctx.Err())
		}
		return nil, fail(domain.FetchNetwork, 0, err)
	}

	reqURL := c.baseURL + key
	sep := "?"
	if strings.Contains(key, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+sep+"api_key="+url.QueryEscape(c.apiKey), nil)
	if err != nil {
		return nil, fail(domain.FetchNetwork, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	requestID := uuid.NewString()
	start := time.Now()
	c.logger.Debug("upstream request", "requestId", requestID, "endpoint", endpoint, "path", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fail(domain.FetchNetwork, 0, ctx.Err())
		}
		// Transport errors embed the request URL, which carries the key
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = reqURL
		}
		c.logger.Warn("upstream request failed", "requestId", requestID, "endpoint", endpoint, "error", err)
		return nil, fail(domain.FetchNetwork, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(domain.FetchNetwork, 0, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("upstream response", "requestId", requestID, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var reason error
		var e errorDTO
		if json.Unmarshal(body, &e) == nil && e.StatusMessage != "" {
			reason = fmt.Errorf("%s", e.StatusMessage)
		}
		c.logger.Warn("upstream rejected request", "requestId", requestID, "endpoint", endpoint, "status", resp.StatusCode)
		return nil, fail(domain.FetchUpstreamRejected, resp.StatusCode, reason)
	}

	return body, nil
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	return c.cache.Get(ctx, key)
}

func (c *Client) cacheSet(ctx context.Context, key string, body []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	c.cache.Set(ctx, key, body, c.cacheTTL)
}

// decodePayload parses a response envelope
func decodePayload(body []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &p, nil
}
