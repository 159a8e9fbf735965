// Package content talks to the remote content API that backs every page of
// the site.
//
// Read operations are fail-soft: transport errors, non-2xx statuses and
// malformed bodies are logged and counted, then replaced by an empty result.
// Only SubmitJobApplication reports errors to its caller.
package content

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
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mosaic-hrd/website/internal/cache"
	"github.com/mosaic-hrd/website/internal/metrics"
)

const (
	// DefaultBaseURL is the production content API.
	DefaultBaseURL = "https://app.mosaic-hrd.org/api"

	defaultTimeout    = 10 * time.Second
	defaultRevalidate = time.Hour
	maxBodyBytes      = 16 << 20
)

// Options configures a Client. Zero values fall back to production defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Revalidate time.Duration
	Store      cache.Store
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	revalidate time.Duration
	store      cache.Store
	http       *http.Client
	logger     *slog.Logger
	group      singleflight.Group
}

// New returns a Client for opts.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("content: invalid base url %q: %w", opts.BaseURL, err)
	}

	c := &Client{
		baseURL:    base,
		timeout:    opts.Timeout,
		revalidate: opts.Revalidate,
		store:      opts.Store,
		http:       opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.revalidate <= 0 {
		c.revalidate = defaultRevalidate
	}
	if c.store == nil {
		c.store = cache.Noop{}
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the wrapper every content API response uses.
type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
}

// statusError is returned for non-2xx responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// get issues a cached, coalesced GET and returns the envelope's data member.
func (c *Client) get(ctx context.Context, label, path string, query url.Values, locale string) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	key := locale + "|" + target

	if body, ok, err := c.store.Get(ctx, key); err == nil && ok {
		if env, err := decodeEnvelope(body); err == nil {
			metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheHit).Inc()
			return env.Data, nil
		}
	} else if err != nil {
		c.logger.WarnContext(ctx, "content cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheMiss).Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx, label, key, target, locale)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}

func (c *Client) fetch(ctx context.Context, label, key, target, locale string) (json.RawMessage, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", target, err)
	}
	setJSONHeaders(req, locale)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(label, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(label, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues(label, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("GET %s: %w", target, &statusError{code: resp.StatusCode})
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(label, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(label, metrics.OutcomeOK).Inc()

	if err := c.store.Set(ctx, key, body, c.revalidate); err != nil {
		c.logger.WarnContext(ctx, "content cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return env.Data, nil
}

func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func setJSONHeaders(req *http.Request, locale string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", locale)
}

// logFailure records a swallowed read error.
func (c *Client) logFailure(ctx context.Context, label, locale string, err error) {
	if errors.Is(err, context.Canceled) {
		c.logger.DebugContext(ctx, "content request abandoned", slog.String("collection", label))
		return
	}
	c.logger.WarnContext(ctx, "content request failed",
		slog.String("collection", label),
		slog.String("locale", locale),
		slog.Any("error", err),
	)
}

// object decodes raw as a JSON object. Anything else yields an empty map.
func object(raw json.RawMessage) map[string]json.RawMessage {
	m := map[string]json.RawMessage{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return m
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]json.RawMessage{}
	}
	return m
}

// isArray reports whether raw holds a JSON array.
func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// isNull reports whether raw is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
