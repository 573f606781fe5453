package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/contriblens/contriblens/pkg/cache"
	"github.com/contriblens/contriblens/pkg/httputil"
	"github.com/contriblens/contriblens/pkg/observability"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultRawURL  = "https://github.com"
	acceptHeader   = "application/vnd.github.v3+json"
	userAgent      = "contriblens"
)

// Client provides access to the GitHub API with quota guarding, response
// caching, and automatic retries on transient failures.
//
// Every API call passes through do, the single choke point: it refuses
// preemptively when the tracker says the next call would dip into the safety
// buffer, observes rate-limit headers on every response, and translates
// 403/429 into typed rate-limit errors.
type Client struct {
	http    *http.Client
	baseURL string
	rawURL  string
	token   string
	quota   *QuotaTracker
	cache   cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithRawURL overrides the base URL for raw patch fetches.
func WithRawURL(u string) Option { return func(c *Client) { c.rawURL = u } }

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCache sets the response cache backend.
func WithCache(cc cache.Cache) Option { return func(c *Client) { c.cache = cc } }

// WithQuota sets a shared quota tracker. Useful when several clients serve
// the same credential and must share one quota view.
func WithQuota(q *QuotaTracker) Option { return func(c *Client) { c.quota = q } }

// NewClient creates a GitHub API client. Pass an empty token for
// unauthenticated requests (lower rate limits, same request shape).
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		rawURL:  defaultRawURL,
		token:   token,
		cache:   cache.NewNullCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.quota == nil {
		c.quota = NewQuotaTracker(token)
	}
	return c
}

// Quota returns the client's quota tracker.
func (c *Client) Quota() *QuotaTracker { return c.quota }

// do performs a guarded GET against the API.
//
// Pre-flight: a known remaining count at or under the safety buffer fails
// with *GuardError before any network traffic. Headers are observed on every
// response, success or failure. Transient network errors and 5xx responses
// are retried with backoff before surfacing.
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	if c.quota.ShouldGuard() {
		gerr := c.guardErr()
		observability.API().OnGuard(ctx, gerr.Remaining)
		return nil, gerr
	}

	var resp *http.Response
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("User-Agent", userAgent)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		observability.API().OnRequest(ctx, url)
		start := time.Now()
		r, err := c.http.Do(req)
		if err != nil {
			return httputil.Retryable(err)
		}
		observability.API().OnResponse(ctx, url, r.StatusCode, time.Since(start))
		c.quota.Observe(r.Header)

		switch {
		case r.StatusCode == http.StatusForbidden || r.StatusCode == http.StatusTooManyRequests:
			r.Body.Close()
			return c.rateLimitErr(r.Header)
		case r.StatusCode >= 500:
			r.Body.Close()
			return httputil.Retryable(&APIError{StatusCode: r.StatusCode, Status: http.StatusText(r.StatusCode)})
		case r.StatusCode < 200 || r.StatusCode >= 300:
			r.Body.Close()
			return &APIError{StatusCode: r.StatusCode, Status: http.StatusText(r.StatusCode)}
		}

		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// get performs a guarded GET on an API path and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// cached reads v from the cache by key, falling back to fetch and storing
// the result. Cache failures are ignored; the API is the source of truth.
func (c *Client) cached(ctx context.Context, key string, ttl time.Duration, v any, fetch func() error) error {
	keyType, _, _ := strings.Cut(key, ":")

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		if json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, keyType)
			return nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	if err := fetch(); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, ttl)
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	return nil
}

// RawText fetches plain text from the raw base URL (commit patches). These
// requests hit github.com, not the API, so they bypass the guard and do not
// feed the quota tracker.
func (c *Client) RawText(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rawURL+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// User fetches a user's public profile. Profiles change rarely, so results
// are cached; repeat enrichments of the same crowd do not re-spend quota.
func (c *Client) User(ctx context.Context, login string) (*Profile, error) {
	var p Profile
	err := c.cached(ctx, cache.Key("user", login), cache.ProfileTTL, &p, func() error {
		return c.get(ctx, "/users/"+login, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) guardErr() *GuardError {
	remaining, _ := c.quota.Remaining()
	return &GuardError{Remaining: remaining, ResetIn: c.quota.UntilReset()}
}

// rateLimitErr builds a RateLimitError from the reset header when present.
// The wait estimate is clamped to at least one second.
func (c *Client) rateLimitErr(h http.Header) *RateLimitError {
	if v := h.Get("x-ratelimit-reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			wait := max(time.Until(time.Unix(epoch, 0)), time.Second)
			return &RateLimitError{ResetIn: wait, HasReset: true}
		}
	}
	return &RateLimitError{}
}
