// Package api implements the resilient HTTP layer for the card backend.
//
// Every request going through Do gets: a bearer token (an explicitly set
// Authorization header wins over the stored one), an offline short-circuit
// to the cached response body for the two catalog list endpoints, a single
// transparent token refresh on 401, and write-through caching of successful
// catalog list responses. Static asset requests bypass all of it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soylemapp/soylem-client/internal/client/netx"
	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
	"github.com/soylemapp/soylem-client/internal/common"
	"github.com/soylemapp/soylem-client/internal/logging"
)

const (
	pathAuthLogin   = "/api/auth/login"
	pathAuthRefresh = "/api/auth/refresh"
	pathCards       = "/api/cards"
	pathGlobalCards = "/api/global/cards"

	uploadsMarker = "/uploads"

	defaultTimeout = 30 * time.Second
)

type Client struct {
	baseURL string
	http    *http.Client
	meta    metadata.Repository
	checker netx.Checker
	log     logging.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(baseURL string, meta metadata.Repository, checker netx.Checker, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		meta:    meta,
		checker: checker,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured server base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// cacheKeyFor maps a request path to its response-cache key. Only the two
// list endpoints are cacheable; sub-paths such as /manifest or /changes
// must not overwrite the list caches, hence the exact match.
func cacheKeyFor(path string) string {
	switch strings.TrimRight(path, "/") {
	case pathCards:
		return metadata.KeyCardsCache
	case pathGlobalCards:
		return metadata.KeyGlobalCardsCache
	}
	return ""
}

// Do executes req with the resilience behaviors described in the package
// comment. The returned response body is always readable even when it was
// consumed for caching.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	// Static assets (images, audio) skip auth, caching and retry.
	if strings.Contains(req.URL.Path, uploadsMarker) {
		return c.http.Do(req)
	}

	ctx := req.Context()

	if req.Header.Get("Authorization") == "" {
		tok, err := c.meta.Get(ctx, metadata.KeyAccessToken)
		if err != nil {
			return nil, err
		}
		if len(tok) > 0 {
			req.Header.Set("Authorization", "Bearer "+string(tok))
		}
	}

	if !c.checker.Online(ctx) {
		if key := cacheKeyFor(req.URL.Path); key != "" {
			cached, err := c.meta.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if cached != nil {
				c.log.Info(ctx, "serving cached response", "path", req.URL.Path)
				return cachedResponse(req, cached), nil
			}
		}
		return nil, common.ErrNoConnection
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp, err = c.retryWithRefreshedToken(ctx, req, resp)
		if err != nil {
			return nil, err
		}
	}

	if key := cacheKeyFor(req.URL.Path); key != "" && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := c.meta.Set(ctx, key, body); err != nil {
			return nil, err
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}

	return resp, nil
}

// retryWithRefreshedToken attempts exactly one token refresh and one retry
// of the original request. When the refresh fails, the original 401
// response is returned untouched so the caller sees the authorization
// failure.
func (c *Client) retryWithRefreshedToken(ctx context.Context, req *http.Request, orig *http.Response) (*http.Response, error) {
	token, err := c.RefreshAccessToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "token refresh failed", "error", err)
		return orig, nil
	}

	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return orig, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)

	_ = orig.Body.Close()
	return c.http.Do(retry)
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token and persists it. On any failure both tokens are cleared, since the
// session can no longer be trusted.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	rt, err := c.meta.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if len(rt) == 0 {
		return "", common.ErrNoRefreshToken
	}

	body, err := json.Marshal(map[string]string{"refreshToken": string(rt)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAuthRefresh, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.clearTokens(ctx)
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.AccessToken != "" {
			if err := c.meta.Set(ctx, metadata.KeyAccessToken, []byte(out.AccessToken)); err != nil {
				return "", err
			}
			return out.AccessToken, nil
		}
	}

	c.clearTokens(ctx)
	return "", common.ErrUnauthorized
}

func (c *Client) clearTokens(ctx context.Context) {
	_ = c.meta.Delete(ctx, metadata.KeyAccessToken)
	_ = c.meta.Delete(ctx, metadata.KeyRefreshToken)
}

// cachedResponse wraps a previously cached body in a synthetic 200 response.
func cachedResponse(req *http.Request, body []byte) *http.Response {
	return &http.Response{
		Status:        http.StatusText(http.StatusOK),
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// doJSON performs a request through Do, enforces a 2xx status and decodes
// the response into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, contentType string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, common.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
