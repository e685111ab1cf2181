// Package canvas is a read-only client for the Canvas LMS REST API. Client
// implements syncer.Fetcher, turning each record category into one or more
// paginated list requests.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tableflip.dev/coursework/pkg/record"
)

const (
	// DefaultUserAgent identifies the client to the server.
	DefaultUserAgent = "coursework"
	// PerPage is the page size requested from list endpoints.
	PerPage = 50

	apiPrefix        = "/api/v1"
	maxErrorBody     = 4 << 10
	defaultRetry     = time.Second
	courseListMaxAge = time.Minute
)

// Options tune a Client. The zero value is usable.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	Logger     *zap.Logger
	// Now is the clock used for status derivation and calendar windows.
	Now func() time.Time
}

// Client talks to one Canvas instance with one bearer token.
type Client struct {
	base      *url.URL
	token     string
	http      *http.Client
	userAgent string
	log       *zap.Logger
	now       func() time.Time

	group     singleflight.Group
	mu        sync.Mutex
	courses   []record.Course
	coursesAt time.Time
}

// New validates baseURL and returns a client for it.
func New(baseURL, token string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("canvas: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("canvas: invalid base URL %q", baseURL)
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	c := &Client{
		base:      u,
		token:     strings.TrimSpace(token),
		http:      opts.HTTPClient,
		userAgent: opts.UserAgent,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("canvas")
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// endpoint builds an absolute API URL for path with query.
func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + apiPrefix + path
	u.RawQuery = query.Encode()
	return &u
}

// get issues one authenticated GET and maps error statuses. The caller owns
// the returned body.
func (c *Client) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("canvas: build request %s: %w", u.Path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canvas: GET %s: %w", u.Path, err)
	}
	c.log.Debug("request",
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 400 {
		return resp, nil
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, &APIError{Status: resp.StatusCode, Message: "forbidden: insufficient permissions"}
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
}

// listAll follows rel="next" links until the last page and concatenates
// every page. Pagination never leaves the configured host, so the token is
// not sent elsewhere.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	next := c.endpoint(path, query)
	for next != nil {
		resp, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var page []T
		err = json.NewDecoder(resp.Body).Decode(&page)
		link := resp.Header.Get("Link")
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("canvas: decode %s: %w", next.Path, err)
		}
		out = append(out, page...)

		next = nil
		if raw := nextLink(link); raw != "" {
			u, err := c.base.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("canvas: bad pagination link %q: %w", raw, err)
			}
			if u.Host != c.base.Host {
				return nil, fmt.Errorf("canvas: pagination link %q leaves %s", raw, c.base.Host)
			}
			next = u
		}
	}
	return out, nil
}

// getOne fetches a single JSON object.
func getOne[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	u := c.endpoint(path, nil)
	resp, err := c.get(ctx, u)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("canvas: decode %s: %w", u.Path, err)
	}
	return out, nil
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs < 0 {
		return defaultRetry
	}
	return time.Duration(secs * float64(time.Second))
}

// errorMessage prefers Canvas' {"errors":[{"message":...}]} envelope and
// falls back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			if e.Message != "" {
				msgs = append(msgs, e.Message)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(string(body))
}

// isCanceled reports whether err came from the request context.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
