package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent identifies outbound requests made by the pipeline.
const DefaultUserAgent = "seoshell-prerender/1"

// DefaultMaxBodySize caps how much of a single response is read into memory.
const DefaultMaxBodySize = 16 << 20

// ErrNoContentBase is returned by NewClient when no content base is configured.
var ErrNoContentBase = errors.New("content: no content base configured")

// ErrBodyTooLarge is returned when a response exceeds the client's body limit.
var ErrBodyTooLarge = errors.New("content: response body too large")

// StatusError reports a non-2xx response from the content backend.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content: GET %s: HTTP %d", e.URL, e.Code)
}

// Client fetches the post index and Markdown bodies from a content base.
//
// The Fetch* methods return errors and are meant for build tools. Index and
// Markdown swallow failures (after logging them) for the request path, where
// a missing post list only means skipping the enhancement.
type Client struct {
	base      string
	indexURL  string
	http      *http.Client
	logger    *slog.Logger
	userAgent string
	maxBody   int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for outbound requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithIndexURL overrides the index location (default <base>/index.json).
func WithIndexURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.indexURL = u
		}
	}
}

// WithLogger sets the logger used by the soft fetch methods.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent to the content backend.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the largest response body the client accepts.
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// NewClient creates a Client for the given content base URL.
func NewClient(base string, opts ...ClientOption) (*Client, error) {
	base = normalizeBase(base)
	if base == "" {
		return nil, ErrNoContentBase
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("content: parse content base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content: content base %q must be an http(s) URL", base)
	}
	c := &Client{
		base:      base,
		indexURL:  base + "index.json",
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    slog.Default(),
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Base returns the normalized content base (always ending in "/").
func (c *Client) Base() string {
	return c.base
}

// MarkdownURL returns the URL of a post's Markdown source.
func (c *Client) MarkdownURL(file string) string {
	return c.base + url.PathEscape(file)
}

// FetchIndex downloads and decodes the post index.
func (c *Client) FetchIndex(ctx context.Context) ([]Post, error) {
	body, err := c.get(ctx, c.indexURL)
	if err != nil {
		return nil, err
	}
	var posts []Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("content: decode index %s: %w", c.indexURL, err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// FetchMarkdown downloads the raw Markdown body of file.
func (c *Client) FetchMarkdown(ctx context.Context, file string) (string, error) {
	body, err := c.get(ctx, c.MarkdownURL(file))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Index returns the post index. When it cannot be fetched the failure is
// logged and Index returns an empty index with ok false, so callers can
// tell an outage from a blog with no posts.
func (c *Client) Index(ctx context.Context) (posts []Post, ok bool) {
	posts, err := c.FetchIndex(ctx)
	if err != nil {
		c.logger.Warn("fetch post index", "url", c.indexURL, "err", err)
		return []Post{}, false
	}
	return posts, true
}

// Markdown returns the Markdown body of file. ok is false if it could not be fetched.
func (c *Client) Markdown(ctx context.Context, file string) (md string, ok bool) {
	md, err := c.FetchMarkdown(ctx, file)
	if err != nil {
		c.logger.Warn("fetch markdown", "file", file, "err", err)
		return "", false
	}
	return md, true
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("content: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", u, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, u, c.maxBody)
	}
	return body, nil
}
