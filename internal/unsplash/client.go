// Package unsplash is a small client for the Unsplash photo search API.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"
	userAgent      = "Sunflower/1.0 (https://github.com/mrlokans/sunflower)"
)

// Photo is one search result.
type Photo struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	URLs        PhotoURLs `json:"urls"`
	User        User      `json:"user"`
}

type PhotoURLs struct {
	Small   string `json:"small"`
	Regular string `json:"regular,omitempty"`
}

// User is the photographer credited for a photo.
type User struct {
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Links    UserLinks `json:"links"`
}

type UserLinks struct {
	HTML string `json:"html"`
}

// AttributionURL links to the photographer's profile with the referral
// parameters Unsplash asks API clients to add.
func (u User) AttributionURL() string {
	if u.Links.HTML == "" {
		return ""
	}
	return u.Links.HTML + "?utm_source=sunflower&utm_medium=referral"
}

// SearchResponse is the body of GET /search/photos.
type SearchResponse struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Photo `json:"results"`
}

// Searcher searches photos one page at a time.
type Searcher interface {
	SearchPhotos(ctx context.Context, query string, page, perPage int) (*SearchResponse, error)
}

// Client talks to the Unsplash API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessKey   string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

// wait blocks until the next call is allowed or ctx ends. Each caller
// reserves its slot under the lock and sleeps without holding it.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	slot := r.lastCall.Add(r.interval)
	if slot.Before(now) {
		slot = now
	}
	r.lastCall = slot
	r.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMinInterval sets the minimum delay between two requests.
func WithMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = newRateLimiter(interval)
	}
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, accessKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessKey:   accessKey,
		rateLimiter: newRateLimiter(200 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasValidAccessKey reports whether a usable key is configured. Builds without
// a key carry the literal string "null".
func (c *Client) HasValidAccessKey() bool {
	return c.accessKey != "" && c.accessKey != "null"
}

// SearchPhotos runs one page of a photo search. Pages start at 1.
func (c *Client) SearchPhotos(ctx context.Context, query string, page, perPage int) (*SearchResponse, error) {
	if !c.HasValidAccessKey() {
		return nil, ErrMissingAccessKey
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	searchURL := fmt.Sprintf("%s/search/photos?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search photos: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidAccessKey
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusForbidden:
		// Unsplash answers 403 with this body when the hourly quota is used up.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if strings.Contains(string(body), "Rate Limit Exceeded") || resp.Header.Get("X-Ratelimit-Remaining") == "0" {
			return ErrRateLimited
		}
		return ErrInvalidAccessKey
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	default:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
}
