// Package deejay retrieves now-playing information from the Radio
// Deejay "onair" endpoints.
package deejay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultOnAirURL is the main Radio Deejay now-playing endpoint.
	DefaultOnAirURL = "https://www.deejay.it/api/pub/v2/all/gdwc-audio-player/onair?format=json"

	// DefaultLinettiURL is the metadata endpoint for the Linetti web
	// channel, which uses a different payload shape.
	DefaultLinettiURL = "https://streamcdnm6-4c4b867c89244861ac216426883d1ad0.msvdn.net/webradio/metadata/deejaywfmlinus.json"

	// DefaultUserAgent is browser-like for CDN/WAF compatibility.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 radiowatch/1.0"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 8 * time.Second

	// DefaultCacheTTL debounces lookups, including failed ones.
	DefaultCacheTTL = 20 * time.Second
)

// Client queries the Deejay onair APIs. Which endpoint a station maps to
// depends only on its name: Linetti channels carry "linetti" in the name.
type Client struct {
	onAirURL   string
	linettiURL string
	userAgent  string
	httpClient *http.Client
	cacheTTL   time.Duration

	mu    sync.Mutex
	cache map[string]cachedTitle // keyed by endpoint URL
}

type cachedTitle struct {
	title     string
	fetchedAt time.Time
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithOnAirURL sets a custom main endpoint (useful for testing).
func WithOnAirURL(url string) Option {
	return func(c *Client) { c.onAirURL = url }
}

// WithLinettiURL sets a custom Linetti endpoint (useful for testing).
func WithLinettiURL(url string) Option {
	return func(c *Client) { c.linettiURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithCacheTTL sets the title cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// NewClient creates a Radio Deejay API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		onAirURL:   DefaultOnAirURL,
		linettiURL: DefaultLinettiURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		cacheTTL:   DefaultCacheTTL,
		cache:      make(map[string]cachedTitle),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// onAirResponse is the main endpoint payload.
type onAirResponse struct {
	Title string `json:"title"`
}

// linettiResponse is the Linetti endpoint payload.
type linettiResponse struct {
	JSON struct {
		Now struct {
			Artist string `json:"artist"`
			Title  string `json:"title"`
		} `json:"now"`
	} `json:"json"`
}

// Title returns the current Deejay track. Empty results are cached too,
// to debounce repeated failing requests.
func (c *Client) Title(ctx context.Context, station string) (string, error) {
	linetti := strings.Contains(strings.ToLower(station), "linetti")
	url := c.onAirURL
	if linetti {
		url = c.linettiURL
	}

	c.mu.Lock()
	if entry, ok := c.cache[url]; ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		c.mu.Unlock()
		return entry.title, nil
	}
	c.mu.Unlock()

	title, err := c.fetch(ctx, url, linetti)
	if err != nil {
		title = ""
	}

	c.mu.Lock()
	c.cache[url] = cachedTitle{title: title, fetchedAt: time.Now()}
	c.mu.Unlock()

	return title, err
}

func (c *Client) fetch(ctx context.Context, url string, linetti bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if linetti {
		var payload linettiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		now := payload.JSON.Now
		if now.Artist != "" && now.Title != "" {
			return strings.TrimSpace(now.Artist + " - " + now.Title), nil
		}
		return strings.TrimSpace(now.Title), nil
	}

	var payload onAirResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(payload.Title), nil
}
