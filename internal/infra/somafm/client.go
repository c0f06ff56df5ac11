// Package somafm retrieves now-playing information from the SomaFM
// public song APIs.
package somafm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the SomaFM API base URL.
	DefaultBaseURL = "https://somafm.com"

	// DefaultUserAgent identifies this client to SomaFM.
	DefaultUserAgent = "radiowatch/1.0 (+https://github.com/devnull-space/radiowatch)"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 8 * time.Second

	// DefaultTrackCacheTTL debounces per-station song lookups.
	DefaultTrackCacheTTL = 20 * time.Second

	// DefaultChannelsCacheTTL is the lifetime of the channels directory,
	// which only serves as a fallback and changes rarely.
	DefaultChannelsCacheTTL = 5 * time.Minute
)

// Client queries the SomaFM songs API with a channels.json fallback.
// Both caches are plain struct fields; one Client instance carries all
// retrieval state.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	trackTTL   time.Duration
	channelTTL time.Duration

	mu         sync.Mutex
	trackCache map[string]cachedTrack
	channels   map[string]string // channel id -> lastPlaying
	channelsAt time.Time
}

type cachedTrack struct {
	title     string
	fetchedAt time.Time
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithTrackCacheTTL sets the per-station track cache lifetime.
func WithTrackCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.trackTTL = ttl }
}

// NewClient creates a SomaFM API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		trackTTL:   DefaultTrackCacheTTL,
		channelTTL: DefaultChannelsCacheTTL,
		trackCache: make(map[string]cachedTrack),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// songsResponse is the shape of /songs/<id>.json.
type songsResponse struct {
	Songs []song `json:"songs"`
}

type song struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Album  string `json:"album"`
}

// channelsResponse is the shape of /channels.json.
type channelsResponse struct {
	Channels []channel `json:"channels"`
}

type channel struct {
	ID          string `json:"id"`
	LastPlaying string `json:"lastPlaying"`
}

// Title returns the current track for a station, trying the songs API
// first and the channels directory as fallback. Results, including empty
// ones, are cached for the track TTL so failing stations do not hammer
// the API.
func (c *Client) Title(ctx context.Context, station string) (string, error) {
	id := StationID(station)

	c.mu.Lock()
	if entry, ok := c.trackCache[id]; ok && time.Since(entry.fetchedAt) < c.trackTTL {
		c.mu.Unlock()
		return entry.title, nil
	}
	c.mu.Unlock()

	title, err := c.fromSongsAPI(ctx, id)
	if err != nil {
		log.Debug().Err(err).Str("channel", id).Msg("SomaFM songs API failed")
	}
	if title == "" {
		title = c.fromChannelsAPI(ctx, id)
	}

	c.mu.Lock()
	c.trackCache[id] = cachedTrack{title: title, fetchedAt: time.Now()}
	c.mu.Unlock()

	return title, nil
}

// fromSongsAPI queries the per-channel songs feed and formats the most
// recent entry.
func (c *Client) fromSongsAPI(ctx context.Context, id string) (string, error) {
	var payload songsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/songs/%s.json", c.baseURL, id), &payload); err != nil {
		return "", err
	}
	if len(payload.Songs) == 0 {
		return "", nil
	}

	latest := payload.Songs[0]
	switch {
	case latest.Artist != "" && latest.Title != "" && latest.Album != "":
		return fmt.Sprintf("%s - %s [%s]", latest.Artist, latest.Title, latest.Album), nil
	case latest.Artist != "" && latest.Title != "":
		return fmt.Sprintf("%s - %s", latest.Artist, latest.Title), nil
	default:
		return latest.Title, nil
	}
}

// fromChannelsAPI serves lastPlaying from the cached channel directory,
// refreshing it when stale. A failed refresh keeps the old directory.
func (c *Client) fromChannelsAPI(ctx context.Context, id string) string {
	c.mu.Lock()
	stale := c.channels == nil || time.Since(c.channelsAt) > c.channelTTL
	c.mu.Unlock()

	if stale {
		var payload channelsResponse
		if err := c.getJSON(ctx, c.baseURL+"/channels.json", &payload); err != nil {
			log.Debug().Err(err).Msg("SomaFM channels API failed")
		} else {
			directory := make(map[string]string, len(payload.Channels))
			for _, ch := range payload.Channels {
				directory[ch.ID] = ch.LastPlaying
			}
			c.mu.Lock()
			c.channels = directory
			c.channelsAt = time.Now()
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[id]
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StationID derives the API channel id from a display name: the part
// after a "SomaFM" prefix, lowercased with everything but letters and
// digits removed. URLs map to their last path segment.
func StationID(name string) string {
	s := name
	if idx := strings.Index(strings.ToLower(s), "somafm"); idx >= 0 {
		s = s[idx+len("somafm"):]
	}
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		s = parts[len(parts)-1]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
