// Package icy retrieves now-playing titles from SHOUTcast/Icecast
// streams via in-band ICY metadata.
package icy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultUserAgent is browser-like; some stream CDNs reject plain
	// client UAs.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTimeout for one metadata fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultCacheTTL keeps the last title briefly so back-to-back polls
	// do not reopen the stream.
	DefaultCacheTTL = 20 * time.Second

	// maxMetaInt guards against absurd icy-metaint values.
	maxMetaInt = 1 << 20
)

// Provider reads ICY metadata from the stream URL bound to each station.
type Provider struct {
	client    *http.Client
	userAgent string
	cacheTTL  time.Duration
	streams   map[string]string // station -> stream URL

	mu    sync.Mutex
	cache map[string]cachedTitle
}

type cachedTitle struct {
	title     string
	fetchedAt time.Time
}

// Option is a functional option for configuring the provider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.client = client }
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Provider) { p.userAgent = ua }
}

// WithCacheTTL sets the title cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) { p.cacheTTL = ttl }
}

// NewProvider creates an ICY metadata provider. streams maps station
// names to their stream URLs.
func NewProvider(streams map[string]string, opts ...Option) *Provider {
	p := &Provider{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		cacheTTL:  DefaultCacheTTL,
		streams:   streams,
		cache:     make(map[string]cachedTitle),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Title fetches the current StreamTitle for a station, serving from the
// short-lived cache when a recent fetch exists. Empty results are cached
// too, to debounce repeated failing fetches.
func (p *Provider) Title(ctx context.Context, station string) (string, error) {
	url, ok := p.streams[station]
	if !ok {
		return "", fmt.Errorf("no stream URL for station %q", station)
	}

	p.mu.Lock()
	if entry, ok := p.cache[station]; ok && time.Since(entry.fetchedAt) < p.cacheTTL {
		p.mu.Unlock()
		return entry.title, nil
	}
	p.mu.Unlock()

	title, err := p.fetch(ctx, url)
	if err != nil {
		log.Debug().Err(err).Str("station", station).Msg("ICY metadata fetch failed")
		title = ""
	}

	p.mu.Lock()
	p.cache[station] = cachedTitle{title: title, fetchedAt: time.Now()}
	p.mu.Unlock()

	return title, err
}

// fetch opens the stream with Icy-MetaData: 1 and reads one metadata
// frame: icy-metaint audio bytes, one length byte (x16), then the
// metadata block.
func (p *Provider) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Icy-MetaData", "1")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	metaInt := resp.Header.Get("icy-metaint")
	if metaInt == "" {
		return "", fmt.Errorf("stream does not support ICY metadata")
	}

	return readStreamTitle(resp.Body, metaInt)
}

// readStreamTitle reads one ICY metadata block from the stream body.
func readStreamTitle(body io.Reader, metaIntStr string) (string, error) {
	metaInt, err := strconv.Atoi(metaIntStr)
	if err != nil || metaInt < 0 || metaInt > maxMetaInt {
		return "", fmt.Errorf("invalid icy-metaint value %q", metaIntStr)
	}

	reader := bufio.NewReader(body)

	// Skip the leading audio block.
	if _, err := io.CopyN(io.Discard, reader, int64(metaInt)); err != nil {
		return "", fmt.Errorf("skip audio block: %w", err)
	}

	lengthByte := make([]byte, 1)
	if _, err := io.ReadFull(reader, lengthByte); err != nil {
		return "", fmt.Errorf("read metadata length: %w", err)
	}

	metaLen := int(lengthByte[0]) * 16
	if metaLen == 0 {
		return "", fmt.Errorf("no metadata in frame")
	}

	metadata := make([]byte, metaLen)
	if _, err := io.ReadFull(reader, metadata); err != nil {
		return "", fmt.Errorf("read metadata block: %w", err)
	}

	title, ok := parseStreamTitle(strings.TrimRight(string(metadata), "\x00"))
	if !ok {
		return "", fmt.Errorf("no StreamTitle in metadata")
	}
	return title, nil
}

// parseStreamTitle extracts the title from an ICY metadata string of the
// form StreamTitle='...';StreamUrl='...';.
func parseStreamTitle(meta string) (string, bool) {
	const prefix = "StreamTitle='"

	start := strings.Index(meta, prefix)
	if start < 0 {
		return "", false
	}
	rest := meta[start+len(prefix):]

	end := strings.Index(rest, "';")
	if end < 0 {
		// Tolerate a missing terminator on the last field.
		end = strings.LastIndex(rest, "'")
		if end < 0 {
			return "", false
		}
	}
	return strings.TrimSpace(rest[:end]), true
}
