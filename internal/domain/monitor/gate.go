package monitor

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// minTitleLength rejects junk like "-" or ".." that some backends
	// emit between tracks.
	minTitleLength = 3
	// placeholderMarker appears in backend filler titles ("Unknown track").
	placeholderMarker = "unknown"
)

// Announcement is one accepted track-change notification.
type Announcement struct {
	Title   string
	Station string
	Command bool
	At      time.Time
}

// Sink receives accepted announcements. Implementations must not block
// the monitor task for long.
type Sink interface {
	Announce(a Announcement)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(a Announcement)

// Announce calls f.
func (f SinkFunc) Announce(a Announcement) { f(a) }

// Gate is the last line of defense against duplicate or junk
// announcements. Unlike State it is process-scoped: its memory survives
// station switches, so hopping away from a station and back does not
// re-announce the track that was playing all along. It also covers the
// command path that bypasses the polling state machine entirely.
//
// Safe for concurrent use: during a station switch the exiting task's
// final announcement can overlap the new task's first one.
type Gate struct {
	mu sync.Mutex

	lastTitle   string // normalized
	lastStation string
	lastAt      time.Time

	repeats map[repeatKey]int
}

type repeatKey struct {
	title   string
	station string
}

// NewGate creates an empty announce gate.
func NewGate() *Gate {
	return &Gate{repeats: make(map[repeatKey]int)}
}

// ShouldAnnounce decides whether a candidate is worth surfacing and, when
// it is, records it as the last reply. Command-triggered candidates are
// always accepted and reset the repeat counter for their (title, station)
// pair: an explicit user action always gets a response. Automatic
// candidates are rejected when they repeat the last reply or when the
// same (title, station) pair has already been seen since it was last new,
// which dampens backends that keep reporting a stale title for several
// polls before updating.
func (g *Gate) ShouldAnnounce(title, station string, command bool, now time.Time) bool {
	normalized := Normalize(title)
	if utf8.RuneCountInString(normalized) < minTitleLength {
		return false
	}
	if strings.Contains(normalized, placeholderMarker) {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := repeatKey{title: normalized, station: station}

	if command {
		g.repeats[key] = 0
		g.acceptLocked(normalized, station, now)
		return true
	}

	if normalized == g.lastTitle && station == g.lastStation {
		return false
	}

	g.repeats[key]++
	if g.repeats[key] > 1 {
		return false
	}

	g.acceptLocked(normalized, station, now)
	return true
}

// LastReply returns the most recently accepted announcement, normalized.
func (g *Gate) LastReply() (title, station string, at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTitle, g.lastStation, g.lastAt
}

func (g *Gate) acceptLocked(title, station string, now time.Time) {
	g.lastTitle = title
	g.lastStation = station
	g.lastAt = now
}
