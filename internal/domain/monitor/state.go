// Package monitor implements the adaptive track-change monitor: the
// lazy/active polling state machine, title normalization, the announce
// gate and the background task lifecycle.
package monitor

import (
	"strings"
	"time"
)

// Mode is the polling mode of a monitor session.
type Mode int

const (
	// ModeLazy polls at the long interval while a track plays out.
	ModeLazy Mode = iota
	// ModeActive polls at the short interval to catch the next transition.
	ModeActive
)

// String returns the mode name for logging.
func (m Mode) String() string {
	if m == ModeActive {
		return "active"
	}
	return "lazy"
}

// lazyUnchangedThreshold is how many consecutive unchanged lazy checks it
// takes before a session switches to active polling.
const lazyUnchangedThreshold = 2

// Outcome is the result of one poll transition.
type Outcome struct {
	// Announce is true when the sample should be surfaced to the consumer
	// (subject to the Gate's final say).
	Announce bool
	// Title is the display title, trimmed but not case-folded.
	Title string
	// Normalized is the canonical form used for comparisons.
	Normalized string
	// Command marks an announce forced by an explicit play/change command.
	Command bool
}

// State tracks one monitored station. A fresh State replaces the old one
// wholesale on every station change, resetting all counters; it is owned
// exclusively by the running monitor task and needs no locking.
type State struct {
	Station string

	Mode           Mode
	LazyInterval   time.Duration
	ActiveInterval time.Duration

	LastCheckedAt   time.Time
	LastAnnounced   string // normalized
	LastAnnouncedAt time.Time

	baselineSet   bool
	baselineTitle string // normalized

	unchangedLazyChecks int
	commandTriggered    bool
}

// NewState creates the monitor state for a station, deriving its poll
// intervals once via the classifier. commandTriggered marks that an
// explicit play/change command started this session; the first poll that
// observes a title consumes it and forces an announce.
func NewState(station string, c Classifier, commandTriggered bool) *State {
	lazy, active := IntervalsFor(c, station)
	return &State{
		Station:          station,
		Mode:             ModeLazy,
		LazyInterval:     lazy,
		ActiveInterval:   active,
		commandTriggered: commandTriggered,
	}
}

// CurrentInterval returns the poll interval for the current mode.
func (s *State) CurrentInterval() time.Duration {
	if s.Mode == ModeActive {
		return s.ActiveInterval
	}
	return s.LazyInterval
}

// Due reports whether the interval has elapsed since the last poll
// attempt. The task loop ticks faster than the interval to stay
// responsive to stop signals; Due gates the expensive retrieval call.
func (s *State) Due(now time.Time) bool {
	return now.Sub(s.LastCheckedAt) >= s.CurrentInterval()
}

// OnPoll runs one state machine transition for a raw title sample.
//
// An empty sample means the backend had no data this tick; that is not
// evidence of no change, so nothing moves. Otherwise the title is
// normalized and compared per mode: lazy mode tracks a baseline and
// switches to active polling after two unchanged checks, active mode
// compares against the last announced title and relaxes back to lazy as
// soon as the transition is caught. The first observation after a
// (re)start always announces so the listener hears the track already
// playing, not just the next one.
func (s *State) OnPoll(rawTitle string, now time.Time) Outcome {
	s.LastCheckedAt = now

	title := Normalize(rawTitle)
	if title == "" {
		return Outcome{}
	}
	display := strings.TrimSpace(rawTitle)

	if s.commandTriggered {
		// One-shot: consumed by the first poll that sees a title,
		// regardless of mode.
		s.commandTriggered = false
		return s.announce(display, title, now, true)
	}

	switch s.Mode {
	case ModeActive:
		if title == s.LastAnnounced {
			return Outcome{}
		}
		return s.announce(display, title, now, false)

	default: // ModeLazy
		if !s.baselineSet {
			return s.announce(display, title, now, false)
		}
		if title != s.baselineTitle {
			return s.announce(display, title, now, false)
		}
		s.unchangedLazyChecks++
		if s.unchangedLazyChecks >= lazyUnchangedThreshold {
			s.Mode = ModeActive
		}
		return Outcome{}
	}
}

// announce records the announced title and resets the session to lazy
// polling with the new title as baseline. Keeping baseline and
// last-announced in sync on every transition is what lets the two modes
// agree on what "unchanged" means across the lazy/active cycle.
func (s *State) announce(display, normalized string, now time.Time, command bool) Outcome {
	s.LastAnnounced = normalized
	s.LastAnnouncedAt = now
	s.Mode = ModeLazy
	s.unchangedLazyChecks = 0
	s.baselineSet = true
	s.baselineTitle = normalized
	s.commandTriggered = false
	return Outcome{Announce: true, Title: display, Normalized: normalized, Command: command}
}

// UnchangedLazyChecks exposes the lazy counter for status reporting.
func (s *State) UnchangedLazyChecks() int { return s.unchangedLazyChecks }
