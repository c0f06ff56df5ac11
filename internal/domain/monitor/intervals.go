package monitor

import "time"

// Poll intervals per station class. Special stations sit behind backends
// that publish updates slowly (scraped pages, cached APIs) and get longer
// intervals in both modes to keep request volume down.
const (
	standardLazyInterval   = 20 * time.Second
	standardActiveInterval = 8 * time.Second
	specialLazyInterval    = 60 * time.Second
	specialActiveInterval  = 20 * time.Second
)

// Classifier reports whether a station is a slow-updating ("special") one.
// Implementations must be total: unknown stations classify as standard.
type Classifier interface {
	IsSpecial(station string) bool
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(station string) bool

// IsSpecial calls f.
func (f ClassifierFunc) IsSpecial(station string) bool { return f(station) }

// IntervalsFor returns the (lazy, active) poll intervals for a station.
// The result is derived once per monitor session, when the session's
// State is created; classification changes never affect a running session.
func IntervalsFor(c Classifier, station string) (lazy, active time.Duration) {
	if c != nil && c.IsSpecial(station) {
		return specialLazyInterval, specialActiveInterval
	}
	return standardLazyInterval, standardActiveInterval
}
