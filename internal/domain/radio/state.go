package radio

import "sync"

// State is the current-playback projection exposed to clients: which
// station is selected, the last announced track and whether playback is
// active. It is safe for concurrent access.
type State struct {
	mu sync.RWMutex

	station string
	title   string
	playing bool
}

// NewState creates an empty, stopped state.
func NewState() *State {
	return &State{}
}

// SetStation records that playback of a station started; the title is
// cleared until the monitor announces one.
func (s *State) SetStation(station string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.station = station
	s.title = ""
	s.playing = true
}

// SetTitle records the latest announced track title.
func (s *State) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// SetStopped clears the playing flag and selection.
func (s *State) SetStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.station = ""
	s.title = ""
	s.playing = false
}

// Snapshot returns the current projection values.
func (s *State) Snapshot() (station, title string, playing bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.station, s.title, s.playing
}

// ToJSON returns the state as a map suitable for JSON serialization.
func (s *State) ToJSON() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"station": s.station,
		"title":   s.title,
		"playing": s.playing,
	}
}
