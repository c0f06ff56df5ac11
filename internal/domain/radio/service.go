package radio

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Playback is the transport-level player the service drives. Implemented
// by the MPD client wrapper.
type Playback interface {
	PlayStream(url string) error
	Stop() error
	SetVolume(volume int) error
}

// Monitor is the track-change monitor lifecycle the service controls.
type Monitor interface {
	Start(station string, command bool)
	Stop()
}

// Service handles the radio control surface: play, change, stop, volume.
// Play and Change are the same operation; the monitor performs its own
// stop-then-start hand-off on every Start.
type Service struct {
	playback Playback
	monitor  Monitor
	catalog  *Catalog
	state    *State
}

// NewService creates a radio control service.
func NewService(playback Playback, monitor Monitor, catalog *Catalog, state *State) *Service {
	return &Service{
		playback: playback,
		monitor:  monitor,
		catalog:  catalog,
		state:    state,
	}
}

// Play starts (or switches) playback of a named station and restarts the
// monitor bound to it. The monitor start counts as command-triggered, so
// its first observed title is always announced.
func (s *Service) Play(name string) error {
	station, ok := s.catalog.Get(name)
	if !ok {
		return fmt.Errorf("unknown station %q", name)
	}

	if err := s.playback.PlayStream(station.URL); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	s.state.SetStation(station.Name)
	s.monitor.Start(station.Name, true)

	log.Info().Str("station", station.Name).Msg("Radio playing")
	return nil
}

// Stop halts the monitor and playback.
func (s *Service) Stop() error {
	s.monitor.Stop()
	s.state.SetStopped()

	if err := s.playback.Stop(); err != nil {
		return fmt.Errorf("stop playback: %w", err)
	}
	log.Info().Msg("Radio stopped")
	return nil
}

// SetVolume adjusts playback volume (0-100).
func (s *Service) SetVolume(volume int) error {
	if err := s.playback.SetVolume(volume); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	log.Info().Int("volume", volume).Msg("Volume set")
	return nil
}

// Status returns the full radio status: available stations and the
// current projection.
func (s *Service) Status() map[string]interface{} {
	station, title, playing := s.state.Snapshot()

	descriptions := make(map[string]string)
	for _, name := range s.catalog.Names() {
		st, _ := s.catalog.Get(name)
		descriptions[name] = st.Description
	}

	return map[string]interface{}{
		"availableStations":   s.catalog.Names(),
		"stationDescriptions": descriptions,
		"currentStation":      station,
		"currentTrack":        title,
		"isPlaying":           playing,
	}
}
