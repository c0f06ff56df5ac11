package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics receives observations from the poll loop. Implementations must
// not block.
type Metrics interface {
	PollStarted(station string)
	PollFailed(station string)
	Announced(station string)
	Suppressed(station string)
	ModeChanged(station string, mode Mode)
}

type nopMetrics struct{}

func (nopMetrics) PollStarted(string)       {}
func (nopMetrics) PollFailed(string)        {}
func (nopMetrics) Announced(string)         {}
func (nopMetrics) Suppressed(string)        {}
func (nopMetrics) ModeChanged(string, Mode) {}

// Manager owns the single background monitor task. At most one task runs
// at a time: starting a new station fully stops the previous task (or
// times out waiting for it) before the new one begins, so announcements
// for different stations never interleave.
type Manager struct {
	provider   Provider
	classifier Classifier
	gate       *Gate
	sink       Sink
	metrics    Metrics
	config     ManagerConfig

	// lifecycle serializes the stop-then-start hand-off so two control
	// commands cannot leave two tasks running.
	lifecycle sync.Mutex

	mu      sync.Mutex
	station string
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// ManagerConfig holds the task timing knobs.
type ManagerConfig struct {
	// Tick is the stop-signal granularity; the loop wakes this often and
	// polls only when the session interval has elapsed.
	Tick time.Duration
	// GraceDelay is slept before the first poll of a command-triggered
	// session, so the command's own response is not immediately displaced
	// by the monitor's first announcement.
	GraceDelay time.Duration
	// StopWait bounds how long Stop blocks for the task to exit.
	StopWait time.Duration
	// CallTimeout bounds a single provider call.
	CallTimeout time.Duration
}

// DefaultManagerConfig returns the standard timing knobs.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Tick:        time.Second,
		GraceDelay:  8 * time.Second,
		StopWait:    3 * time.Second,
		CallTimeout: 8 * time.Second,
	}
}

// Option is a functional option for configuring the manager.
type Option func(*Manager)

// WithTick sets the stop-signal polling granularity.
func WithTick(d time.Duration) Option {
	return func(m *Manager) { m.config.Tick = d }
}

// WithGraceDelay sets the delay before the first poll of a
// command-triggered session.
func WithGraceDelay(d time.Duration) Option {
	return func(m *Manager) { m.config.GraceDelay = d }
}

// WithStopWait sets the bounded wait for a stopping task.
func WithStopWait(d time.Duration) Option {
	return func(m *Manager) { m.config.StopWait = d }
}

// WithCallTimeout bounds a single title retrieval call.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Manager) { m.config.CallTimeout = d }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(mx Metrics) Option {
	return func(m *Manager) { m.metrics = mx }
}

// NewManager creates a monitor manager. The gate is shared state and may
// outlive any number of tasks; the sink receives accepted announcements.
func NewManager(p Provider, c Classifier, g *Gate, sink Sink, opts ...Option) *Manager {
	m := &Manager{
		provider:   p,
		classifier: c,
		gate:       g,
		sink:       sink,
		metrics:    nopMetrics{},
		config:     DefaultManagerConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins monitoring a station, stopping any previous task first.
// command marks that an explicit play/change command triggered the start:
// the task then sleeps the grace delay before its first poll and the
// first observed title announces unconditionally. Station changes are
// just Start with the new station.
func (m *Manager) Start(station string, command bool) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.stop()

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	m.mu.Lock()
	m.station = station
	m.stopCh = stopCh
	m.doneCh = doneCh
	m.mu.Unlock()

	go m.run(station, command, stopCh, doneCh)
}

// Stop signals the running task, if any, and waits for it to exit up to
// the configured bound. Idempotent and safe to call when nothing runs; a
// wedged task never blocks the caller past the bound.
func (m *Manager) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.stop()
}

func (m *Manager) stop() {
	m.mu.Lock()
	stopCh, doneCh := m.stopCh, m.doneCh
	m.stopCh, m.doneCh = nil, nil
	m.station = ""
	m.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)

	select {
	case <-doneCh:
	case <-time.After(m.config.StopWait):
		log.Warn().Msg("Track monitor did not stop within deadline")
	}
}

// Station returns the station the manager is currently bound to.
func (m *Manager) Station() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.station, m.station != ""
}

func (m *Manager) run(station string, command bool, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	log.Info().Str("station", station).Bool("command", command).Msg("Track monitor started")

	if command && m.config.GraceDelay > 0 {
		select {
		case <-time.After(m.config.GraceDelay):
		case <-stopCh:
			log.Debug().Str("station", station).Msg("Track monitor stopped during grace delay")
			return
		}
	}

	state := NewState(station, m.classifier, command)

	log.Debug().
		Str("station", station).
		Dur("lazy", state.LazyInterval).
		Dur("active", state.ActiveInterval).
		Msg("Poll intervals derived")

	ticker := time.NewTicker(m.config.Tick)
	defer ticker.Stop()

	m.poll(state, stopCh)

	for {
		select {
		case <-stopCh:
			log.Info().Str("station", station).Msg("Track monitor stopped")
			return
		case <-ticker.C:
			m.poll(state, stopCh)
		}
	}
}

// poll performs one gated poll cycle: retrieval, state machine
// transition, announce gate, sink dispatch.
func (m *Manager) poll(state *State, stopCh chan struct{}) {
	if !state.Due(time.Now()) {
		return
	}
	m.metrics.PollStarted(state.Station)

	ctx, cancel := context.WithTimeout(context.Background(), m.config.CallTimeout)
	title, err := m.provider.Title(ctx, state.Station)
	cancel()
	if err != nil {
		// Transient retrieval failures degrade to "no data" for this tick.
		log.Debug().Err(err).Str("station", state.Station).Msg("Title retrieval failed")
		m.metrics.PollFailed(state.Station)
		title = ""
	}

	// A stop may have arrived while the call was in flight; discard the
	// result rather than announce for a session that is over.
	select {
	case <-stopCh:
		return
	default:
	}

	prevMode := state.Mode
	out := state.OnPoll(title, time.Now())
	if state.Mode != prevMode {
		log.Debug().
			Str("station", state.Station).
			Stringer("mode", state.Mode).
			Msg("Poll mode changed")
		m.metrics.ModeChanged(state.Station, state.Mode)
	}
	if !out.Announce {
		return
	}

	now := time.Now()
	if !m.gate.ShouldAnnounce(out.Title, state.Station, out.Command, now) {
		log.Debug().
			Str("station", state.Station).
			Str("title", out.Normalized).
			Msg("Announcement suppressed")
		m.metrics.Suppressed(state.Station)
		return
	}

	log.Info().
		Str("station", state.Station).
		Str("title", out.Title).
		Bool("command", out.Command).
		Msg("Track changed")
	m.metrics.Announced(state.Station)

	m.sink.Announce(Announcement{
		Title:   out.Title,
		Station: state.Station,
		Command: out.Command,
		At:      now,
	})
}
