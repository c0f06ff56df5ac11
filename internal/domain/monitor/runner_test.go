package monitor

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeProvider serves titles per station and records calls.
type fakeProvider struct {
	mu     sync.Mutex
	titles map[string]string
	calls  int
}

func (f *fakeProvider) Title(_ context.Context, station string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.titles[station], nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// collectSink gathers announcements.
type collectSink struct {
	mu  sync.Mutex
	got []Announcement
}

func (c *collectSink) Announce(a Announcement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, a)
}

func (c *collectSink) announcements() []Announcement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Announcement, len(c.got))
	copy(out, c.got)
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func newTestManager(p Provider, sink Sink) *Manager {
	return NewManager(p, never, NewGate(), sink,
		WithTick(5*time.Millisecond),
		WithGraceDelay(0),
		WithStopWait(time.Second),
		WithCallTimeout(time.Second),
	)
}

func TestManagerFirstPollAnnounces(t *testing.T) {
	provider := &fakeProvider{titles: map[string]string{"StationX": "Artist - Track1"}}
	sink := &collectSink{}
	m := newTestManager(provider, sink)
	defer m.Stop()

	m.Start("StationX", false)

	waitFor(t, time.Second, func() bool { return len(sink.announcements()) == 1 })

	got := sink.announcements()[0]
	if got.Station != "StationX" || got.Title != "Artist - Track1" {
		t.Errorf("announcement = %+v", got)
	}
}

func TestManagerStopIsIdempotentAndSafeWithoutTask(t *testing.T) {
	m := newTestManager(&fakeProvider{}, &collectSink{})

	m.Stop()
	m.Stop()

	m.Start("StationX", false)
	m.Stop()
	m.Stop()

	if _, running := m.Station(); running {
		t.Error("manager must not report a station after Stop")
	}
}

func TestManagerStationChangeLeavesOneTask(t *testing.T) {
	provider := &fakeProvider{titles: map[string]string{
		"StationX": "Track on X",
		"StationY": "Track on Y",
	}}
	sink := &collectSink{}
	m := newTestManager(provider, sink)
	defer m.Stop()

	m.Start("StationX", false)
	waitFor(t, time.Second, func() bool { return len(sink.announcements()) == 1 })

	m.Start("StationY", false)
	waitFor(t, time.Second, func() bool { return len(sink.announcements()) == 2 })

	station, running := m.Station()
	if !running || station != "StationY" {
		t.Errorf("station = %q running = %v, want StationY running", station, running)
	}

	// The X task has exited: after a settle period only the initial X
	// and Y announcements exist, nothing more from X.
	time.Sleep(50 * time.Millisecond)
	for _, a := range sink.announcements()[1:] {
		if a.Station == "StationX" {
			t.Errorf("announcement from stopped task: %+v", a)
		}
	}
}

func TestManagerGraceDelayInterruptibleByStop(t *testing.T) {
	provider := &fakeProvider{titles: map[string]string{"StationX": "Artist - Track1"}}
	sink := &collectSink{}
	m := NewManager(provider, never, NewGate(), sink,
		WithTick(5*time.Millisecond),
		WithGraceDelay(10*time.Second),
		WithStopWait(time.Second),
		WithCallTimeout(time.Second),
	)

	m.Start("StationX", true)

	// Stop during the grace delay; the task must exit promptly without
	// ever polling.
	start := time.Now()
	m.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("stop during grace delay took %v", elapsed)
	}
	if provider.callCount() != 0 {
		t.Errorf("provider called %d times during grace delay", provider.callCount())
	}
}

func TestManagerIntervalGatesProviderCalls(t *testing.T) {
	provider := &fakeProvider{titles: map[string]string{"StationX": "Artist - Track1"}}
	sink := &collectSink{}
	m := newTestManager(provider, sink)
	defer m.Stop()

	m.Start("StationX", false)
	waitFor(t, time.Second, func() bool { return provider.callCount() == 1 })

	// The loop ticks every few milliseconds but the lazy interval is 20s;
	// no further retrieval happens.
	time.Sleep(100 * time.Millisecond)
	if got := provider.callCount(); got != 1 {
		t.Errorf("provider called %d times, want 1 (interval gating)", got)
	}
}

func TestManagerCommandAnnouncementMarked(t *testing.T) {
	provider := &fakeProvider{titles: map[string]string{"StationX": "Artist - Track1"}}
	sink := &collectSink{}
	m := NewManager(provider, never, NewGate(), sink,
		WithTick(5*time.Millisecond),
		WithGraceDelay(10*time.Millisecond),
		WithStopWait(time.Second),
		WithCallTimeout(time.Second),
	)
	defer m.Stop()

	m.Start("StationX", true)

	waitFor(t, time.Second, func() bool { return len(sink.announcements()) == 1 })
	if got := sink.announcements()[0]; !got.Command {
		t.Errorf("expected command-marked announcement, got %+v", got)
	}
}
