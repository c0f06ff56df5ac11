package monitor

import (
	"testing"
	"time"
)

var never = ClassifierFunc(func(string) bool { return false })

func TestFirstObservationAlwaysAnnounces(t *testing.T) {
	state := NewState("StationX", never, false)

	out := state.OnPoll("Artist - Track1", time.Now())
	if !out.Announce {
		t.Fatal("first non-empty title after a fresh start must announce")
	}
	if out.Title != "Artist - Track1" {
		t.Errorf("display title = %q, want %q", out.Title, "Artist - Track1")
	}
	if out.Normalized != "artist - track1" {
		t.Errorf("normalized = %q, want %q", out.Normalized, "artist - track1")
	}
	if state.Mode != ModeLazy {
		t.Errorf("mode = %v, want lazy", state.Mode)
	}
}

func TestEmptyTitleIsNoActionAndNoStateChange(t *testing.T) {
	state := NewState("StationX", never, false)

	out := state.OnPoll("", time.Now())
	if out.Announce {
		t.Error("empty title must not announce")
	}

	// The next real title still counts as the first observation.
	out = state.OnPoll("Artist - Track1", time.Now())
	if !out.Announce {
		t.Error("first real title after empty samples must announce")
	}
}

func TestUnchangedLazyChecksFlipToActive(t *testing.T) {
	state := NewState("StationX", never, false)
	now := time.Now()

	state.OnPoll("Artist - Track1", now)

	out := state.OnPoll("Artist - Track1", now.Add(time.Minute))
	if out.Announce {
		t.Error("unchanged title must not announce")
	}
	if state.Mode != ModeLazy {
		t.Error("one unchanged check must not flip mode yet")
	}

	out = state.OnPoll("Artist - Track1", now.Add(2*time.Minute))
	if out.Announce {
		t.Error("unchanged title must not announce")
	}
	if state.Mode != ModeActive {
		t.Error("second unchanged lazy check must flip mode to active")
	}
}

func TestActiveChangeAnnouncesAndRelaxesToLazy(t *testing.T) {
	state := NewState("StationX", never, false)
	now := time.Now()

	state.OnPoll("Artist - Track1", now)
	state.OnPoll("Artist - Track1", now.Add(time.Minute))
	state.OnPoll("Artist - Track1", now.Add(2*time.Minute))
	if state.Mode != ModeActive {
		t.Fatal("setup: expected active mode")
	}

	out := state.OnPoll("Artist - Track1", now.Add(3*time.Minute))
	if out.Announce {
		t.Error("same title in active mode must not announce")
	}

	out = state.OnPoll("Artist - Track2", now.Add(4*time.Minute))
	if !out.Announce {
		t.Fatal("new title in active mode must announce")
	}
	if state.Mode != ModeLazy {
		t.Error("announce must relax mode back to lazy")
	}
	if state.UnchangedLazyChecks() != 0 {
		t.Errorf("unchanged counter = %d, want 0 after announce", state.UnchangedLazyChecks())
	}
	if state.LastAnnounced != "artist - track2" {
		t.Errorf("last announced = %q, want %q", state.LastAnnounced, "artist - track2")
	}

	// Baseline is resynchronized on the transition: the same title in
	// lazy mode must now read as unchanged, not as a new change.
	out = state.OnPoll("Artist - Track2", now.Add(5*time.Minute))
	if out.Announce {
		t.Error("baseline must track the announced title across the active/lazy cycle")
	}
}

func TestLazyChangeAnnounces(t *testing.T) {
	state := NewState("StationX", never, false)
	now := time.Now()

	state.OnPoll("Artist - Track1", now)

	out := state.OnPoll("Artist - Track2", now.Add(time.Minute))
	if !out.Announce {
		t.Error("changed title in lazy mode must announce")
	}
	if state.Mode != ModeLazy {
		t.Error("lazy change keeps lazy mode")
	}
}

func TestCommandTriggeredForcesAnnounceOnce(t *testing.T) {
	state := NewState("StationX", never, true)
	now := time.Now()

	// Empty sample does not consume the one-shot flag.
	out := state.OnPoll("", now)
	if out.Announce {
		t.Error("empty title must not announce even when command triggered")
	}

	out = state.OnPoll("Artist - Track1", now.Add(time.Second))
	if !out.Announce || !out.Command {
		t.Fatalf("command-triggered poll must announce with Command set, got %+v", out)
	}

	// Consumed: the same title again is a plain unchanged check.
	out = state.OnPoll("Artist - Track1", now.Add(time.Minute))
	if out.Announce || out.Command {
		t.Errorf("command flag must be one-shot, got %+v", out)
	}
}

func TestNormalizedComparisonIgnoresCaseAndSpacing(t *testing.T) {
	state := NewState("StationX", never, false)
	now := time.Now()

	state.OnPoll("Artist - Track1", now)

	out := state.OnPoll("  ARTIST   -  TRACK1 ", now.Add(time.Minute))
	if out.Announce {
		t.Error("case/spacing variants of the same title must not announce")
	}
}

func TestDueHonorsCurrentMode(t *testing.T) {
	state := NewState("StationX", never, false)
	now := time.Now()

	if !state.Due(now) {
		t.Fatal("a fresh state must be immediately due")
	}

	state.OnPoll("Artist - Track1", now)
	if state.Due(now.Add(state.LazyInterval - time.Second)) {
		t.Error("must not be due before the lazy interval elapses")
	}
	if !state.Due(now.Add(state.LazyInterval)) {
		t.Error("must be due once the lazy interval elapses")
	}

	// Flip to active and verify the shorter interval gates polling.
	state.OnPoll("Artist - Track1", now.Add(time.Minute))
	state.OnPoll("Artist - Track1", now.Add(2*time.Minute))
	if state.Mode != ModeActive {
		t.Fatal("setup: expected active mode")
	}
	last := now.Add(2 * time.Minute)
	if state.Due(last.Add(state.ActiveInterval - time.Second)) {
		t.Error("must not be due before the active interval elapses")
	}
	if !state.Due(last.Add(state.ActiveInterval)) {
		t.Error("must be due once the active interval elapses")
	}
}

// The end-to-end sequence from steady playback through a track change.
func TestPollSequenceTrackChange(t *testing.T) {
	state := NewState("StationX", never, false)
	now := time.Now()

	ticks := []struct {
		title        string
		wantAnnounce bool
		wantMode     Mode
	}{
		{"Artist - Track1", true, ModeLazy},
		{"Artist - Track1", false, ModeLazy},
		{"Artist - Track1", false, ModeActive},
		{"Artist - Track2", true, ModeLazy},
	}

	for i, tick := range ticks {
		out := state.OnPoll(tick.title, now.Add(time.Duration(i)*time.Minute))
		if out.Announce != tick.wantAnnounce {
			t.Errorf("tick %d: announce = %v, want %v", i+1, out.Announce, tick.wantAnnounce)
		}
		if state.Mode != tick.wantMode {
			t.Errorf("tick %d: mode = %v, want %v", i+1, state.Mode, tick.wantMode)
		}
	}
}
