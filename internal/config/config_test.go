package config

import (
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
)

func TestApplyDefaultsFillsEmptyConfig(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg, koanf.New("."))

	if cfg.Listen != ":3001" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.MPD.Host != "localhost" || cfg.MPD.Port != 6600 {
		t.Errorf("mpd = %s:%d", cfg.MPD.Host, cfg.MPD.Port)
	}
	if cfg.Monitor.GraceDelaySeconds != 8 {
		t.Errorf("grace delay = %d", cfg.Monitor.GraceDelaySeconds)
	}
	if cfg.Monitor.StopWaitSeconds != 3 {
		t.Errorf("stop wait = %d", cfg.Monitor.StopWaitSeconds)
	}
	if cfg.Monitor.ProviderTimeoutSeconds != 8 {
		t.Errorf("provider timeout = %d", cfg.Monitor.ProviderTimeoutSeconds)
	}
	if len(cfg.Station) == 0 {
		t.Error("default station list empty")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Listen: ":8080",
		MPD:    MPDConfig{Host: "mpd.local", Port: 6601},
		Monitor: MonitorConfig{
			GraceDelaySeconds:      2,
			StopWaitSeconds:        1,
			ProviderTimeoutSeconds: 4,
		},
		Station: []StationConfig{{Name: "Only One", URL: "http://example.com", Backend: "icy"}},
	}
	k := koanf.New(".")
	k.Set("monitor.grace_delay_seconds", 2)
	k.Set("monitor.stop_wait_seconds", 1)
	k.Set("monitor.provider_timeout_seconds", 4)
	applyDefaults(cfg, k)

	if cfg.Listen != ":8080" {
		t.Errorf("listen overridden to %q", cfg.Listen)
	}
	if cfg.MPD.Host != "mpd.local" || cfg.MPD.Port != 6601 {
		t.Errorf("mpd overridden to %s:%d", cfg.MPD.Host, cfg.MPD.Port)
	}
	if cfg.Monitor.GraceDelaySeconds != 2 {
		t.Errorf("grace delay overridden to %d", cfg.Monitor.GraceDelaySeconds)
	}
	if len(cfg.Station) != 1 || cfg.Station[0].Name != "Only One" {
		t.Errorf("stations overridden to %v", cfg.Station)
	}
}

func TestApplyDefaultsHonorsExplicitZero(t *testing.T) {
	cfg := &Config{}
	k := koanf.New(".")
	k.Set("monitor.grace_delay_seconds", 0)
	k.Set("monitor.stop_wait_seconds", 0)
	applyDefaults(cfg, k)

	// Zero is a deliberate setting (no grace delay, no stop wait), not
	// an absent one; the defaults must not paper over it.
	if cfg.Monitor.GraceDelaySeconds != 0 {
		t.Errorf("grace delay = %d, want explicit 0 kept", cfg.Monitor.GraceDelaySeconds)
	}
	if cfg.Monitor.StopWaitSeconds != 0 {
		t.Errorf("stop wait = %d, want explicit 0 kept", cfg.Monitor.StopWaitSeconds)
	}
	if cfg.Monitor.ProviderTimeoutSeconds != 8 {
		t.Errorf("provider timeout = %d, want default 8 for the unset key", cfg.Monitor.ProviderTimeoutSeconds)
	}
}

func TestMonitorDurations(t *testing.T) {
	m := MonitorConfig{GraceDelaySeconds: 8, StopWaitSeconds: 3, ProviderTimeoutSeconds: 10}

	if m.GraceDelay() != 8*time.Second {
		t.Errorf("GraceDelay() = %v", m.GraceDelay())
	}
	if m.StopWait() != 3*time.Second {
		t.Errorf("StopWait() = %v", m.StopWait())
	}
	if m.ProviderTimeout() != 10*time.Second {
		t.Errorf("ProviderTimeout() = %v", m.ProviderTimeout())
	}
}

func TestDefaultStations(t *testing.T) {
	stations := DefaultStations()

	byName := make(map[string]StationConfig, len(stations))
	for _, s := range stations {
		if s.Name == "" || s.URL == "" || s.Backend == "" {
			t.Errorf("incomplete station entry: %+v", s)
		}
		byName[s.Name] = s
	}
	if len(byName) != len(stations) {
		t.Error("duplicate station names in default list")
	}

	if !byName["Hutton Orbital Radio"].Special {
		t.Error("Hutton Orbital Radio must be marked special")
	}
	if byName["Radio Sidewinder"].Special {
		t.Error("Radio Sidewinder must not be marked special")
	}
	if byName["SomaFM Groove Salad"].Backend != "somafm" {
		t.Errorf("SomaFM Groove Salad backend = %q", byName["SomaFM Groove Salad"].Backend)
	}
}
