// Package config loads the radiowatch configuration from TOML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Listen string `koanf:"listen"` // HTTP listen address

	MPD     MPDConfig       `koanf:"mpd"`
	Monitor MonitorConfig   `koanf:"monitor"`
	Somafm  SomafmConfig    `koanf:"somafm"`
	Station []StationConfig `koanf:"stations"`
}

// MPDConfig holds the playback engine connection settings.
type MPDConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
}

// MonitorConfig holds track monitor timing settings, in seconds.
type MonitorConfig struct {
	GraceDelaySeconds      int `koanf:"grace_delay_seconds"`
	StopWaitSeconds        int `koanf:"stop_wait_seconds"`
	ProviderTimeoutSeconds int `koanf:"provider_timeout_seconds"`
}

// GraceDelay returns the command grace delay as a duration.
func (m MonitorConfig) GraceDelay() time.Duration {
	return time.Duration(m.GraceDelaySeconds) * time.Second
}

// StopWait returns the bounded stop wait as a duration.
func (m MonitorConfig) StopWait() time.Duration {
	return time.Duration(m.StopWaitSeconds) * time.Second
}

// ProviderTimeout returns the per-poll retrieval timeout as a duration.
func (m MonitorConfig) ProviderTimeout() time.Duration {
	return time.Duration(m.ProviderTimeoutSeconds) * time.Second
}

// SomafmConfig holds SomaFM API overrides.
type SomafmConfig struct {
	BaseURL string `koanf:"base_url"`
}

// StationConfig describes one station entry.
type StationConfig struct {
	Name        string `koanf:"name"`
	URL         string `koanf:"url"`
	Backend     string `koanf:"backend"` // icy, somafm, deejay, native
	Description string `koanf:"description"`
	Special     bool   `koanf:"special"`
}

// Load reads configuration files in priority order (later wins):
// ~/.config/radiowatch/config.toml, then ./config.toml. Missing files are
// fine; defaults cover everything including the shipped station list.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg, k)
	return cfg, nil
}

func configPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "radiowatch", "config.toml"))
	}
	paths = append(paths, "config.toml")
	return paths
}

// applyDefaults fills in anything the config files left unset. The
// monitor timings consult the loaded key set instead of the values, so
// an explicit zero (a valid "disabled" setting, e.g. no grace delay)
// survives.
func applyDefaults(cfg *Config, k *koanf.Koanf) {
	if cfg.Listen == "" {
		cfg.Listen = ":3001"
	}
	if cfg.MPD.Host == "" {
		cfg.MPD.Host = "localhost"
	}
	if cfg.MPD.Port == 0 {
		cfg.MPD.Port = 6600
	}
	if !k.Exists("monitor.grace_delay_seconds") {
		cfg.Monitor.GraceDelaySeconds = 8
	}
	if !k.Exists("monitor.stop_wait_seconds") {
		cfg.Monitor.StopWaitSeconds = 3
	}
	if !k.Exists("monitor.provider_timeout_seconds") {
		cfg.Monitor.ProviderTimeoutSeconds = 8
	}
	if len(cfg.Station) == 0 {
		cfg.Station = DefaultStations()
	}
}

// DefaultStations is the shipped station catalog.
func DefaultStations() []StationConfig {
	return []StationConfig{
		{
			Name:        "Radio Sidewinder",
			URL:         "https://radiosidewinder.out.airtime.pro:8000/radiosidewinder_b",
			Backend:     "icy",
			Description: "Fan-made station for Elite Dangerous with ambient and techno music, in-game news and ads.",
		},
		{
			Name:        "Hutton Orbital Radio",
			URL:         "https://quincy.torontocast.com/hutton",
			Backend:     "icy",
			Description: "Community radio for Elite Dangerous with pop, rock, and humorous segments.",
			Special:     true,
		},
		{
			Name:        "SomaFM Deep Space One",
			URL:         "https://ice.somafm.com/deepspaceone",
			Backend:     "somafm",
			Description: "Experimental ambient and electronic soundscapes for deep space exploration.",
		},
		{
			Name:        "SomaFM Groove Salad",
			URL:         "https://ice.somafm.com/groovesalad",
			Backend:     "somafm",
			Description: "Downtempo and chillout music mix, ideal for relaxation and creativity.",
		},
		{
			Name:        "SomaFM Space Station",
			URL:         "https://ice.somafm.com/spacestation",
			Backend:     "somafm",
			Description: "Futuristic electronic music blend, perfect for space travel vibes.",
		},
		{
			Name:        "GalNET Radio",
			URL:         "http://listen.radionomy.com/galnet",
			Backend:     "icy",
			Description: "Sci-fi themed station with ambient, rock, and classical music, plus GalNet news.",
		},
		{
			Name:        "Radio Deejay",
			URL:         "https://radiodeejay-lh.akamaihd.net/i/RadioDeejay_Live_1@189857/master.m3u8",
			Backend:     "deejay",
			Description: "Italian pop and talk radio with chart music and live shows.",
			Special:     true,
		},
		{
			Name:        "Radio Deejay Linetti",
			URL:         "https://streamcdnm6-4c4b867c89244861ac216426883d1ad0.msvdn.net/radiodeejay/deejaywfmlinus/playlist.m3u8",
			Backend:     "deejay",
			Description: "Radio Deejay web channel with Linus and Nicola Savino.",
			Special:     true,
		},
	}
}
