// Package main is the entry point for the radiowatch daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devnull-space/radiowatch/internal/config"
	"github.com/devnull-space/radiowatch/internal/domain/monitor"
	"github.com/devnull-space/radiowatch/internal/domain/radio"
	"github.com/devnull-space/radiowatch/internal/infra/deejay"
	"github.com/devnull-space/radiowatch/internal/infra/icy"
	mpdclient "github.com/devnull-space/radiowatch/internal/infra/mpd"
	"github.com/devnull-space/radiowatch/internal/infra/somafm"
	"github.com/devnull-space/radiowatch/internal/metrics"
	"github.com/devnull-space/radiowatch/internal/transport/socketio"
	"github.com/devnull-space/radiowatch/internal/version"
)

func main() {
	// Command line flags override file config
	listen := flag.String("listen", "", "HTTP listen address (default from config, :3001)")
	mpdHost := flag.String("mpd-host", "", "MPD host")
	mpdPort := flag.Int("mpd-port", 0, "MPD port")
	mpdPassword := flag.String("mpd-password", "", "MPD password")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *mpdHost != "" {
		cfg.MPD.Host = *mpdHost
	}
	if *mpdPort != 0 {
		cfg.MPD.Port = *mpdPort
	}
	if *mpdPassword != "" {
		cfg.MPD.Password = *mpdPassword
	}

	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Now-Playing Monitor for Internet Radio")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("listen", cfg.Listen).
		Str("mpd_host", cfg.MPD.Host).
		Int("mpd_port", cfg.MPD.Port).
		Int("stations", len(cfg.Station)).
		Msg("Configuration")

	// Create MPD client
	mpdClient := mpdclient.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
	if err := mpdClient.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MPD")
	}
	defer mpdClient.Close()

	if err := mpdClient.Ping(); err != nil {
		log.Fatal().Err(err).Msg("MPD ping failed")
	}
	log.Info().Msg("MPD connection verified")

	// Station catalog and title backend registry
	catalog := radio.NewCatalog(stationsFromConfig(cfg.Station))

	registry := monitor.NewRegistry("native")
	registry.RegisterBackend("native", mpdClient)
	registry.RegisterBackend("icy", icy.NewProvider(streamURLs(cfg.Station)))
	registry.RegisterBackend("deejay", deejay.NewClient())

	somafmOpts := []somafm.Option{}
	if cfg.Somafm.BaseURL != "" {
		somafmOpts = append(somafmOpts, somafm.WithBaseURL(cfg.Somafm.BaseURL))
	}
	registry.RegisterBackend("somafm", somafm.NewClient(somafmOpts...))

	for _, s := range cfg.Station {
		if s.Backend != "" {
			registry.Bind(s.Name, s.Backend)
		}
	}

	// Monitor wiring
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(promRegistry)

	gate := monitor.NewGate()
	state := radio.NewState()

	// The sink chain updates the status projection, then broadcasts. The
	// broadcaster is attached once the socket server exists; manager and
	// server reference each other only through this indirection.
	sink := &broadcastSink{state: state}

	manager := monitor.NewManager(registry, catalog, gate, sink,
		monitor.WithGraceDelay(cfg.Monitor.GraceDelay()),
		monitor.WithStopWait(cfg.Monitor.StopWait()),
		monitor.WithCallTimeout(cfg.Monitor.ProviderTimeout()),
		monitor.WithMetrics(collector),
	)
	defer manager.Stop()

	service := radio.NewService(mpdClient, manager, catalog, state)

	socketServer, err := socketio.NewServer(service)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()
	sink.attach(socketServer)

	// Setup HTTP server
	mux := http.NewServeMux()

	mux.Handle("/socket.io/", socketServer)
	mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := mpdClient.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","mpd":"disconnected"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","mpd":"connected"}`))
	})

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.Status())
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		manager.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.Listen).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}

// broadcastSink feeds accepted announcements into the status projection
// and, once attached, the Socket.io broadcast.
type broadcastSink struct {
	state *radio.State

	mu     sync.RWMutex
	server *socketio.Server
}

func (s *broadcastSink) attach(server *socketio.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server = server
}

// Announce implements monitor.Sink.
func (s *broadcastSink) Announce(a monitor.Announcement) {
	s.state.SetTitle(a.Title)

	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()
	if server != nil {
		server.Announce(a)
	}
}

// stationsFromConfig converts config entries to domain stations.
func stationsFromConfig(entries []config.StationConfig) []radio.Station {
	stations := make([]radio.Station, 0, len(entries))
	for _, e := range entries {
		stations = append(stations, radio.Station{
			Name:        e.Name,
			URL:         e.URL,
			Backend:     e.Backend,
			Description: e.Description,
			Special:     e.Special,
		})
	}
	return stations
}

// streamURLs maps station names to stream URLs for the ICY backend.
func streamURLs(entries []config.StationConfig) map[string]string {
	urls := make(map[string]string, len(entries))
	for _, e := range entries {
		urls[e.Name] = e.URL
	}
	return urls
}
