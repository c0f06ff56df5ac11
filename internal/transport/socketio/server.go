// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/devnull-space/radiowatch/internal/domain/monitor"
	"github.com/devnull-space/radiowatch/internal/domain/radio"
)

// Server handles Socket.io connections and events. It is both the
// command surface for the radio service and the consumer of monitor
// announcements, broadcast as radioChanged events.
type Server struct {
	io      *socket.Server
	service *radio.Service
	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server.
func NewServer(service *radio.Service) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:      server,
		service: service,
		clients: make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send the current status shortly after connect
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushStatus(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getStatus", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getStatus")
			s.pushStatus(client)
		})

		client.On("playRadio", func(args ...any) {
			station := stringArg(args, "station")
			log.Debug().Str("id", clientID).Str("station", station).Msg("playRadio")

			if err := s.service.Play(station); err != nil {
				log.Error().Err(err).Str("station", station).Msg("Play failed")
			}
			s.BroadcastStatus()
		})

		// changeRadio is play with a different station; the monitor does
		// its own stop-then-start hand-off
		client.On("changeRadio", func(args ...any) {
			station := stringArg(args, "station")
			log.Debug().Str("id", clientID).Str("station", station).Msg("changeRadio")

			if err := s.service.Play(station); err != nil {
				log.Error().Err(err).Str("station", station).Msg("Change failed")
			}
			s.BroadcastStatus()
		})

		client.On("stopRadio", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("stopRadio")
			if err := s.service.Stop(); err != nil {
				log.Error().Err(err).Msg("Stop failed")
			}
			s.BroadcastStatus()
		})

		client.On("setVolume", func(args ...any) {
			volume := intArg(args, "volume", -1)
			log.Debug().Str("id", clientID).Int("volume", volume).Msg("setVolume")

			if volume < 0 || volume > 100 {
				log.Warn().Int("volume", volume).Msg("Volume out of range, ignored")
				return
			}
			if err := s.service.SetVolume(volume); err != nil {
				log.Error().Err(err).Msg("SetVolume failed")
			}
		})
	})
}

// Announce implements the monitor sink: every accepted track change is
// broadcast to all connected clients.
func (s *Server) Announce(a monitor.Announcement) {
	s.io.Emit("radioChanged", map[string]interface{}{
		"station":          a.Station,
		"title":            a.Title,
		"commandTriggered": a.Command,
		"timestamp":        a.At.UTC().Format(time.RFC3339),
	})
	s.BroadcastStatus()
}

// pushStatus sends the radio status to a single client.
func (s *Server) pushStatus(client *socket.Socket) {
	client.Emit("radioStatus", s.service.Status())
}

// BroadcastStatus sends the radio status to all connected clients.
func (s *Server) BroadcastStatus() {
	status := s.service.Status()

	s.io.Emit("radioStatus", status)

	if log.Debug().Enabled() {
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().Int("clients", clientCount).Msg("Broadcast status")
	}
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close shuts down the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}

// stringArg extracts a string field from the first object argument.
func stringArg(args []any, key string) string {
	if len(args) > 0 {
		if m, ok := args[0].(map[string]interface{}); ok {
			if v, ok := m[key].(string); ok {
				return v
			}
		}
	}
	return ""
}

// intArg extracts a numeric field from the first object argument.
func intArg(args []any, key string, fallback int) int {
	if len(args) > 0 {
		if m, ok := args[0].(map[string]interface{}); ok {
			if v, ok := m[key].(float64); ok {
				return int(v)
			}
		}
	}
	return fallback
}
