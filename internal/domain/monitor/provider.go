package monitor

import (
	"context"
	"fmt"
	"sync"
)

// Provider produces a best-effort now-playing title for a station. An
// empty string means the backend had no data; errors are treated the
// same way by the poll loop, just with a log line.
type Provider interface {
	Title(ctx context.Context, station string) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, station string) (string, error)

// Title calls f.
func (f ProviderFunc) Title(ctx context.Context, station string) (string, error) {
	return f(ctx, station)
}

// Registry routes stations to their retrieval backends. Backends register
// under a name and stations bind to a backend name; adding a new backend
// is a registration, not another branch in a conditional chain. Registry
// itself implements Provider.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Provider
	bindings map[string]string // station -> backend name
	fallback string
}

// NewRegistry creates a registry. fallback names the backend used for
// stations with no explicit binding; it may be empty.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		backends: make(map[string]Provider),
		bindings: make(map[string]string),
		fallback: fallback,
	}
}

// RegisterBackend makes a backend available under a name.
func (r *Registry) RegisterBackend(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = p
}

// Bind routes a station to a named backend.
func (r *Registry) Bind(station, backend string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[station] = backend
}

// Title dispatches to the station's bound backend, or the fallback.
func (r *Registry) Title(ctx context.Context, station string) (string, error) {
	r.mu.RLock()
	name, ok := r.bindings[station]
	if !ok {
		name = r.fallback
	}
	p := r.backends[name]
	r.mu.RUnlock()

	if p == nil {
		return "", fmt.Errorf("no title backend for station %q", station)
	}
	return p.Title(ctx, station)
}
