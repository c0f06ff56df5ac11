package monitor

import (
	"context"
	"testing"
)

func staticProvider(title string) Provider {
	return ProviderFunc(func(context.Context, string) (string, error) {
		return title, nil
	})
}

func TestRegistryDispatchesBoundBackend(t *testing.T) {
	registry := NewRegistry("")
	registry.RegisterBackend("icy", staticProvider("from icy"))
	registry.RegisterBackend("somafm", staticProvider("from somafm"))
	registry.Bind("StationX", "icy")
	registry.Bind("StationY", "somafm")

	title, err := registry.Title(context.Background(), "StationX")
	if err != nil {
		t.Fatalf("Title() error = %v", err)
	}
	if title != "from icy" {
		t.Errorf("Title() = %q, want %q", title, "from icy")
	}

	title, err = registry.Title(context.Background(), "StationY")
	if err != nil {
		t.Fatalf("Title() error = %v", err)
	}
	if title != "from somafm" {
		t.Errorf("Title() = %q, want %q", title, "from somafm")
	}
}

func TestRegistryFallback(t *testing.T) {
	registry := NewRegistry("native")
	registry.RegisterBackend("native", staticProvider("from native"))

	title, err := registry.Title(context.Background(), "Unbound Station")
	if err != nil {
		t.Fatalf("Title() error = %v", err)
	}
	if title != "from native" {
		t.Errorf("Title() = %q, want %q", title, "from native")
	}
}

func TestRegistryMissingBackend(t *testing.T) {
	registry := NewRegistry("")
	registry.Bind("StationX", "nonexistent")

	if _, err := registry.Title(context.Background(), "StationX"); err == nil {
		t.Error("expected error for station bound to an unregistered backend")
	}
	if _, err := registry.Title(context.Background(), "Unbound Station"); err == nil {
		t.Error("expected error for unbound station with no fallback")
	}
}
