// Package radio provides the radio domain: the station catalog, the
// current-playback projection and the control service tying playback to
// the track monitor.
package radio

import "sort"

// Station describes one configured radio station.
type Station struct {
	Name        string
	URL         string
	Backend     string // title backend name: icy, somafm, deejay, native
	Description string
	// Special marks a slow-updating backend; the monitor polls these at
	// longer intervals.
	Special bool
}

// Catalog is the set of known stations. It is built once at startup and
// read-only afterwards.
type Catalog struct {
	stations map[string]Station
}

// NewCatalog builds a catalog from a station list. Later duplicates of a
// name win.
func NewCatalog(stations []Station) *Catalog {
	m := make(map[string]Station, len(stations))
	for _, s := range stations {
		m[s.Name] = s
	}
	return &Catalog{stations: m}
}

// Get looks a station up by name.
func (c *Catalog) Get(name string) (Station, bool) {
	s, ok := c.stations[name]
	return s, ok
}

// Names returns all station names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.stations))
	for name := range c.stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSpecial reports whether a station is classified as slow-updating.
// Total: unknown stations are standard.
func (c *Catalog) IsSpecial(name string) bool {
	s, ok := c.stations[name]
	return ok && s.Special
}
