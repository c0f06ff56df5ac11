// Package metrics exposes Prometheus collectors for the track monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/devnull-space/radiowatch/internal/domain/monitor"
)

// Collector implements monitor.Metrics with Prometheus counters.
type Collector struct {
	polls         *prometheus.CounterVec
	pollFailures  *prometheus.CounterVec
	announcements *prometheus.CounterVec
	suppressed    *prometheus.CounterVec
	mode          *prometheus.GaugeVec
}

// NewCollector registers the monitor collectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiowatch_polls_total",
			Help: "Number of title retrieval polls, by station.",
		}, []string{"station"}),
		pollFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiowatch_poll_failures_total",
			Help: "Number of failed title retrievals, by station.",
		}, []string{"station"}),
		announcements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiowatch_announcements_total",
			Help: "Number of accepted track-change announcements, by station.",
		}, []string{"station"}),
		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiowatch_suppressed_total",
			Help: "Number of announcements rejected by the gate, by station.",
		}, []string{"station"}),
		mode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "radiowatch_monitor_mode",
			Help: "Current poll mode per station: 0 lazy, 1 active.",
		}, []string{"station"}),
	}
}

// PollStarted counts one retrieval attempt.
func (c *Collector) PollStarted(station string) {
	c.polls.WithLabelValues(station).Inc()
}

// PollFailed counts one failed retrieval.
func (c *Collector) PollFailed(station string) {
	c.pollFailures.WithLabelValues(station).Inc()
}

// Announced counts one accepted announcement.
func (c *Collector) Announced(station string) {
	c.announcements.WithLabelValues(station).Inc()
}

// Suppressed counts one gate rejection.
func (c *Collector) Suppressed(station string) {
	c.suppressed.WithLabelValues(station).Inc()
}

// ModeChanged records the current poll mode.
func (c *Collector) ModeChanged(station string, mode monitor.Mode) {
	value := 0.0
	if mode == monitor.ModeActive {
		value = 1.0
	}
	c.mode.WithLabelValues(station).Set(value)
}
