// Package metrics exposes the server's Prometheus counters/gauges (spec.md
// §6.1 [EXPANSION]): how many lobbies/games are live and how many moves the
// dispatcher has processed, scraped at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the server's collectors; the dispatcher updates them. It is
// constructed once per process (or once per test) and registered into its
// own registry, so repeated construction in tests never hits Prometheus's
// duplicate-registration panic.
type Metrics struct {
	ActiveGames     prometheus.Gauge
	ActiveLobbies   prometheus.Gauge
	OpenConnections prometheus.Gauge
	MovesProcessed  *prometheus.CounterVec
	PacketErrors    *prometheus.CounterVec

	Registry *prometheus.Registry
}

// New builds a fresh set of collectors registered into a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scotlandyard_active_games",
			Help: "Number of games currently in progress.",
		}),
		ActiveLobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scotlandyard_active_lobbies",
			Help: "Number of lobbies waiting for players.",
		}),
		OpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scotlandyard_open_connections",
			Help: "Number of currently open client connections.",
		}),
		MovesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scotlandyard_moves_processed_total",
			Help: "Number of moves accepted by the game session, by role.",
		}, []string{"role"}),
		PacketErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scotlandyard_packet_errors_total",
			Help: "Number of error packets sent to clients, by error kind.",
		}, []string{"kind"}),
		Registry: prometheus.NewRegistry(),
	}
	m.Registry.MustRegister(m.ActiveGames, m.ActiveLobbies, m.OpenConnections, m.MovesProcessed, m.PacketErrors)
	return m
}
