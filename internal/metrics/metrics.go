// Package metrics exposes Prometheus counters for the SSH game server.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
)

// Metrics holds the collectors of one server. Each instance has its own
// registry so several servers (or tests) can coexist in a process.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions prometheus.Gauge
	OnlineMatches  prometheus.Gauge
	GamesStarted   *prometheus.CounterVec
	GamesFinished  *prometheus.CounterVec
	Rolls          *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	GameTurns      prometheus.Histogram
}

// New creates and registers the collectors under the given namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected SSH sessions",
		}),
		OnlineMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_matches",
			Help:      "Number of running matches shared by several sessions",
		}),
		GamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started, by board variant",
		}, []string{"variant"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games played to a win, by board variant",
		}, []string{"variant"}),
		Rolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rolls_total",
			Help:      "Dice thrown, by board variant",
		}, []string{"variant"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Snakes and ladders taken, by kind",
		}, []string{"kind"}),
		GameTurns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_turns",
			Help:      "Turns needed to finish a game",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 8),
		}),
	}

	m.registry.MustRegister(
		m.ActiveSessions,
		m.OnlineMatches,
		m.GamesStarted,
		m.GamesFinished,
		m.Rolls,
		m.Transitions,
		m.GameTurns,
	)

	return m
}

// SessionStarted increments the session gauge.
func (m *Metrics) SessionStarted() {
	m.ActiveSessions.Inc()
}

// SessionEnded decrements the session gauge.
func (m *Metrics) SessionEnded() {
	m.ActiveSessions.Dec()
}

// MatchStarted increments the online match gauge.
func (m *Metrics) MatchStarted() {
	m.OnlineMatches.Inc()
}

// MatchEnded decrements the online match gauge.
func (m *Metrics) MatchEnded() {
	m.OnlineMatches.Dec()
}

// Observer returns an engine event hook that counts events for a variant.
func (m *Metrics) Observer(variant string) func(engine.Event) {
	return func(ev engine.Event) {
		switch ev.Kind {
		case engine.EventReset:
			m.GamesStarted.WithLabelValues(variant).Inc()
		case engine.EventRolled:
			m.Rolls.WithLabelValues(variant).Inc()
		case engine.EventTransition:
			m.Transitions.WithLabelValues(ev.Transition.Kind().String()).Inc()
		case engine.EventWon:
			m.GamesFinished.WithLabelValues(variant).Inc()
		}
	}
}

// ObserveOutcome records the length of a finished game.
func (m *Metrics) ObserveOutcome(o core.Outcome) {
	m.GameTurns.Observe(float64(o.Turns))
}

// Handler returns the HTTP handler serving the collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
