// Package metrics exposes domain counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

const namespace = "alash"

// Recorder implements ports.Recorder on top of Prometheus collectors.
type Recorder struct {
	gatherer prometheus.Gatherer

	Searches       *prometheus.CounterVec
	SearchResults  *prometheus.HistogramVec
	MapTransitions *prometheus.CounterVec
	QuoteAdvances  *prometheus.CounterVec
	Sessions       prometheus.Gauge
}

var _ ports.Recorder = (*Recorder)(nil)

// NewRecorder registers the domain collectors against reg, defaulting to the
// global registry when nil. Registering twice returns the existing collectors.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	searches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Searches performed, labeled by kind (people or places).",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}

	results, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results",
		Help:      "Number of records returned per search.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}

	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "map_status_transitions_total",
		Help:      "Map script loader transitions, labeled by the state entered.",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}

	quotes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_advances_total",
		Help:      "Quote rotations, labeled by source (timer or manual).",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	sessions, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Visitor sessions currently held in memory.",
	}))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		gatherer:       gatherer,
		Searches:       searches,
		SearchResults:  results,
		MapTransitions: transitions,
		QuoteAdvances:  quotes,
		Sessions:       sessions,
	}, nil
}

// SearchPerformed counts a search and observes its result size.
func (r *Recorder) SearchPerformed(kind string, results int) {
	if r == nil {
		return
	}
	r.Searches.WithLabelValues(kind).Inc()
	r.SearchResults.WithLabelValues(kind).Observe(float64(results))
}

// MapStatusChanged counts a loader transition.
func (r *Recorder) MapStatusChanged(status domain.MapStatus) {
	if r == nil {
		return
	}
	r.MapTransitions.WithLabelValues(string(status)).Inc()
}

// QuoteAdvanced counts a quote rotation.
func (r *Recorder) QuoteAdvanced(source string) {
	if r == nil {
		return
	}
	r.QuoteAdvances.WithLabelValues(source).Inc()
}

// SessionsActive sets the live session gauge.
func (r *Recorder) SessionsActive(n int) {
	if r == nil {
		return
	}
	r.Sessions.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	gatherer := r.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds c to reg or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
