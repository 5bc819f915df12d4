package choice

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer receives the outcome of every suggestion fetch. Implementations
// must be safe for concurrent use.
type Observer interface {
	FetchStarted(kind string)
	FetchApplied(kind string, suggestions int)
	FetchDiscarded(kind string)
	FetchFailed(kind string, err error)
}

type nopObserver struct{}

func (nopObserver) FetchStarted(string)       {}
func (nopObserver) FetchApplied(string, int)  {}
func (nopObserver) FetchDiscarded(string)     {}
func (nopObserver) FetchFailed(string, error) {}

const (
	outcomeStarted   = "started"
	outcomeApplied   = "applied"
	outcomeDiscarded = "discarded"
	outcomeFailed    = "failed"
)

// PrometheusObserver records fetch outcomes as prometheus metrics.
type PrometheusObserver struct {
	fetches     *prometheus.CounterVec
	suggestions *prometheus.HistogramVec
}

var _ Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the autocomplete collectors with reg. When
// the collectors already exist in reg they are reused, so several widgets can
// share one registry.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formwidgets",
			Subsystem: "autocomplete",
			Name:      "fetches_total",
			Help:      "Suggestion fetches by autocomplete type and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	suggestions := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formwidgets",
			Subsystem: "autocomplete",
			Name:      "suggestions",
			Help:      "Number of suggestions applied per accepted fetch.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"kind"},
	)

	var err error
	if fetches, err = registerCollector(reg, fetches); err != nil {
		return nil, err
	}
	if suggestions, err = registerCollector(reg, suggestions); err != nil {
		return nil, err
	}
	return &PrometheusObserver{fetches: fetches, suggestions: suggestions}, nil
}

func registerCollector[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (o *PrometheusObserver) FetchStarted(kind string) {
	o.fetches.WithLabelValues(kind, outcomeStarted).Inc()
}

func (o *PrometheusObserver) FetchApplied(kind string, suggestions int) {
	o.fetches.WithLabelValues(kind, outcomeApplied).Inc()
	o.suggestions.WithLabelValues(kind).Observe(float64(suggestions))
}

func (o *PrometheusObserver) FetchDiscarded(kind string) {
	o.fetches.WithLabelValues(kind, outcomeDiscarded).Inc()
}

func (o *PrometheusObserver) FetchFailed(kind string, _ error) {
	o.fetches.WithLabelValues(kind, outcomeFailed).Inc()
}
