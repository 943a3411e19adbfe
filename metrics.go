package vitalz

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons reported by Metrics.
const (
	SkipStreamed         = "streamed"
	SkipBeforeNavigation = "before_navigation"
	SkipNoRoot           = "no_root"
	SkipDeclined         = "declined"
	SkipDisabled         = "disabled"
)

// Metrics counts what the tracker does. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	EntriesClassified *prometheus.CounterVec
	SpansSynthesized  *prometheus.CounterVec
	EntriesSkipped    *prometheus.CounterVec
	Finalizations     *prometheus.CounterVec
	CallbackPanics    *prometheus.CounterVec
}

// NewMetrics creates the tracker counters and registers them with r.
// A nil registerer leaves them unregistered.
func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EntriesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalz",
			Name:      "entries_classified_total",
			Help:      "Performance entries passed through the classifier.",
		}, []string{"entry_type"}),
		SpansSynthesized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalz",
			Name:      "spans_synthesized_total",
			Help:      "Finished spans emitted from timing data.",
		}, []string{"op"}),
		EntriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalz",
			Name:      "entries_skipped_total",
			Help:      "Performance entries dropped before classification.",
		}, []string{"reason"}),
		Finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalz",
			Name:      "finalizations_total",
			Help:      "Finalize calls by root span op.",
		}, []string{"op"}),
		CallbackPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalz",
			Name:      "callback_panics_total",
			Help:      "Panics recovered at the subscription boundary.",
		}, []string{"source"}),
	}

	if r == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.EntriesClassified, m.SpansSynthesized, m.EntriesSkipped, m.Finalizations, m.CallbackPanics,
	} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) classified(t EntryType) {
	if m != nil {
		m.EntriesClassified.WithLabelValues(string(t)).Inc()
	}
}

func (m *Metrics) synthesized(op string) {
	if m != nil {
		m.SpansSynthesized.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) skipped(reason string) {
	if m != nil {
		m.EntriesSkipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) finalized(op string) {
	if m != nil {
		m.Finalizations.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) panicked(source string) {
	if m != nil {
		m.CallbackPanics.WithLabelValues(source).Inc()
	}
}
