package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are shared by every Processor configured with them; series are
// labelled by the processor name.
type Metrics struct {
	Records  *prometheus.CounterVec
	Matches  *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Records: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradescan_records_total",
				Help: "Records parsed and queued by the producer",
			},
			[]string{"screen"},
		),
		Matches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradescan_matches_total",
				Help: "Records accepted by the predicate",
			},
			[]string{"screen"},
		),
		Failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradescan_failures_total",
				Help: "Recovered failures by kind",
			},
			[]string{"screen", "kind"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradescan_run_duration_seconds",
				Help:    "Wall time of a pipeline run",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"screen"},
		),
	}
}

type boundMetrics struct {
	records  prometheus.Counter
	matches  prometheus.Counter
	failures map[FailureKind]prometheus.Counter
	duration prometheus.Observer
}

// bind resolves the series of one screen up front so the hot path does not
// hash label values per record.
func (m *Metrics) bind(screen string) *boundMetrics {
	if m == nil {
		return nil
	}

	b := &boundMetrics{
		records:  m.Records.WithLabelValues(screen),
		matches:  m.Matches.WithLabelValues(screen),
		failures: make(map[FailureKind]prometheus.Counter, 3),
		duration: m.Duration.WithLabelValues(screen),
	}
	for _, k := range []FailureKind{SourceUnavailable, LineParse, PredicateFailure} {
		b.failures[k] = m.Failures.WithLabelValues(screen, k.String())
	}
	return b
}

func (b *boundMetrics) record() {
	if b != nil {
		b.records.Inc()
	}
}

func (b *boundMetrics) match() {
	if b != nil {
		b.matches.Inc()
	}
}

func (b *boundMetrics) failure(kind FailureKind) {
	if b != nil {
		if c, ok := b.failures[kind]; ok {
			c.Inc()
		}
	}
}

func (b *boundMetrics) observe(seconds float64) {
	if b != nil {
		b.duration.Observe(seconds)
	}
}
