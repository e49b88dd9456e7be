package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for catalog persistence.
// Every save rewrites the whole document, so document size is tracked too.
type Metrics struct {
	SavesTotal    *prometheus.CounterVec
	LoadsTotal    *prometheus.CounterVec
	SaveDuration  prometheus.Histogram
	LoadDuration  prometheus.Histogram
	DocumentBytes prometheus.Gauge
	ReplacedTotal prometheus.Counter
}

// New registers the catalog metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	return &Metrics{
		SavesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baias_catalog_saves_total",
			Help: "Whole-document saves by backend driver and outcome",
		}, []string{"driver", "outcome"}),
		LoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baias_catalog_loads_total",
			Help: "Whole-document loads by backend driver and outcome",
		}, []string{"driver", "outcome"}),
		SaveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "baias_catalog_save_duration_seconds",
			Help:    "Duration of whole-document saves",
			Buckets: buckets,
		}),
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "baias_catalog_load_duration_seconds",
			Help:    "Duration of whole-document loads",
			Buckets: buckets,
		}),
		DocumentBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "baias_catalog_document_bytes",
			Help: "Size of the last loaded or saved catalog document",
		}),
		ReplacedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "baias_catalog_replaced_total",
			Help: "Accepted POST /update document replacements",
		}),
	}
}

// ObserveSave records one save attempt. Call with time.Now() taken before the write.
func (m *Metrics) ObserveSave(driver, outcome string, size int, start time.Time) {
	if m == nil {
		return
	}
	m.SavesTotal.WithLabelValues(driver, outcome).Inc()
	m.SaveDuration.Observe(time.Since(start).Seconds())
	if outcome == OutcomeOK {
		m.DocumentBytes.Set(float64(size))
	}
}

// ObserveLoad records one load attempt.
func (m *Metrics) ObserveLoad(driver, outcome string, size int, start time.Time) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(driver, outcome).Inc()
	m.LoadDuration.Observe(time.Since(start).Seconds())
	if outcome == OutcomeOK {
		m.DocumentBytes.Set(float64(size))
	}
}

// IncrementReplaced counts an accepted whole-document replacement.
func (m *Metrics) IncrementReplaced() {
	if m == nil {
		return
	}
	m.ReplacedTotal.Inc()
}

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeCorrupt     = "corrupt"
)
