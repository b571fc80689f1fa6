package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records counters for the ingest/validate/aggregate run.
type PipelineMetrics struct {
	rowsLoaded   *prometheus.CounterVec
	rowsRejected *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	rowsLoaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_loaded_total",
		Help: "Rows accepted into the record store.",
	}, []string{"entity"})
	rowsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_rejected_total",
		Help: "Rows rejected during load.",
	}, []string{"entity", "constraint"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_anomalies_total",
		Help: "Business-rule anomalies found by the integrity validator.",
	}, []string{"rule"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_seconds",
		Help:    "Duration of pipeline stages in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	reg.MustRegister(rowsLoaded, rowsRejected, anomalies, duration)
	return &PipelineMetrics{
		rowsLoaded:   rowsLoaded,
		rowsRejected: rowsRejected,
		anomalies:    anomalies,
		duration:     duration,
	}
}

// AddRowsLoaded increments the accepted-row counter for an entity.
func (p *PipelineMetrics) AddRowsLoaded(entity string, n int) {
	if p == nil || p.rowsLoaded == nil {
		return
	}
	p.rowsLoaded.WithLabelValues(normalizeLabel(entity)).Add(float64(n))
}

// IncRowRejected increments the rejection counter for an entity/constraint pair.
func (p *PipelineMetrics) IncRowRejected(entity, constraint string) {
	if p == nil || p.rowsRejected == nil {
		return
	}
	p.rowsRejected.WithLabelValues(normalizeLabel(entity), normalizeLabel(constraint)).Inc()
}

// IncAnomaly increments the anomaly counter for the named rule.
func (p *PipelineMetrics) IncAnomaly(rule string) {
	if p == nil || p.anomalies == nil {
		return
	}
	p.anomalies.WithLabelValues(normalizeLabel(rule)).Inc()
}

// ObserveStage records the duration of the named pipeline stage.
func (p *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(stage)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
