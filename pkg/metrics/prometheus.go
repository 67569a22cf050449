package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	haltsTotal    *prometheus.CounterVec
	fetchRetries  *prometheus.CounterVec
	degradedRuns  prometheus.Counter
	cacheOps      *prometheus.CounterVec
	canonicalLoad *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadledger_report_runs_total",
				Help: "Total number of report runs by range and outcome",
			},
			[]string{"range", "status"},
		),
		haltsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadledger_pipeline_halts_total",
				Help: "Total number of fatal pipeline halts by kind",
			},
			[]string{"kind"},
		),
		fetchRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadledger_fetch_retries_total",
				Help: "Total number of provider fetch retries by dataset",
			},
			[]string{"dataset"},
		),
		degradedRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loadledger_degraded_runs_total",
				Help: "Total number of runs finished with degraded audit precision",
			},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadledger_dataset_cache_ops_total",
				Help: "Dataset cache operations by result (hit, miss, store)",
			},
			[]string{"result"},
		),
		canonicalLoad: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loadledger_canonical_training_load",
				Help: "Canonical training load of the most recent validated run",
			},
			[]string{"range"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loadledger_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordRun records a finished run by range and outcome status.
func (r *Recorder) RecordRun(rng, status string) {
	r.runsTotal.WithLabelValues(rng, status).Inc()
}

// RecordHalt records a fatal pipeline halt.
func (r *Recorder) RecordHalt(kind string) {
	r.haltsTotal.WithLabelValues(kind).Inc()
}

// RecordFetchRetry records a provider retry for a dataset.
func (r *Recorder) RecordFetchRetry(dataset string) {
	r.fetchRetries.WithLabelValues(dataset).Inc()
}

// RecordDegradedRun records a run finished with degraded precision.
func (r *Recorder) RecordDegradedRun() {
	r.degradedRuns.Inc()
}

// RecordCacheOp records a dataset cache hit, miss, or store.
func (r *Recorder) RecordCacheOp(result string) {
	r.cacheOps.WithLabelValues(result).Inc()
}

// RecordCanonicalLoad records the canonical training load of a validated run.
func (r *Recorder) RecordCanonicalLoad(rng string, load float64) {
	r.canonicalLoad.WithLabelValues(rng).Set(load)
}

// RecordStageDuration records pipeline stage latency in seconds.
func (r *Recorder) RecordStageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}
