package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	PaymentsTotal        *prometheus.CounterVec
	LoanTransitionsTotal *prometheus.CounterVec
	CacheLookupsTotal    *prometheus.CounterVec
	BatchRunsTotal       *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_engine_payments_total",
				Help: "Payments processed, by outcome.",
			},
			[]string{"status"},
		),
		LoanTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_engine_loan_transitions_total",
				Help: "Loan lifecycle transitions, by target status.",
			},
			[]string{"status"},
		),
		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_engine_cache_lookups_total",
				Help: "Product cache lookups, by result.",
			},
			[]string{"result"},
		),
		BatchRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_engine_batch_runs_total",
				Help: "Batch job runs, by job and outcome.",
			},
			[]string{"job", "status"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordLoanTransition(status string) {
	Business.LoanTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordCacheLookup(result string) {
	Business.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordBatchRun(job, status string) {
	Business.BatchRunsTotal.WithLabelValues(job, status).Inc()
}
