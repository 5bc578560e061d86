package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rowsTotal counts statement rows by what became of them.
	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerbook_import_rows_total",
			Help: "Statement rows processed by imports, by outcome",
		},
		[]string{"outcome"},
	)

	importDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledgerbook_import_duration_seconds",
			Help:    "Statement import duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	outcomeImported = "imported"
	outcomeSkipped  = "skipped"
	outcomeDropped  = "dropped"
	outcomeError    = "error"
)

func observeRows(res *Result) {
	rowsTotal.WithLabelValues(outcomeImported).Add(float64(res.ImportedCount))
	rowsTotal.WithLabelValues(outcomeSkipped).Add(float64(res.SkippedCount))
	rowsTotal.WithLabelValues(outcomeDropped).Add(float64(res.DroppedCount))
	rowsTotal.WithLabelValues(outcomeError).Add(float64(len(res.Errors)))
}
