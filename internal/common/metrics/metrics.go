// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_documents_analyzed_total",
			Help: "Total number of documents scanned per framework",
		},
		[]string{"framework"},
	)

	FindingsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_findings_emitted_total",
			Help: "Total number of findings emitted by framework and risk level",
		},
		[]string{"framework", "risk_level"},
	)

	ScreeningsPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_screenings_total",
			Help: "Total number of entity screenings by status",
		},
		[]string{"status"},
	)

	ScreeningDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "compliance_screening_duration_seconds",
			Help: "Duration of a single entity screening in seconds",
		},
		[]string{"entity_type"},
	)

	RowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_rows_imported_total",
			Help: "Total number of watchlist rows imported per list format",
		},
		[]string{"format"},
	)

	ImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_import_errors_total",
			Help: "Total number of rows skipped during import",
		},
		[]string{"format"},
	)
)
