package analyzers

import (
	"log-analyzer/internal/shared/metrics"
)

const (
	outcomeParsed    = "parsed"
	outcomeMismatch  = "mismatch"
	outcomeMalformed = "malformed"
)

var (
	metricLinesTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAnalysis,
			Name:      "lines_total",
		},
		[]string{metrics.FieldOutcome},
	)

	metricRunDurationSeconds = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAnalysis,
			Name:      "run_duration_seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{metrics.FieldErrorCode},
	)
)
