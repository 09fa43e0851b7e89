package app

import (
	"log-analyzer/internal/shared/metrics"
)

const (
	outcomeRendered      = "rendered"
	outcomeNoLog         = "no_log"
	outcomeReportExists  = "report_exists"
	outcomeEmptyInput    = "empty_input"
	outcomeTooManyErrors = "too_many_errors"
	outcomeFailed        = "failed"
)

var (
	metricRunsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubReport,
			Name:      "runs_total",
		},
		[]string{metrics.FieldOutcome, metrics.FieldErrorCode},
	)

	metricErrorsPercent = metrics.NewGauge(
		metrics.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubReport,
			Name:      "errors_percent",
			Help:      "Share of unparsable lines in the last analyzed log.",
		},
	)
)
