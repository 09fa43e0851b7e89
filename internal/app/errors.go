package app

import (
	"fmt"

	"log-analyzer/internal/shared/svcerrors"
)

// App run errors
const (
	codeInternalLogOpenFailed      = "APP_9000"
	codeInternalLogLookupFailed    = "APP_9001"
	codeInternalReportRenderFailed = "APP_9002"
	codeInternalReportStoreFailed  = "APP_9003"
)

// errInternalLogOpenFailed returns an error when the selected log cannot be opened or decompressed.
func errInternalLogOpenFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalLogOpenFailed, fmt.Errorf("logOpenFailed: %w", cause))
}

// errInternalLogLookupFailed returns an error when the logs directory cannot be listed.
func errInternalLogLookupFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalLogLookupFailed, fmt.Errorf("logLookupFailed: %w", cause))
}

func errInternalReportRenderFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalReportRenderFailed, fmt.Errorf("reportRenderFailed: %w", cause))
}

// errInternalReportStoreFailed returns an error when a report store operation fails.
func errInternalReportStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalReportStoreFailed, fmt.Errorf("reportStoreFailed: %w", cause))
}
