package analyzers

import (
	"fmt"

	"log-analyzer/internal/shared/svcerrors"
)

// AnalysisService errors
const (
	CodeEmptyInput = "ANL_1000"

	CodeInternalReadFailed = "ANL_9000"
)

// errEmptyInput returns an error when a run produced nothing to rank.
func errEmptyInput(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(CodeEmptyInput, "nothing to summarize", cause)
}

// errInternalReadFailed returns an error when the line source fails mid-stream.
func errInternalReadFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(CodeInternalReadFailed, fmt.Errorf("readFailed: %w", cause))
}
