package sources

import "errors"

var (
	// ErrLogNotFound is returned when no file in the logs directory matches the name template.
	ErrLogNotFound = errors.New("no log file matches the name template")
)
