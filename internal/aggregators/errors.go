package aggregators

import "errors"

// ErrEmptyInput is returned by Summarize when nothing was aggregated, so no share can be computed.
var ErrEmptyInput = errors.New("no requests aggregated")
