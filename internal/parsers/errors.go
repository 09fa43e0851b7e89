package parsers

import "errors"

// ErrLineMismatch is returned for a line that does not have the access log layout.
var ErrLineMismatch = errors.New("line does not match access log pattern")
