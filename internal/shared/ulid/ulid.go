package ulid

import (
	"github.com/oklog/ulid/v2"
)

// NewRunID generates a lexically sortable identifier for one analyzer run.
// It is a variable so tests can pin it.
var NewRunID = func() string {
	return ulid.Make().String()
}
