package models

import (
	"fmt"
)

// KeyField selects which record field the analysis groups requests by.
type KeyField string

const (
	KeyFieldURL        KeyField = "url"
	KeyFieldRemoteAddr KeyField = "remote_addr"
)

func NewKeyFieldFromString(s string) (KeyField, error) {
	switch KeyField(s) {
	case KeyFieldURL, KeyFieldRemoteAddr:
		return KeyField(s), nil
	default:
		return "", fmt.Errorf("invalid key field: %q", s)
	}
}

// Key extracts the grouping key of record.
func (k KeyField) Key(record *LogRecord) (string, error) {
	switch k {
	case KeyFieldURL:
		return record.URL()
	case KeyFieldRemoteAddr:
		if record.RemoteAddr == "" {
			return "", fmt.Errorf("%w: empty remote_addr", ErrMalformedValue)
		}
		return record.RemoteAddr, nil
	default:
		panic(fmt.Sprintf("invalid KeyField: %q", k))
	}
}
