package models

import "time"

// LogFile is an access log found in the logs directory together with the date
// encoded in its name.
type LogFile struct {
	Name string
	Date time.Time
}
