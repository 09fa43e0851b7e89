package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedValue reports a record field that matched the line pattern but cannot be
// coerced to the value the analysis needs.
var ErrMalformedValue = errors.New("malformed value")

// LogRecord is one parsed access-log line. Field names follow the nginx log_format
// variables the line pattern captures.
//
// Example line:
//
//	1.196.116.32 -  - [29/Jun/2017:03:50:22 +0300] "GET /api/v2/banner/25019354 HTTP/1.1" 200 927 "-" "Lynx/2.8.8dev.9 libwww-FM/2.14 SSL-MM/1.4.1 GNUTLS/2.10.5" "-" "1498697422-2190034393-4708-9752759" "dc7161be3" 0.390
type LogRecord struct {
	RemoteAddr    string
	RemoteUser    string
	RealIP        string
	TimeLocal     string
	Request       string
	Status        int
	BodyBytesSent int64
	Referer       string
	UserAgent     string
	ForwardedFor  string
	RequestID     string
	RbUser        string
	RequestTime   string // seconds; "-" when nginx did not measure it
}

// Duration returns RequestTime in seconds.
func (r *LogRecord) Duration() (float64, error) {
	raw := strings.TrimSpace(r.RequestTime)
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: request_time %q", ErrMalformedValue, r.RequestTime)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, fmt.Errorf("%w: request_time %q out of range", ErrMalformedValue, r.RequestTime)
	}
	return d, nil
}

// URL returns the target of the request line, e.g. "/a?b=1" for "GET /a?b=1 HTTP/1.1".
func (r *LogRecord) URL() (string, error) {
	parts := strings.Fields(r.Request)
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: request %q has no url", ErrMalformedValue, r.Request)
	}
	return parts[1], nil
}
