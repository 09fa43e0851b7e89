package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"log-analyzer/internal/models"
)

// accessLogPattern matches the nginx "ui" log_format:
//
//	$remote_addr $remote_user  $http_x_real_ip [$time_local] "$request" $status $body_bytes_sent
//	"$http_referer" "$http_user_agent" "$http_x_forwarded_for" "$http_X_REQUEST_ID" "$http_X_RB_USER"
//	$request_time
//
// Only the start of the line is anchored; request_time takes the rest of the line.
var accessLogPattern = regexp.MustCompile(
	`^(?P<remote_addr>\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\s` +
		`(?P<remote_user>\S+)\s+` +
		`(?P<http_x_real_ip>\S+)\s+` +
		`\[(?P<time_local>.+)\]\s+` +
		`"(?P<request>.*?)"\s+` +
		`(?P<status>\d{3})\s+` +
		`(?P<body_bytes_sent>\d+)\s+` +
		`"(?P<http_referer>.+)"\s+` +
		`"(?P<http_user_agent>.+)"\s+` +
		`"(?P<http_x_forwarded_for>.+)"\s+` +
		`"(?P<http_X_REQUEST_ID>.+)"\s+` +
		`"(?P<http_X_RB_USER>.+)"\s+` +
		`(?P<request_time>.+)`,
)

var (
	groupRemoteAddr    = accessLogPattern.SubexpIndex("remote_addr")
	groupRemoteUser    = accessLogPattern.SubexpIndex("remote_user")
	groupRealIP        = accessLogPattern.SubexpIndex("http_x_real_ip")
	groupTimeLocal     = accessLogPattern.SubexpIndex("time_local")
	groupRequest       = accessLogPattern.SubexpIndex("request")
	groupStatus        = accessLogPattern.SubexpIndex("status")
	groupBodyBytesSent = accessLogPattern.SubexpIndex("body_bytes_sent")
	groupReferer       = accessLogPattern.SubexpIndex("http_referer")
	groupUserAgent     = accessLogPattern.SubexpIndex("http_user_agent")
	groupForwardedFor  = accessLogPattern.SubexpIndex("http_x_forwarded_for")
	groupRequestID     = accessLogPattern.SubexpIndex("http_X_REQUEST_ID")
	groupRbUser        = accessLogPattern.SubexpIndex("http_X_RB_USER")
	groupRequestTime   = accessLogPattern.SubexpIndex("request_time")
)

//go:generate mockgen -source=record_extractor.go -destination=./mocks/record_extractor_mock.go -package=mocks
type RecordExtractor interface {
	// Extract parses one line, with or without its line terminator.
	// It returns ErrLineMismatch when the line does not have the access log layout.
	Extract(line string) (*models.LogRecord, error)
}

type recordExtractor struct{}

func NewRecordExtractor() RecordExtractor {
	return &recordExtractor{}
}

func (e *recordExtractor) Extract(line string) (*models.LogRecord, error) {
	line = strings.TrimRight(line, "\r\n")

	m := accessLogPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, ErrLineMismatch
	}

	status, err := strconv.Atoi(m[groupStatus])
	if err != nil {
		return nil, fmt.Errorf("%w: status: %w", ErrLineMismatch, err)
	}
	bodyBytesSent, err := strconv.ParseInt(m[groupBodyBytesSent], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: body_bytes_sent: %w", ErrLineMismatch, err)
	}

	return &models.LogRecord{
		RemoteAddr:    m[groupRemoteAddr],
		RemoteUser:    m[groupRemoteUser],
		RealIP:        m[groupRealIP],
		TimeLocal:     m[groupTimeLocal],
		Request:       m[groupRequest],
		Status:        status,
		BodyBytesSent: bodyBytesSent,
		Referer:       m[groupReferer],
		UserAgent:     m[groupUserAgent],
		ForwardedFor:  m[groupForwardedFor],
		RequestID:     m[groupRequestID],
		RbUser:        m[groupRbUser],
		RequestTime:   m[groupRequestTime],
	}, nil
}
