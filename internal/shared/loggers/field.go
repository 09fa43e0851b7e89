package loggers

const (
	FieldApp       = "app"
	FieldComponent = "component"
	FieldRunID     = "run_id"

	FieldLogFile    = "log_file"
	FieldReportFile = "report_file"
	FieldLineNumber = "line_number"

	FieldDuration   = "duration"
	FieldErrorStack = "error_stack"
	FieldErrorCode  = "error_code"

	FieldTotalRequests = "total_requests"
	FieldTotalErrors   = "total_errors"
)
