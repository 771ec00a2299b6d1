package logger

// Field keys shared across packages so log lines can be queried the same
// way everywhere.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldProvider  = "provider"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)
