package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldDatasetID = "dataset_id"
	FieldEntryID   = "entry_id"
	FieldObjectKey = "object_key"
	FieldSource    = "source"
)

// Metric fields, attached per record for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
