package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID is the crawl run ID
	FieldRunID = "run_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldTeam is the team name currently being crawled
	FieldTeam = "team"

	// FieldPlayer is the player name currently being scored or crawled
	FieldPlayer = "player"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldAttempt is the retry attempt number
	FieldAttempt = "attempt"
)
