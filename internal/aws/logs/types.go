package logs

import "time"

// LogEvent represents a single CloudWatch log event.
type LogEvent struct {
	Timestamp time.Time
	Message   string
}

// StreamQuery selects the events read from one log stream.
type StreamQuery struct {
	Group  string
	Stream string
	// Limit caps the events returned per call; 0 leaves it to the service.
	Limit int
	// FromHead starts at the oldest event instead of the newest Limit events.
	FromHead bool
}
