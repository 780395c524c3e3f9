package driven

import "time"

// Metrics records operation outcomes.
type Metrics interface {
	// DocumentIngested counts a committed document and its chunks.
	DocumentIngested(fileType string, chunks int)

	// IngestFailed counts a failed ingestion by error kind.
	IngestFailed(kind string)

	// QueryCompleted records a query operation's outcome and latency.
	QueryCompleted(operation, outcome string, elapsed time.Duration)
}
