package connector

// ConnectionStats is a snapshot of a connection's activity.
type ConnectionStats struct {
	OpenCursors     int
	QueriesExecuted int64
	QueriesFailed   int64
}
