package dpool

// Stats is a point-in-time snapshot of pool utilization, serializable for
// logging and metrics export. Snapshots are internally consistent:
// ActiveConnections + IdleConnections == TotalConnections, and
// TotalReleases <= TotalAcquisitions.
type Stats struct {
	TotalConnections  int   `json:"total_connections"`
	ActiveConnections int   `json:"active_connections"`
	IdleConnections   int   `json:"idle_connections"`
	MaxConnections    int   `json:"max_connections"`
	TotalAcquisitions int64 `json:"total_acquisitions"`
	TotalReleases     int64 `json:"total_releases"`

	// Accumulated time callers spent blocked in Acquire.
	TotalWaitTimeMs int64   `json:"total_wait_time_ms"`
	MaxWaitTimeMs   int64   `json:"max_wait_time_ms"`
	AvgWaitTimeMs   float64 `json:"avg_wait_time_ms"`
}
