package domain

import "time"

// RunInfo identifies one linkage run to the sinks.
type RunInfo struct {
	ID        string
	StartedAt time.Time
}
