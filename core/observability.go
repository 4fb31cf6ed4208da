package core

import "time"

// JobExecutionRecord captures a completed job execution event.
type JobExecutionRecord struct {
	Name       string
	WorkerID   int
	Priority   Priority
	Stolen     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

// WorkerStats represents runtime observability state for one worker.
type WorkerStats struct {
	ID        int
	Name      string
	Queued    int
	Executing bool
	State     WorkerState
	ThreadID  int
}

// PoolStats represents runtime observability state for a scheduler.
type PoolStats struct {
	ID      string
	Name    string
	Workers int
	Queued  int
	Active  int
	Running bool
	Stats   StatsSnapshot
}
