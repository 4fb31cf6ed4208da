package jobpool

import (
	"context"

	"github.com/Swind/go-job-pool/core"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the jobpool package for most use cases.

// Job is a prioritized unit of work
type Job = core.Job

// Action is the executable part of a Job
type Action = core.Action

// Priority orders jobs inside one worker's queue
type Priority = core.Priority

// Scheduler owns the workers and accepts jobs
type Scheduler = core.Scheduler

// SchedulerConfig configures handlers, pinning and history
type SchedulerConfig = core.SchedulerConfig

// Worker is one OS thread with its queue
type Worker = core.Worker

// ThreadPriority is the OS priority of worker threads
type ThreadPriority = core.ThreadPriority

// StatsSnapshot is a copy of the scheduler counters
type StatsSnapshot = core.StatsSnapshot

// Future and Result carry the outcome of Submit
type Future[T any] = core.Future[T]
type Result[T any] = core.Result[T]
type Work[T any] = core.Work[T]

// Priority constants
const (
	PriorityBestEffort   Priority = core.PriorityBestEffort
	PriorityUserVisible  Priority = core.PriorityUserVisible
	PriorityUserBlocking Priority = core.PriorityUserBlocking
)

// Worker thread priorities
const (
	ThreadPriorityNormal      ThreadPriority = core.ThreadPriorityNormal
	ThreadPriorityLow         ThreadPriority = core.ThreadPriorityLow
	ThreadPriorityHigh        ThreadPriority = core.ThreadPriorityHigh
	ThreadPriorityInteractive ThreadPriority = core.ThreadPriorityInteractive
)

// Errors returned by Schedule
var (
	ErrNilJob           = core.ErrNilJob
	ErrSchedulerStopped = core.ErrSchedulerStopped
	ErrForeignWorker    = core.ErrForeignWorker
)

// Constructors and helpers
var (
	NewJob                 = core.NewJob
	NewNamedJob            = core.NewNamedJob
	NewScheduler           = core.NewScheduler
	NewSchedulerWithConfig = core.NewSchedulerWithConfig
	DefaultSchedulerConfig = core.DefaultSchedulerConfig
)

// GetCurrentWorker retrieves the Worker running the job that owns ctx
var GetCurrentWorker = core.GetCurrentWorker

// Submit schedules fn on s and returns a Future for its result.
func Submit[T any](ctx context.Context, s *Scheduler, priority Priority, fn Work[T]) (*Future[T], error) {
	return core.Submit(ctx, s, priority, fn)
}
