package core

import "context"

// Action is the executable part of a Job.
//
// The context handed to an Action carries the Worker running it. Passing that
// context back to Scheduler.Schedule keeps sub-jobs on the same worker.
type Action func(ctx context.Context)

// Priority orders jobs inside a single worker queue. Higher values run first.
// Any int is valid; the named levels are conventions used by the toolkit.
type Priority int

const (
	// PriorityBestEffort: background work such as mip tails
	PriorityBestEffort Priority = iota

	// PriorityUserVisible: default priority
	PriorityUserVisible

	// PriorityUserBlocking: work somebody is waiting on right now
	PriorityUserBlocking
)

// Job is a prioritized unit of work with no return channel of its own.
// Use Submit when the caller needs a result.
//
// Jobs of equal priority have no defined relative execution order.
type Job struct {
	Priority Priority
	Action   Action

	// Name is optional and only used for diagnostics.
	Name string
}

// NewJob creates a Job with the given priority and action.
func NewJob(priority Priority, action Action) Job {
	return Job{Priority: priority, Action: action}
}

// NewNamedJob creates a Job carrying a diagnostic name.
func NewNamedJob(name string, priority Priority, action Action) Job {
	return Job{Priority: priority, Action: action, Name: name}
}

// =============================================================================
// Context Helper
// =============================================================================
type workerKeyType struct{}

var workerKey workerKeyType

// GetCurrentWorker returns the Worker executing the job that owns ctx,
// or nil when ctx does not come from a running job.
func GetCurrentWorker(ctx context.Context) *Worker {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(workerKey); v != nil {
		return v.(*Worker)
	}
	return nil
}

func withWorker(ctx context.Context, w *Worker) context.Context {
	return context.WithValue(ctx, workerKey, w)
}
