package core

import "errors"

var (
	// ErrNilJob is returned when a job has no action.
	ErrNilJob = errors.New("jobpool: job action is nil")

	// ErrSchedulerStopped is returned by Schedule once Stop has begun.
	ErrSchedulerStopped = errors.New("jobpool: scheduler is stopped")

	// ErrForeignWorker is returned when the submitting context belongs to a
	// worker of a different scheduler.
	ErrForeignWorker = errors.New("jobpool: submitting worker belongs to another scheduler")

	errAffinityUnsupported       = errors.New("thread affinity is not supported on this platform")
	errThreadPriorityUnsupported = errors.New("thread priority is not supported on this platform")
)
