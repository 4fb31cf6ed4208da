package core

import (
	"context"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling job panics
// =============================================================================

// PanicHandler is called when a job action panics.
// The worker recovers, reports, and keeps running.
//
// Implementations should be thread-safe as they are called from every worker.
type PanicHandler interface {
	// HandlePanic is called when a job panics.
	//
	// Parameters:
	// - ctx: The job context (carries the worker)
	// - schedulerName: The name of the scheduler owning the worker
	// - workerID: The index of the worker that ran the job
	// - panicInfo: The panic value recovered from the job
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, schedulerName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs panics through Logger (DefaultLogger when nil).
type DefaultPanicHandler struct {
	Logger Logger
}

// HandlePanic logs panic information at error level.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, schedulerName string, workerID int, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Error("job panicked",
		F("scheduler", schedulerName),
		F("worker", workerID),
		F("panic", panicInfo),
		F("stack", string(stackTrace)))
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting job execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on worker threads between jobs; they must be
// non-blocking and fast.
type Metrics interface {
	// RecordJobDuration records how long a job action ran.
	RecordJobDuration(schedulerName string, priority Priority, duration time.Duration)

	// RecordJobPanic records that a job panicked during execution.
	RecordJobPanic(schedulerName string, panicInfo any)

	// RecordJobStolen records that an idle worker took a job from another
	// worker's queue.
	RecordJobStolen(schedulerName string)

	// RecordJobRejected records that Schedule refused a job.
	RecordJobRejected(schedulerName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordJobDuration(schedulerName string, priority Priority, duration time.Duration) {
}

func (m *NilMetrics) RecordJobPanic(schedulerName string, panicInfo any) {}

func (m *NilMetrics) RecordJobStolen(schedulerName string) {}

func (m *NilMetrics) RecordJobRejected(schedulerName string, reason string) {}

// =============================================================================
// RejectedJobHandler: Interface for handling rejected jobs
// =============================================================================

// RejectedJobHandler is called when Schedule refuses a job, which happens when:
// - The scheduler is stopping or stopped
// - The submitting context belongs to a worker of another scheduler
//
// Schedule also returns the matching error; the handler exists for
// centralized logging. Implementations should be thread-safe.
type RejectedJobHandler interface {
	HandleRejectedJob(schedulerName string, reason string)
}

// DefaultRejectedJobHandler logs rejected jobs at warn level.
type DefaultRejectedJobHandler struct {
	Logger Logger
}

// HandleRejectedJob logs the rejected job.
func (h *DefaultRejectedJobHandler) HandleRejectedJob(schedulerName string, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Warn("job rejected", F("scheduler", schedulerName), F("reason", reason))
}

// =============================================================================
// SchedulerConfig: Configuration for Scheduler
// =============================================================================

// SchedulerConfig holds configuration options for Scheduler.
// Nil handlers are replaced by defaults; zero values of the plain fields are
// taken literally.
type SchedulerConfig struct {
	// Name labels logs and metrics. Defaults to "scheduler".
	Name string

	// PinThreads binds worker i to the i-th CPU the process may run on.
	PinThreads bool

	// ThreadPriority is applied to every worker thread. Failures, e.g. a
	// missing privilege to raise it, are logged and the worker runs anyway.
	ThreadPriority ThreadPriority

	// HistoryCapacity is the number of recent executions kept for
	// RecentJobs. Zero disables history.
	HistoryCapacity int

	// Logger defaults to DefaultLogger.
	Logger Logger

	// PanicHandler defaults to DefaultPanicHandler using Logger.
	PanicHandler PanicHandler

	// Metrics defaults to NilMetrics.
	Metrics Metrics

	// RejectedJobHandler defaults to DefaultRejectedJobHandler using Logger.
	RejectedJobHandler RejectedJobHandler
}

// DefaultSchedulerConfig returns a config with default handlers and thread
// pinning enabled.
func DefaultSchedulerConfig() *SchedulerConfig {
	logger := NewDefaultLogger()
	return &SchedulerConfig{
		Name:               "scheduler",
		PinThreads:         true,
		Logger:             logger,
		PanicHandler:       &DefaultPanicHandler{Logger: logger},
		Metrics:            &NilMetrics{},
		RejectedJobHandler: &DefaultRejectedJobHandler{Logger: logger},
	}
}
