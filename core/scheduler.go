package core

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	schedulerRunning int32 = iota
	schedulerStopping
	schedulerStopped
)

// Scheduler owns a fixed set of Workers, one OS thread each.
//
// Jobs scheduled from outside the pool land on worker 0, which is woken
// explicitly. Jobs scheduled from inside a running job (using the context the
// job received) land on that job's worker. Idle workers steal to balance load.
type Scheduler struct {
	id      string
	name    string
	workers []*Worker
	stats   SchedulerStats

	stop  atomic.Bool
	state atomic.Int32

	pinThreads     bool
	threadPriority ThreadPriority
	history        *executionHistory

	// Handlers and Metrics
	logger             Logger
	panicHandler       PanicHandler
	metrics            Metrics
	rejectedJobHandler RejectedJobHandler
}

// NewScheduler starts a scheduler with n workers and the default config.
// n < 1 is treated as 1.
func NewScheduler(n int) *Scheduler {
	return NewSchedulerWithConfig(n, DefaultSchedulerConfig())
}

// NewSchedulerWithConfig starts a scheduler with n workers. Nil handlers in
// config are replaced by defaults.
func NewSchedulerWithConfig(n int, config *SchedulerConfig) *Scheduler {
	if n < 1 {
		n = 1
	}
	if config == nil {
		config = DefaultSchedulerConfig()
	}

	s := &Scheduler{
		id:                 uuid.NewString(),
		name:               config.Name,
		pinThreads:         config.PinThreads,
		threadPriority:     config.ThreadPriority,
		logger:             config.Logger,
		panicHandler:       config.PanicHandler,
		metrics:            config.Metrics,
		rejectedJobHandler: config.RejectedJobHandler,
	}

	// Use defaults if not provided
	if s.name == "" {
		s.name = "scheduler"
	}
	if s.logger == nil {
		s.logger = NewDefaultLogger()
	}
	if s.panicHandler == nil {
		s.panicHandler = &DefaultPanicHandler{Logger: s.logger}
	}
	if s.metrics == nil {
		s.metrics = &NilMetrics{}
	}
	if s.rejectedJobHandler == nil {
		s.rejectedJobHandler = &DefaultRejectedJobHandler{Logger: s.logger}
	}
	if config.HistoryCapacity > 0 {
		s.history = newExecutionHistory(config.HistoryCapacity)
	}

	s.workers = make([]*Worker, n)
	for i := range s.workers {
		s.workers[i] = newWorker(i, s)
	}
	// All workers exist before any of them can steal
	for _, w := range s.workers {
		w.start()
	}

	s.logger.Info("scheduler started",
		F("scheduler", s.name), F("id", s.id), F("workers", n), F("pin", s.pinThreads), F("priority", s.threadPriority.String()))
	return s
}

// Schedule queues job for asynchronous execution.
//
// ctx selects the target queue: a context handed to a running job routes the
// job to that job's worker, anything else routes it to worker 0. A sub-job
// scheduled by the running job itself is picked up when that job returns;
// from any other goroutine the worker is woken. Jobs of equal priority have
// no defined relative order.
func (s *Scheduler) Schedule(ctx context.Context, job Job) error {
	if job.Action == nil {
		return ErrNilJob
	}
	if s.isStop() {
		s.reject("scheduler stopped")
		return ErrSchedulerStopped
	}

	w := GetCurrentWorker(ctx)
	if w == nil {
		// Outside the pool; nobody else will wake worker 0
		w = s.workers[0]
		w.queue.Push(job)
		s.stats.onScheduled()
		w.wake()
		return nil
	}
	if w.scheduler != s {
		s.reject("foreign worker")
		return fmt.Errorf("%w: %s", ErrForeignWorker, w.scheduler.name)
	}

	w.queue.Push(job)
	s.stats.onScheduled()
	if !w.isCurrentThread() {
		// The context outlived its job or was handed to another goroutine;
		// w may already be asleep.
		w.wake()
	}
	return nil
}

// ScheduleFunc is shorthand for Schedule(ctx, NewJob(priority, action)).
func (s *Scheduler) ScheduleFunc(ctx context.Context, priority Priority, action Action) error {
	return s.Schedule(ctx, NewJob(priority, action))
}

func (s *Scheduler) reject(reason string) {
	s.stats.rejected.Add(1)
	s.rejectedJobHandler.HandleRejectedJob(s.name, reason)
	s.metrics.RecordJobRejected(s.name, reason)
}

// Stop signals every worker to exit and joins them one after another.
// Running jobs finish; queued jobs are discarded and counted as dropped.
//
// Stop is idempotent. It panics when called from one of the scheduler's own
// worker threads, since that worker could never be joined.
func (s *Scheduler) Stop() {
	if s.state.Load() != schedulerRunning {
		return
	}
	if s.isWorkerThread() {
		panic(fmt.Sprintf("jobpool: Stop called from a worker thread of scheduler %q", s.name))
	}
	if !s.state.CompareAndSwap(schedulerRunning, schedulerStopping) {
		return
	}

	s.logger.Info("scheduler stopping", F("scheduler", s.name))
	s.stop.Store(true)
	for _, w := range s.workers {
		w.wake()
		<-w.done
	}

	dropped := 0
	for _, w := range s.workers {
		dropped += w.queue.Clear()
	}
	s.stats.onDropped(dropped)
	s.state.Store(schedulerStopped)

	s.logger.Info("scheduler stopped",
		F("scheduler", s.name), F("executed", s.stats.executed.Load()), F("dropped", dropped))
}

func (s *Scheduler) isStop() bool {
	return s.stop.Load()
}

// isWorkerThread reports whether the calling goroutine runs on one of this
// scheduler's worker threads. Always false where thread ids are unknown.
func (s *Scheduler) isWorkerThread() bool {
	for _, w := range s.workers {
		if w.isCurrentThread() {
			return true
		}
	}
	return false
}

// IsStopped reports whether Stop has begun.
func (s *Scheduler) IsStopped() bool {
	return s.state.Load() != schedulerRunning
}

// ID returns the scheduler's unique id.
func (s *Scheduler) ID() string { return s.id }

// Name returns the configured name.
func (s *Scheduler) Name() string { return s.name }

// NumWorkers returns the fixed worker count.
func (s *Scheduler) NumWorkers() int { return len(s.workers) }

// Workers returns the workers in index order. The slice must not be modified.
func (s *Scheduler) Workers() []*Worker { return s.workers }

// Stats returns a snapshot of the aggregate counters.
func (s *Scheduler) Stats() StatsSnapshot { return s.stats.Snapshot() }

// WorkerStats returns per-worker state in index order.
func (s *Scheduler) WorkerStats() []WorkerStats {
	out := make([]WorkerStats, len(s.workers))
	for i, w := range s.workers {
		out[i] = w.Stats()
	}
	return out
}

// Snapshot returns pool-level state for pollers and dashboards.
func (s *Scheduler) Snapshot() PoolStats {
	queued, active := 0, 0
	for _, w := range s.workers {
		queued += w.queue.Len()
		if w.executing.Load() {
			active++
		}
	}
	return PoolStats{
		ID:      s.id,
		Name:    s.name,
		Workers: len(s.workers),
		Queued:  queued,
		Active:  active,
		Running: !s.IsStopped(),
		Stats:   s.stats.Snapshot(),
	}
}

// RecentJobs returns up to limit recent executions, newest first.
// It returns nil when history is disabled.
func (s *Scheduler) RecentJobs(limit int) []JobExecutionRecord {
	if s.history == nil {
		return nil
	}
	return s.history.Recent(limit)
}

// LastJob returns the most recent execution, if history is enabled.
func (s *Scheduler) LastJob() (JobExecutionRecord, bool) {
	if s.history == nil {
		return JobExecutionRecord{}, false
	}
	return s.history.Last()
}
