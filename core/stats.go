package core

import "sync/atomic"

// SchedulerStats holds the counters shared by a Scheduler and all of its
// workers. Every field is atomic, but a Snapshot is several independent
// loads, not a consistent cut: use the values for progress reporting and
// trends, never for correctness.
type SchedulerStats struct {
	jobsTotal     atomic.Int64 // scheduled and not yet finished
	jobsExecuting atomic.Int64 // running right now

	scheduled atomic.Uint64
	executed  atomic.Uint64
	stolen    atomic.Uint64
	wakes     atomic.Uint64
	sleeps    atomic.Uint64
	panics    atomic.Uint64
	dropped   atomic.Uint64
	rejected  atomic.Uint64
}

// JobsTotal returns the number of jobs scheduled but not yet finished.
func (s *SchedulerStats) JobsTotal() int64 { return s.jobsTotal.Load() }

// JobsExecuting returns the number of jobs currently running.
func (s *SchedulerStats) JobsExecuting() int64 { return s.jobsExecuting.Load() }

func (s *SchedulerStats) onScheduled() {
	s.jobsTotal.Add(1)
	s.scheduled.Add(1)
}

func (s *SchedulerStats) onDequeued(stolen bool) {
	s.jobsExecuting.Add(1)
	if stolen {
		s.stolen.Add(1)
	}
}

func (s *SchedulerStats) onFinished() {
	s.jobsExecuting.Add(-1)
	s.jobsTotal.Add(-1)
	s.executed.Add(1)
}

func (s *SchedulerStats) onDropped(n int) {
	if n <= 0 {
		return
	}
	s.dropped.Add(uint64(n))
	s.jobsTotal.Add(-int64(n))
}

// Snapshot returns a point-in-time copy of the counters.
func (s *SchedulerStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		JobsTotal:     s.jobsTotal.Load(),
		JobsExecuting: s.jobsExecuting.Load(),
		Scheduled:     s.scheduled.Load(),
		Executed:      s.executed.Load(),
		Stolen:        s.stolen.Load(),
		Wakes:         s.wakes.Load(),
		Sleeps:        s.sleeps.Load(),
		Panics:        s.panics.Load(),
		Dropped:       s.dropped.Load(),
		Rejected:      s.rejected.Load(),
	}
}

// StatsSnapshot is a plain copy of SchedulerStats.
type StatsSnapshot struct {
	JobsTotal     int64
	JobsExecuting int64

	Scheduled uint64 // accepted by Schedule
	Executed  uint64 // actions that returned (or panicked)
	Stolen    uint64 // jobs taken from another worker's queue
	Wakes     uint64 // buddy wakes issued by workers
	Sleeps    uint64 // times a worker went idle
	Panics    uint64 // recovered action panics
	Dropped   uint64 // queued jobs discarded by Stop
	Rejected  uint64 // Schedule calls refused
}

// Pending returns the number of jobs waiting in queues.
func (s StatsSnapshot) Pending() int64 {
	if p := s.JobsTotal - s.JobsExecuting; p > 0 {
		return p
	}
	return 0
}
