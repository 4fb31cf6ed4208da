package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/Swind/go-job-pool/futex"
)

// WorkerState is the run-loop state of a Worker. It is diagnostic only.
type WorkerState int32

const (
	// WorkerIdle: sleeping on the futex, or not started/exited
	WorkerIdle WorkerState = iota
	WorkerCheckingLocalQueue
	WorkerStealing
	WorkerExecuting
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerCheckingLocalQueue:
		return "checking"
	case WorkerStealing:
		return "stealing"
	case WorkerExecuting:
		return "executing"
	default:
		return fmt.Sprintf("WorkerState(%d)", int32(s))
	}
}

// Worker owns one OS thread, a private JobQueue and a futex it sleeps on.
//
// Jobs are taken from the local queue first, then stolen from the other
// workers in index order. A worker that finds work wakes at most one idle
// peer (the buddy wake), so wake fan-out stays bounded at high core counts.
type Worker struct {
	id        int
	name      string
	scheduler *Scheduler
	queue     *JobQueue
	futex     futex.Futex

	// executing is a heuristic for wakeWorkers; races are tolerated.
	executing atomic.Bool
	state     atomic.Int32
	threadID  atomic.Int64
	cpu       atomic.Int32

	// ctx is handed to every action run by this worker.
	ctx  context.Context
	done chan struct{}
}

func newWorker(id int, s *Scheduler) *Worker {
	w := &Worker{
		id:        id,
		name:      fmt.Sprintf("Task%d", id),
		scheduler: s,
		queue:     NewJobQueue(),
		done:      make(chan struct{}),
	}
	w.cpu.Store(-1)
	w.ctx = withWorker(context.Background(), w)
	return w
}

// ID returns the worker index in [0, NumWorkers).
func (w *Worker) ID() int { return w.id }

// Name returns the thread name, "Task<id>".
func (w *Worker) Name() string { return w.name }

// Scheduler returns the owning scheduler.
func (w *Worker) Scheduler() *Scheduler { return w.scheduler }

// IsExecuting reports whether the worker is running a job. Best effort.
func (w *Worker) IsExecuting() bool { return w.executing.Load() }

// State returns the current run-loop state.
func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

// QueueLen returns the number of jobs waiting in the local queue.
func (w *Worker) QueueLen() int { return w.queue.Len() }

// ThreadID returns the OS thread id, or 0 when unknown, not started or exited.
func (w *Worker) ThreadID() int { return int(w.threadID.Load()) }

// CPU returns the CPU the thread is pinned to, or -1.
func (w *Worker) CPU() int { return int(w.cpu.Load()) }

// Stats returns a snapshot of the worker's observable state.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:        w.id,
		Name:      w.name,
		Queued:    w.queue.Len(),
		Executing: w.executing.Load(),
		State:     w.State(),
		ThreadID:  w.ThreadID(),
	}
}

// isCurrentThread reports whether the caller runs on w's OS thread. Always
// false where thread ids are unknown.
func (w *Worker) isCurrentThread() bool {
	tid := currentThreadID()
	return tid != 0 && tid == w.ThreadID()
}

func (w *Worker) setState(s WorkerState) {
	w.state.Store(int32(s))
}

// wake bumps the futex sequence before notifying, so a wake that arrives
// between the worker's last queue check and its Wait call is not lost.
func (w *Worker) wake() {
	w.futex.Add(1)
	w.futex.NotifyOne()
}

func (w *Worker) start() {
	go w.threadMain()
}

// threadMain runs on a dedicated OS thread. The goroutine never unlocks it,
// so the thread (with its affinity mask and priority) is discarded when the
// loop exits.
func (w *Worker) threadMain() {
	defer close(w.done)
	runtime.LockOSThread()

	w.threadID.Store(int64(currentThreadID()))
	// The kernel may hand the id to a new thread once this one exits
	defer w.threadID.Store(0)
	s := w.scheduler
	if s.pinThreads {
		cpu, err := pinCurrentThread(w.id)
		switch {
		case err == nil:
			w.cpu.Store(int32(cpu))
		case errors.Is(err, errAffinityUnsupported):
			s.logger.Debug("thread affinity unsupported", F("worker", w.name))
		default:
			s.logger.Warn("failed to set thread affinity",
				F("worker", w.name), F("cpu", cpu), F("error", err))
		}
	}
	if s.threadPriority != ThreadPriorityNormal {
		switch err := setCurrentThreadPriority(s.threadPriority); {
		case err == nil:
		case errors.Is(err, errThreadPriorityUnsupported):
			s.logger.Debug("thread priority unsupported", F("worker", w.name))
		default:
			s.logger.Warn("failed to set thread priority",
				F("worker", w.name), F("priority", s.threadPriority.String()), F("error", err))
		}
	}
	s.logger.Debug("worker started",
		F("scheduler", s.name), F("worker", w.name), F("tid", w.ThreadID()), F("cpu", w.CPU()))

	w.run()

	s.logger.Debug("worker exited", F("scheduler", s.name), F("worker", w.name))
}

func (w *Worker) run() {
	s := w.scheduler
	defer w.setState(WorkerIdle)

	for !s.isStop() {
		seq := w.futex.Load()

		// Take a job from the local queue
		w.setState(WorkerCheckingLocalQueue)
		job, found := w.queue.Pop()
		stolen := false
		if found {
			w.executing.Store(true)
			s.stats.onDequeued(false)
		} else {
			// Local queue empty, help someone else
			w.setState(WorkerStealing)
			job, found = w.stealFromOtherQueues()
			stolen = found
		}

		if found {
			w.execute(job, stolen)
			continue
		}

		if w.shouldSleep() {
			w.setState(WorkerIdle)
			s.stats.sleeps.Add(1)
			w.futex.Wait(seq)
		}
	}
}

// stealFromOtherQueues takes the top job of the first non-empty peer queue,
// scanning peers in index order.
func (w *Worker) stealFromOtherQueues() (Job, bool) {
	s := w.scheduler
	for _, victim := range s.workers {
		if victim == w {
			continue
		}
		if job, ok := victim.queue.Pop(); ok {
			w.executing.Store(true)
			s.stats.onDequeued(true)
			s.metrics.RecordJobStolen(s.name)
			return job, true
		}
	}
	return Job{}, false
}

// shouldSleep is the hook for adaptive spinning. Always sleeping is the
// current policy; the run loop tolerates any answer.
func (w *Worker) shouldSleep() bool {
	return true
}

func (w *Worker) execute(job Job, stolen bool) {
	s := w.scheduler
	w.setState(WorkerExecuting)

	// There may be more work queued; hand off waking to a peer
	w.wakeWorkers()

	startedAt := time.Now()
	panicked := w.runAction(job)
	finishedAt := time.Now()

	s.metrics.RecordJobDuration(s.name, job.Priority, finishedAt.Sub(startedAt))
	if s.history != nil {
		s.history.Add(JobExecutionRecord{
			Name:       resolveJobName(job),
			WorkerID:   w.id,
			Priority:   job.Priority,
			Stolen:     stolen,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Duration:   finishedAt.Sub(startedAt),
			Panicked:   panicked,
		})
	}

	w.executing.Store(false)
	s.stats.onFinished()
}

func (w *Worker) runAction(job Job) (panicked bool) {
	s := w.scheduler
	defer func() {
		if rec := recover(); rec != nil {
			panicked = true
			s.stats.panics.Add(1)
			s.panicHandler.HandlePanic(w.ctx, s.name, w.id, rec, debug.Stack())
			s.metrics.RecordJobPanic(s.name, rec)
		}
	}()
	job.Action(w.ctx)
	return false
}

// wakeWorkers wakes the buddy (next index) if it is idle, otherwise the
// first idle worker after it.
func (w *Worker) wakeWorkers() {
	workers := w.scheduler.workers
	target := nextWakeTarget(w.id, len(workers), func(i int) bool {
		return workers[i].executing.Load()
	})
	if target < 0 {
		return
	}
	workers[target].wake()
	w.scheduler.stats.wakes.Add(1)
}

// nextWakeTarget returns the worker self should wake, or -1.
//
// The buddy is (self+1)%n. If it is busy, offsets 2..n-1 are scanned, which
// together with the buddy visits every worker except self exactly once.
func nextWakeTarget(self, n int, busy func(i int) bool) int {
	if n < 2 {
		return -1
	}
	buddy := (self + 1) % n
	if !busy(buddy) {
		return buddy
	}
	for k := 2; k < n; k++ {
		i := (self + k) % n
		if !busy(i) {
			return i
		}
	}
	return -1
}
