package core

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"
)

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func newTestScheduler(t *testing.T, n int) *Scheduler {
	t.Helper()
	s := NewSchedulerWithConfig(n, &SchedulerConfig{
		Name:   t.Name(),
		Logger: NewNoOpLogger(),
	})
	t.Cleanup(s.Stop)
	return s
}

// occupy runs a job that parks one worker until the returned release func is
// called, and returns that worker.
func occupy(t *testing.T, s *Scheduler) (*Worker, func()) {
	t.Helper()
	started := make(chan *Worker, 1)
	release := make(chan struct{})
	err := s.ScheduleFunc(context.Background(), PriorityUserVisible, func(ctx context.Context) {
		started <- GetCurrentWorker(ctx)
		<-release
	})
	if err != nil {
		t.Fatalf("Schedule blocker: %v", err)
	}

	select {
	case w := <-started:
		var once sync.Once
		return w, func() { once.Do(func() { close(release) }) }
	case <-time.After(2 * time.Second):
		t.Fatal("blocker job never started")
		return nil, nil
	}
}

// pushTo queues job directly on w, bypassing Schedule's routing.
func pushTo(w *Worker, job Job) {
	w.queue.Push(job)
	w.scheduler.stats.onScheduled()
	w.wake()
}

// TestNextWakeTarget_BuddyFirst verifies the buddy is preferred when idle
// Given: Workers where everybody is idle
// When: nextWakeTarget is asked for each self index
// Then: The result is always (self+1)%n
func TestNextWakeTarget_BuddyFirst(t *testing.T) {
	idle := func(int) bool { return false }
	for n := 2; n <= 8; n++ {
		for self := range n {
			if got, want := nextWakeTarget(self, n, idle), (self+1)%n; got != want {
				t.Errorf("n=%d self=%d: got %d, want %d", n, self, got, want)
			}
		}
	}
}

// TestNextWakeTarget_ScanIsComplete verifies every other worker is reachable
// Given: All workers busy except exactly one candidate
// When: nextWakeTarget runs from every self index
// Then: The single idle worker is found, whatever its distance from self
func TestNextWakeTarget_ScanIsComplete(t *testing.T) {
	for n := 2; n <= 9; n++ {
		for self := range n {
			for idle := range n {
				if idle == self {
					continue
				}
				busy := func(i int) bool { return i != idle }
				if got := nextWakeTarget(self, n, busy); got != idle {
					t.Errorf("n=%d self=%d idle=%d: got %d", n, self, idle, got)
				}
			}
		}
	}
}

// TestNextWakeTarget_NobodyToWake verifies the no-op cases
// Given: A single worker, or a pool where everybody else is busy
// When: nextWakeTarget runs
// Then: It returns -1 and never proposes self
func TestNextWakeTarget_NobodyToWake(t *testing.T) {
	if got := nextWakeTarget(0, 1, func(int) bool { return false }); got != -1 {
		t.Errorf("n=1: got %d, want -1", got)
	}

	for n := 2; n <= 6; n++ {
		for self := range n {
			busy := func(i int) bool { return i != self }
			if got := nextWakeTarget(self, n, busy); got != -1 {
				t.Errorf("n=%d self=%d all busy: got %d, want -1", n, self, got)
			}
		}
	}
}

// TestNextWakeTarget_NearestIdleAfterBuddy verifies scan order
// Given: A busy buddy and two idle workers further away
// When: nextWakeTarget runs
// Then: The nearer one (in wrap-around index order) is chosen
func TestNextWakeTarget_NearestIdleAfterBuddy(t *testing.T) {
	// n=6, self=4: buddy 5 busy, scan 0,1,2,3
	busy := map[int]bool{5: true, 0: true}
	got := nextWakeTarget(4, 6, func(i int) bool { return busy[i] })
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

// TestWorker_SubJobsStayOnParentWorker verifies locality of sub-jobs
// Given: Two workers, one parked by a blocker so it cannot steal
// When: A job on the other worker schedules two sub-jobs through its context
// Then: Both sub-jobs run on the parent's worker
func TestWorker_SubJobsStayOnParentWorker(t *testing.T) {
	// Arrange
	s := newTestScheduler(t, 2)
	blocked, release := occupy(t, s)
	defer release()
	other := s.workers[1-blocked.ID()]

	var mu sync.Mutex
	var ran []int
	var wg sync.WaitGroup
	wg.Add(3)

	record := func(ctx context.Context) {
		mu.Lock()
		ran = append(ran, GetCurrentWorker(ctx).ID())
		mu.Unlock()
		wg.Done()
	}

	// Act
	pushTo(other, NewJob(PriorityUserVisible, func(ctx context.Context) {
		for range 2 {
			if err := s.ScheduleFunc(ctx, PriorityUserVisible, record); err != nil {
				t.Errorf("Schedule sub-job: %v", err)
			}
		}
		record(ctx)
	}))

	waitTimeout(t, &wg, 2*time.Second)

	// Assert
	mu.Lock()
	defer mu.Unlock()
	for i, id := range ran {
		if id != other.ID() {
			t.Errorf("job %d ran on worker %d, want %d", i, id, other.ID())
		}
	}
}

// TestWorker_IdleWorkerSteals verifies stealing from a busy worker
// Given: Worker B busy with a blocker and a job waiting in B's queue
// When: The idle worker A is woken
// Then: A runs the job and the steal is counted
func TestWorker_IdleWorkerSteals(t *testing.T) {
	// Arrange
	s := newTestScheduler(t, 2)
	blocked, release := occupy(t, s)
	defer release()
	idle := s.workers[1-blocked.ID()]

	ranOn := make(chan int, 1)
	blocked.queue.Push(NewJob(PriorityUserVisible, func(ctx context.Context) {
		ranOn <- GetCurrentWorker(ctx).ID()
	}))
	s.stats.onScheduled()

	// Act
	idle.wake()

	// Assert
	select {
	case id := <-ranOn:
		if id != idle.ID() {
			t.Errorf("stolen job ran on worker %d, want %d", id, idle.ID())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job in busy worker's queue was never stolen")
	}

	if got := s.Stats().Stolen; got < 1 {
		t.Errorf("Stolen = %d, want >= 1", got)
	}
}

// TestWorker_StateAndName verifies worker identity and diagnostic state
// Given: A fresh scheduler with three workers
// When: Workers settle with no work
// Then: Names follow Task<N> and every worker ends idle
func TestWorker_StateAndName(t *testing.T) {
	s := newTestScheduler(t, 3)

	for i, w := range s.Workers() {
		if w.ID() != i {
			t.Errorf("worker %d has ID %d", i, w.ID())
		}
		if want := fmt.Sprintf("Task%d", i); w.Name() != want {
			t.Errorf("worker %d name = %q, want %q", i, w.Name(), want)
		}
		if w.Scheduler() != s {
			t.Errorf("worker %d belongs to another scheduler", i)
		}
	}

	waitForCondition(t, 2*time.Second, func() bool {
		for _, w := range s.Workers() {
			if w.State() != WorkerIdle || w.IsExecuting() {
				return false
			}
		}
		return true
	})
}

// TestScheduler_RepeatedStopIgnoresReusedThreadID verifies Stop after Stop
// Given: A stopped scheduler whose dead worker's thread id now matches the caller
// When: Stop is called again
// Then: It returns without treating the caller as a worker thread
func TestScheduler_RepeatedStopIgnoresReusedThreadID(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	s := newTestScheduler(t, 2)
	s.Stop()
	s.workers[0].threadID.Store(int64(currentThreadID()))

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("second Stop panicked: %v", r)
		}
	}()
	s.Stop()
}

// TestWorkerState_String verifies the diagnostic names
func TestWorkerState_String(t *testing.T) {
	cases := map[WorkerState]string{
		WorkerIdle:               "idle",
		WorkerCheckingLocalQueue: "checking",
		WorkerStealing:           "stealing",
		WorkerExecuting:          "executing",
		WorkerState(42):          "WorkerState(42)",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int32(state), got, want)
		}
	}
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("jobs did not finish within %v", timeout)
	}
}
