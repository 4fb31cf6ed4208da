// Package jobpool provides a work-stealing job scheduler built on dedicated
// OS threads.
//
// Each worker owns one locked OS thread, a private priority queue and a futex
// it sleeps on. Idle workers steal from busy ones, and a worker that picks up
// a job wakes at most one idle peer (the buddy wake) instead of broadcasting.
//
// # Quick Start
//
// Initialize the global scheduler at application startup:
//
//	jobpool.InitGlobalScheduler(runtime.NumCPU())
//	defer jobpool.ShutdownGlobalScheduler()
//
// Schedule jobs from anywhere outside the pool:
//
//	s := jobpool.GetGlobalScheduler()
//	s.ScheduleFunc(context.Background(), jobpool.PriorityUserVisible, func(ctx context.Context) {
//		// encode a texture
//	})
//
// # Sub-jobs and locality
//
// A job receives a context carrying its Worker. Passing that context back to
// Schedule queues the sub-job on the same worker instead of worker 0:
//
//	s.ScheduleFunc(ctx, jobpool.PriorityUserVisible, func(ctx context.Context) {
//		for mip := 1; mip < levels; mip++ {
//			s.ScheduleFunc(ctx, jobpool.PriorityBestEffort, encodeMip(mip))
//		}
//	})
//
// A context from one scheduler's job cannot be used with another scheduler;
// Schedule returns ErrForeignWorker.
//
// # Ordering
//
// Priority is honoured within one worker's queue only. Jobs of equal
// priority have no defined relative order, and stealing moves jobs across
// workers without regard to priority elsewhere in the pool.
//
// # Results and shutdown
//
// Jobs return nothing. Use Submit for a typed Future. Stop lets running jobs
// finish and discards queued ones; callers that need every job to complete
// must wait for them (for example with a sync.WaitGroup) before stopping.
package jobpool
