package core

import (
	"context"
	"fmt"
)

// Work is a job action that produces a value.
type Work[T any] func(ctx context.Context) (T, error)

// Result is the outcome of a Work.
type Result[T any] struct {
	Data T
	Err  error
}

// Future delivers the single Result of a submitted Work.
//
// A job discarded by Stop never delivers; use Wait with a context that can
// expire when that matters.
type Future[T any] struct {
	c chan Result[T]
}

// C returns the channel the result is sent on. It receives at most once.
func (f *Future[T]) C() <-chan Result[T] {
	return f.c
}

// Wait blocks until the result arrives or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case r := <-f.c:
		return r.Data, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on s and returns a Future for its result.
// A panic in fn is delivered as an error; it does not reach the PanicHandler.
//
// ctx routes the job the same way Schedule does. A job should not block on
// the Future of a sub-job it submitted itself: the sub-job waits in the
// blocked worker's queue, and nothing wakes another worker to steal it.
// Return instead, or wait from outside the pool.
func Submit[T any](ctx context.Context, s *Scheduler, priority Priority, fn Work[T]) (*Future[T], error) {
	if fn == nil {
		return nil, ErrNilJob
	}

	f := &Future[T]{c: make(chan Result[T], 1)}
	err := s.Schedule(ctx, NewJob(priority, func(jobCtx context.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				f.c <- Result[T]{Err: fmt.Errorf("job panicked: %v", rec)}
			}
		}()

		v, err := fn(jobCtx)
		f.c <- Result[T]{Data: v, Err: err}
	}))
	if err != nil {
		return nil, err
	}
	return f, nil
}
