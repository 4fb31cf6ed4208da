package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-job-pool/core"
)

// Workload is a synthetic texture batch: every texture job encodes its base
// level and fans out one sub-job per remaining mip level.
type Workload struct {
	Textures int
	Mips     int

	// Work is the busy time spent per job.
	Work time.Duration
}

// Report summarizes one workload run.
type Report struct {
	Jobs     int
	Elapsed  time.Duration
	Checksum uint64
	Stats    core.StatsSnapshot
}

func (r Report) String() string {
	st := r.Stats
	return fmt.Sprintf(
		"jobs=%d elapsed=%s executed=%d stolen=%d wakes=%d sleeps=%d panics=%d dropped=%d checksum=%x",
		r.Jobs, r.Elapsed.Round(time.Microsecond), st.Executed, st.Stolen, st.Wakes, st.Sleeps,
		st.Panics, st.Dropped, r.Checksum)
}

// RunWorkload schedules w on s and waits for every job, or for ctx.
func RunWorkload(ctx context.Context, s *core.Scheduler, w Workload) (Report, error) {
	if w.Textures < 0 || w.Mips < 0 {
		return Report{}, fmt.Errorf("invalid workload %+v", w)
	}

	total := w.Textures * (w.Mips + 1)
	var (
		wg       sync.WaitGroup
		checksum atomic.Uint64
		errMu    sync.Mutex
		errs     []error
	)
	fail := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}
	encode := func(seed uint64) {
		checksum.Add(busy(seed, w.Work))
		wg.Done()
	}

	wg.Add(total)
	start := time.Now()
	for i := range w.Textures {
		texture := func(jobCtx context.Context) {
			for mip := 1; mip <= w.Mips; mip++ {
				seed := uint64(i)<<16 | uint64(mip)
				err := s.Schedule(jobCtx, core.NewNamedJob(fmt.Sprintf("texture-%d/mip-%d", i, mip), core.PriorityBestEffort,
					func(context.Context) { encode(seed) }))
				if err != nil {
					fail(fmt.Errorf("texture %d mip %d: %w", i, mip, err))
					wg.Done()
				}
			}
			encode(uint64(i) << 16)
		}

		err := s.Schedule(ctx, core.NewNamedJob(fmt.Sprintf("texture-%d", i), core.PriorityUserVisible, texture))
		if err != nil {
			fail(fmt.Errorf("texture %d: %w", i, err))
			wg.Add(-(w.Mips + 1))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return Report{Jobs: total, Elapsed: time.Since(start), Stats: s.Stats()}, ctx.Err()
	}

	report := Report{
		Jobs:     total,
		Elapsed:  time.Since(start),
		Checksum: checksum.Load(),
		Stats:    s.Stats(),
	}
	return report, errors.Join(errs...)
}

// busy spins for d, mixing seed like a block encoder would, and always does
// at least one round.
func busy(seed uint64, d time.Duration) uint64 {
	h := seed ^ 0x9e3779b97f4a7c15
	deadline := time.Now().Add(d)
	for {
		for range 256 {
			h ^= h >> 33
			h *= 0xff51afd7ed558ccd
			h ^= h >> 29
		}
		if !time.Now().Before(deadline) {
			return h
		}
	}
}
