package jobpool_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	jobpool "github.com/Swind/go-job-pool"
)

// ExampleInitGlobalScheduler demonstrates the basic usage with only one import.
func ExampleInitGlobalScheduler() {
	jobpool.InitGlobalSchedulerWithConfig(2, quietConfig())
	defer jobpool.ShutdownGlobalScheduler()

	s := jobpool.GetGlobalScheduler()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var encoded []string

	wg.Add(3)
	for _, name := range []string{"albedo", "normal", "roughness"} {
		_ = s.ScheduleFunc(context.Background(), jobpool.PriorityUserVisible, func(ctx context.Context) {
			defer wg.Done()
			mu.Lock()
			encoded = append(encoded, name)
			mu.Unlock()
		})
	}
	wg.Wait()

	// Execution order across workers is not defined
	sort.Strings(encoded)
	fmt.Println(encoded)

	// Output:
	// [albedo normal roughness]
}

// ExampleScheduler_ScheduleFunc_subJobs shows sub-jobs staying on the parent's worker.
func ExampleScheduler_ScheduleFunc_subJobs() {
	s := jobpool.NewSchedulerWithConfig(1, quietConfig())
	defer s.Stop()

	var wg sync.WaitGroup
	wg.Add(4)
	results := make([]int, 4)

	_ = s.ScheduleFunc(context.Background(), jobpool.PriorityUserBlocking, func(ctx context.Context) {
		defer wg.Done()
		parent := jobpool.GetCurrentWorker(ctx)
		for mip := 1; mip <= 3; mip++ {
			_ = s.ScheduleFunc(ctx, jobpool.PriorityBestEffort, func(ctx context.Context) {
				defer wg.Done()
				if jobpool.GetCurrentWorker(ctx) == parent {
					results[mip] = mip
				}
			})
		}
	})
	wg.Wait()

	fmt.Println(results[1:])

	// Output:
	// [1 2 3]
}

// ExampleSubmit demonstrates collecting a typed result.
func ExampleSubmit() {
	s := jobpool.NewSchedulerWithConfig(2, quietConfig())
	defer s.Stop()

	f, err := jobpool.Submit(context.Background(), s, jobpool.PriorityUserVisible, func(ctx context.Context) (int, error) {
		return 4 * 4 * 8, nil // one 4x4 block, 8 bytes
	})
	if err != nil {
		fmt.Println("submit:", err)
		return
	}

	size, err := f.Wait(context.Background())
	fmt.Println(size, err)

	// Output:
	// 128 <nil>
}
