package jobpool

import (
	"sync"

	"github.com/Swind/go-job-pool/core"
)

// =============================================================================
// Global Scheduler Helper (Singleton)
// =============================================================================

var (
	globalScheduler *core.Scheduler
	globalMu        sync.Mutex
)

// InitGlobalScheduler starts the global scheduler with the given number of
// workers and the default config. Later calls are no-ops until shutdown.
func InitGlobalScheduler(workers int) {
	InitGlobalSchedulerWithConfig(workers, core.DefaultSchedulerConfig())
}

// InitGlobalSchedulerWithConfig is InitGlobalScheduler with a custom config.
func InitGlobalSchedulerWithConfig(workers int, config *core.SchedulerConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalScheduler != nil {
		return // Already initialized
	}

	var cfg core.SchedulerConfig
	if config != nil {
		cfg = *config
	} else {
		cfg = *core.DefaultSchedulerConfig()
	}
	if cfg.Name == "" || cfg.Name == "scheduler" {
		cfg.Name = "global"
	}
	globalScheduler = core.NewSchedulerWithConfig(workers, &cfg)
}

// GetGlobalScheduler returns the global scheduler instance.
// It panics if InitGlobalScheduler has not been called.
func GetGlobalScheduler() *core.Scheduler {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalScheduler == nil {
		panic("GlobalScheduler not initialized. Call InitGlobalScheduler() first.")
	}
	return globalScheduler
}

// ShutdownGlobalScheduler stops the global scheduler. Queued jobs are dropped.
// It must not be called from inside a job.
//
// The global is cleared before Stop, so jobs still running may call
// GetGlobalScheduler; it panics as if the scheduler was never initialized.
func ShutdownGlobalScheduler() {
	globalMu.Lock()
	s := globalScheduler
	globalScheduler = nil
	globalMu.Unlock()

	if s != nil {
		s.Stop()
	}
}
