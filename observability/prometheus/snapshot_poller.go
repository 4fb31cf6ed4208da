package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-job-pool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SchedulerSnapshotProvider provides current scheduler and worker snapshots.
// *core.Scheduler implements it.
type SchedulerSnapshotProvider interface {
	Snapshot() core.PoolStats
	WorkerStats() []core.WorkerStats
}

var _ SchedulerSnapshotProvider = (*core.Scheduler)(nil)

// SnapshotPoller periodically exports scheduler snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	schedulersMu sync.RWMutex
	schedulers   map[string]SchedulerSnapshotProvider

	queued        *prom.GaugeVec
	active        *prom.GaugeVec
	workers       *prom.GaugeVec
	running       *prom.GaugeVec
	jobsTotal     *prom.GaugeVec
	jobsExecuting *prom.GaugeVec
	counters      *prom.GaugeVec

	workerQueued    *prom.GaugeVec
	workerExecuting *prom.GaugeVec

	stateMu sync.Mutex
	polling bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string, labels ...string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "jobpool",
			Name:      name,
			Help:      help,
		}, labels)
	}

	p := &SnapshotPoller{
		interval:   interval,
		schedulers: make(map[string]SchedulerSnapshotProvider),

		queued:        gauge("scheduler_queued", "Jobs waiting in worker queues.", "scheduler"),
		active:        gauge("scheduler_active", "Workers currently executing a job.", "scheduler"),
		workers:       gauge("scheduler_workers", "Worker count per scheduler.", "scheduler"),
		running:       gauge("scheduler_running", "Scheduler running state (1=running, 0=stopped).", "scheduler"),
		jobsTotal:     gauge("scheduler_jobs_total", "Jobs scheduled and not yet finished.", "scheduler"),
		jobsExecuting: gauge("scheduler_jobs_executing", "Jobs running right now.", "scheduler"),
		counters:      gauge("scheduler_events", "Scheduler event counter snapshots.", "scheduler", "event"),

		workerQueued:    gauge("worker_queued", "Jobs waiting in one worker's queue.", "scheduler", "worker"),
		workerExecuting: gauge("worker_executing", "Worker executing state (1=executing, 0=not).", "scheduler", "worker"),
	}

	var err error
	for _, vec := range []**prom.GaugeVec{
		&p.queued, &p.active, &p.workers, &p.running, &p.jobsTotal, &p.jobsExecuting,
		&p.counters, &p.workerQueued, &p.workerExecuting,
	} {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddScheduler adds or replaces a scheduler snapshot provider by name.
func (p *SnapshotPoller) AddScheduler(name string, provider SchedulerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.schedulersMu.Lock()
	p.schedulers[name] = provider
	p.schedulersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.polling {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.polling = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.polling {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.polling = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			// Final values, e.g. dropped counts set by Stop
			p.collectOnce()
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.schedulersMu.RLock()
	defer p.schedulersMu.RUnlock()

	for name, provider := range p.schedulers {
		snap := provider.Snapshot()
		p.queued.WithLabelValues(name).Set(float64(snap.Queued))
		p.active.WithLabelValues(name).Set(float64(snap.Active))
		p.workers.WithLabelValues(name).Set(float64(snap.Workers))
		p.running.WithLabelValues(name).Set(boolGauge(snap.Running))
		p.jobsTotal.WithLabelValues(name).Set(float64(snap.Stats.JobsTotal))
		p.jobsExecuting.WithLabelValues(name).Set(float64(snap.Stats.JobsExecuting))

		for event, v := range map[string]uint64{
			"scheduled": snap.Stats.Scheduled,
			"executed":  snap.Stats.Executed,
			"stolen":    snap.Stats.Stolen,
			"wakes":     snap.Stats.Wakes,
			"sleeps":    snap.Stats.Sleeps,
			"panics":    snap.Stats.Panics,
			"dropped":   snap.Stats.Dropped,
			"rejected":  snap.Stats.Rejected,
		} {
			p.counters.WithLabelValues(name, event).Set(float64(v))
		}

		for _, w := range provider.WorkerStats() {
			worker := normalizeLabel(w.Name, "unknown")
			p.workerQueued.WithLabelValues(name, worker).Set(float64(w.Queued))
			p.workerExecuting.WithLabelValues(name, worker).Set(boolGauge(w.Executing))
		}
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
