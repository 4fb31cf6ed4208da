package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/Swind/go-job-pool/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("jobpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordJobDuration("encode", core.PriorityUserVisible, 250*time.Millisecond)
	exporter.RecordJobPanic("encode", "panic")
	exporter.RecordJobStolen("encode")
	exporter.RecordJobStolen("encode")
	exporter.RecordJobRejected("encode", "scheduler stopped")

	if got := testutil.ToFloat64(exporter.jobPanicTotal.WithLabelValues("encode")); got != 1 {
		t.Fatalf("panic total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.jobStolenTotal.WithLabelValues("encode")); got != 2 {
		t.Fatalf("stolen total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.jobRejectedTotal.WithLabelValues("encode", "scheduler stopped")); got != 1 {
		t.Fatalf("rejected total = %v, want 1", got)
	}

	histCount, err := histogramSampleCount(exporter.jobDurationSeconds.WithLabelValues("encode", "user_visible"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("jobpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("jobpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordJobPanic("encode", nil)
	second.RecordJobPanic("encode", nil)

	got := testutil.ToFloat64(first.jobPanicTotal.WithLabelValues("encode"))
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NilReceiver(t *testing.T) {
	var m *MetricsExporter
	m.RecordJobDuration("s", core.PriorityBestEffort, time.Millisecond)
	m.RecordJobPanic("s", nil)
	m.RecordJobStolen("s")
	m.RecordJobRejected("s", "r")
}

func TestPriorityLabel(t *testing.T) {
	cases := map[core.Priority]string{
		core.PriorityBestEffort:   "best_effort",
		core.PriorityUserVisible:  "user_visible",
		core.PriorityUserBlocking: "user_blocking",
		core.Priority(7):          "7",
		core.Priority(-2):         "-2",
	}
	for p, want := range cases {
		if got := priorityLabel(p); got != want {
			t.Errorf("priorityLabel(%d) = %q, want %q", int(p), got, want)
		}
	}
}

// TestMetricsExporter_WiredIntoScheduler verifies the exporter as a scheduler's Metrics
// Given: A scheduler configured with a MetricsExporter
// When: Jobs run, one of them panics, and a job is scheduled after Stop
// Then: Durations, panics and rejections show up in the registry
func TestMetricsExporter_WiredIntoScheduler(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	s := core.NewSchedulerWithConfig(2, &core.SchedulerConfig{
		Name:    "encode",
		Logger:  core.NewNoOpLogger(),
		Metrics: exporter,
	})
	ctx := context.Background()

	for range 4 {
		_ = s.ScheduleFunc(ctx, core.PriorityUserBlocking, func(context.Context) {})
	}
	_ = s.ScheduleFunc(ctx, core.PriorityUserBlocking, func(context.Context) { panic("boom") })

	assertEventually(t, 2*time.Second, func() bool {
		return s.Stats().Executed == 5
	})
	s.Stop()
	_ = s.ScheduleFunc(ctx, core.PriorityUserBlocking, func(context.Context) {})

	histCount, err := histogramSampleCount(exporter.jobDurationSeconds.WithLabelValues("encode", "user_blocking"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 5 {
		t.Errorf("duration samples = %d, want 5", histCount)
	}
	if got := testutil.ToFloat64(exporter.jobPanicTotal.WithLabelValues("encode")); got != 1 {
		t.Errorf("panic total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.jobRejectedTotal.WithLabelValues("encode", "scheduler stopped")); got != 1 {
		t.Errorf("rejected total = %v, want 1", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
