package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// Test PanicHandler
// =============================================================================

func TestDefaultPanicHandler(t *testing.T) {
	// Given: A DefaultPanicHandler writing to an observed zap core
	observed, logs := observer.New(zapcore.DebugLevel)
	handler := &DefaultPanicHandler{Logger: NewZapLogger(zap.New(observed))}

	// When: HandlePanic is called
	handler.HandlePanic(context.Background(), "encode", 3, "test panic", []byte("stack trace"))

	// Then: One error entry carries the scheduler, worker and panic value
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.ErrorLevel || e.Message != "job panicked" {
		t.Errorf("entry = %s %q", e.Level, e.Message)
	}
	fields := e.ContextMap()
	if fields["scheduler"] != "encode" || fields["panic"] != "test panic" {
		t.Errorf("fields = %v", fields)
	}
	if fields["worker"] != int64(3) {
		t.Errorf("worker field = %v (%T)", fields["worker"], fields["worker"])
	}
}

func TestDefaultPanicHandler_NilLogger(t *testing.T) {
	// Given: A DefaultPanicHandler without a logger
	handler := &DefaultPanicHandler{}

	// When: HandlePanic is called
	handler.HandlePanic(context.Background(), "encode", 0, "test panic", nil)

	// Then: No panic should occur (falls back to DefaultLogger)
}

// =============================================================================
// Test Metrics
// =============================================================================

func TestNilMetrics(t *testing.T) {
	// Given: A NilMetrics
	var m Metrics = &NilMetrics{}

	// When: All methods are called
	m.RecordJobDuration("s", PriorityUserBlocking, time.Second)
	m.RecordJobPanic("s", "boom")
	m.RecordJobStolen("s")
	m.RecordJobRejected("s", "stopped")

	// Then: No panic should occur (all methods are no-ops)
}

// =============================================================================
// Test RejectedJobHandler
// =============================================================================

func TestDefaultRejectedJobHandler(t *testing.T) {
	// Given: A DefaultRejectedJobHandler with an observed logger
	observed, logs := observer.New(zapcore.DebugLevel)
	handler := &DefaultRejectedJobHandler{Logger: NewZapLogger(zap.New(observed))}

	// When: HandleRejectedJob is called
	handler.HandleRejectedJob("encode", "scheduler stopped")

	// Then: A warning with the reason is logged
	entries := logs.FilterMessage("job rejected").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %s, want warn", entries[0].Level)
	}
	if got := entries[0].ContextMap()["reason"]; got != "scheduler stopped" {
		t.Errorf("reason = %v", got)
	}
}

// =============================================================================
// Test SchedulerConfig
// =============================================================================

func TestDefaultSchedulerConfig(t *testing.T) {
	// Given: Default config
	config := DefaultSchedulerConfig()

	// Then: All handlers should be non-nil and pinning enabled
	if config.Logger == nil || config.PanicHandler == nil || config.Metrics == nil || config.RejectedJobHandler == nil {
		t.Fatalf("default config has nil handlers: %+v", config)
	}
	if !config.PinThreads {
		t.Error("PinThreads = false, want true")
	}
	if config.Name != "scheduler" {
		t.Errorf("Name = %q", config.Name)
	}
	if config.HistoryCapacity != 0 {
		t.Errorf("HistoryCapacity = %d, want 0", config.HistoryCapacity)
	}
}

func TestNewSchedulerWithConfig_Nil(t *testing.T) {
	// Given: A nil config
	s := NewSchedulerWithConfig(1, nil)
	defer s.Stop()

	// Then: Defaults are applied
	if s.logger == nil || s.panicHandler == nil || s.metrics == nil || s.rejectedJobHandler == nil {
		t.Fatal("nil handler after construction with nil config")
	}
	if !s.pinThreads {
		t.Error("pinThreads = false, want default true")
	}
}

func TestNewSchedulerWithConfig_CustomHandlers(t *testing.T) {
	// Given: Custom handlers
	logger := NewNoOpLogger()
	metrics := &NilMetrics{}
	rejected := &DefaultRejectedJobHandler{Logger: logger}

	// When: A scheduler is created with them
	s := NewSchedulerWithConfig(1, &SchedulerConfig{
		Name:               "custom",
		Logger:             logger,
		Metrics:            metrics,
		RejectedJobHandler: rejected,
	})
	defer s.Stop()

	// Then: They are used as given and the missing one is defaulted
	if s.metrics != metrics || s.rejectedJobHandler != rejected || s.logger != logger {
		t.Error("custom handlers were replaced")
	}
	ph, ok := s.panicHandler.(*DefaultPanicHandler)
	if !ok || ph.Logger != logger {
		t.Errorf("default panic handler = %#v, want DefaultPanicHandler using the config logger", s.panicHandler)
	}
}
