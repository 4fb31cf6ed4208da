// Package config loads kramjobs settings from YAML with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Swind/go-job-pool/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KRAMJOBS"

// Config is the file and environment configuration of a kramjobs process.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SchedulerConfig mirrors the plain fields of core.SchedulerConfig.
type SchedulerConfig struct {
	Name string `yaml:"name"`

	// Workers is the pool size; 0 means one per logical CPU.
	Workers         int  `yaml:"workers"`
	PinThreads      bool `yaml:"pin_threads"`
	HistoryCapacity int  `yaml:"history_capacity"`

	// ThreadPriority is "normal", "low", "high" or "interactive".
	ThreadPriority string `yaml:"thread_priority"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type MetricsConfig struct {
	// Addr serves /metrics when non-empty, e.g. ":9090".
	Addr         string        `yaml:"addr"`
	Namespace    string        `yaml:"namespace"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Name:           "kramjobs",
			PinThreads:     true,
			ThreadPriority: "normal",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Namespace:    "jobpool",
			PollInterval: time.Second,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty file keeps the defaults
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal YAML %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from KRAMJOBS_WORKERS, KRAMJOBS_PIN_THREADS,
// KRAMJOBS_THREAD_PRIORITY, KRAMJOBS_LOG_LEVEL and KRAMJOBS_METRICS_ADDR.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s_WORKERS: %w", EnvPrefix, err)
		}
		c.Scheduler.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "_PIN_THREADS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s_PIN_THREADS: %w", EnvPrefix, err)
		}
		c.Scheduler.PinThreads = b
	}
	if v, ok := lookup(EnvPrefix + "_THREAD_PRIORITY"); ok && v != "" {
		c.Scheduler.ThreadPriority = v
	}
	if v, ok := lookup(EnvPrefix + "_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "_METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.Scheduler.Workers < 0 {
		errs = append(errs, fmt.Errorf("scheduler.workers must be >= 0, got %d", c.Scheduler.Workers))
	}
	if c.Scheduler.HistoryCapacity < 0 {
		errs = append(errs, fmt.Errorf("scheduler.history_capacity must be >= 0, got %d", c.Scheduler.HistoryCapacity))
	}
	if _, err := core.ParseThreadPriority(c.Scheduler.ThreadPriority); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.thread_priority: %w", err))
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Metrics.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("metrics.poll_interval must be >= 0, got %s", c.Metrics.PollInterval))
	}
	return errors.Join(errs...)
}

// WorkerCount resolves Workers, mapping 0 to runtime.NumCPU().
func (c *Config) WorkerCount() int {
	if c.Scheduler.Workers > 0 {
		return c.Scheduler.Workers
	}
	return runtime.NumCPU()
}

// SchedulerConfig builds a core config. Nil logger or metrics fall back to
// the core defaults. An unparsable thread priority is treated as normal;
// Validate reports it.
func (c *Config) SchedulerConfig(logger core.Logger, metrics core.Metrics) *core.SchedulerConfig {
	priority, _ := core.ParseThreadPriority(c.Scheduler.ThreadPriority)
	return &core.SchedulerConfig{
		Name:            c.Scheduler.Name,
		PinThreads:      c.Scheduler.PinThreads,
		ThreadPriority:  priority,
		HistoryCapacity: c.Scheduler.HistoryCapacity,
		Logger:          logger,
		Metrics:         metrics,
	}
}
