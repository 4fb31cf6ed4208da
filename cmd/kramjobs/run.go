package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Swind/go-job-pool/config"
	"github.com/Swind/go-job-pool/core"
	obs "github.com/Swind/go-job-pool/observability/prometheus"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Encode a synthetic texture batch and print scheduler stats",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Worker threads (0 = one per CPU); overrides the config",
			},
			&cli.IntFlag{
				Name:  "jobs",
				Value: 64,
				Usage: "Textures to encode (top-level jobs)",
			},
			&cli.IntFlag{
				Name:  "subjobs",
				Value: 8,
				Usage: "Mip levels per texture, each scheduled from inside its texture job",
			},
			&cli.DurationFlag{
				Name:  "work",
				Value: 200 * time.Microsecond,
				Usage: "Busy time per job",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus /metrics on this address while running; overrides the config",
			},
			&cli.BoolFlag{
				Name:  "pin",
				Usage: "Pin worker threads to CPUs; overrides the config",
			},
			&cli.StringFlag{
				Name:  "priority",
				Usage: "Worker thread priority: normal, low, high or interactive; overrides the config",
			},
		},

		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	// 1. Config, then flags on top
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load config: %v", err), 1)
	}
	if c.IsSet("workers") {
		cfg.Scheduler.Workers = c.Int("workers")
	}
	if c.IsSet("metrics-addr") {
		cfg.Metrics.Addr = c.String("metrics-addr")
	}
	if c.IsSet("pin") {
		cfg.Scheduler.PinThreads = c.Bool("pin")
	}
	if c.IsSet("priority") {
		cfg.Scheduler.ThreadPriority = c.String("priority")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Invalid config: %v", err), 1)
	}

	workload := Workload{
		Textures: c.Int("jobs"),
		Mips:     c.Int("subjobs"),
		Work:     c.Duration("work"),
	}
	if workload.Textures < 0 || workload.Mips < 0 || workload.Work < 0 {
		return cli.Exit("jobs, subjobs and work must not be negative", 1)
	}

	// 2. Logging and metrics
	zl, err := newZapLogger(cfg.Log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to build logger: %v", err), 1)
	}
	defer func() { _ = zl.Sync() }()
	logger := core.NewZapLogger(zl)

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to register metrics: %v", err), 1)
	}
	poller, err := obs.NewSnapshotPoller(reg, cfg.Metrics.PollInterval)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to register metrics: %v", err), 1)
	}

	ctx, stopSignals := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if cfg.Metrics.Addr != "" {
		shutdown, err := serveMetrics(cfg.Metrics.Addr, reg, logger)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to serve metrics: %v", err), 1)
		}
		defer shutdown()
	}

	// 3. Scheduler
	s := core.NewSchedulerWithConfig(cfg.WorkerCount(), cfg.SchedulerConfig(logger, exporter))
	poller.AddScheduler(s.Name(), s)
	poller.Start(ctx)

	report, runErr := RunWorkload(ctx, s, workload)
	s.Stop()
	poller.Stop()
	report.Stats = s.Stats()

	// 4. Output
	fmt.Fprintf(c.App.Writer, "workers=%d %s\n", s.NumWorkers(), report)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return cli.Exit("Interrupted", 130)
		}
		return cli.Exit(fmt.Sprintf("Failed: %v", runErr), 1)
	}
	return nil
}

func newZapLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := core.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel(level))
	return zc.Build()
}

func zapLevel(l core.LogLevel) zapcore.Level {
	switch l {
	case core.LogLevelDebug:
		return zapcore.DebugLevel
	case core.LogLevelWarn:
		return zapcore.WarnLevel
	case core.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// serveMetrics listens on addr right away so bind errors surface before the
// run starts, and returns a shutdown func.
func serveMetrics(addr string, reg *prom.Registry, logger core.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", core.F("error", err))
		}
	}()
	logger.Info("serving metrics", core.F("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
