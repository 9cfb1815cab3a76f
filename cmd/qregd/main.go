package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qreg"
	"github.com/theapemachine/qreg/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

var envFile = flag.String("env", ".env", "Optional .env file loaded before the environment")

func main() {
	flag.Parse()
	os.Exit(start(*envFile))
}

// start loads the config and runs the daemon, returning the process exit code.
func start(envFile string) int {
	cfg, err := qreg.LoadConfig(envFile)
	if err != nil {
		errnie.Warn("qregd - load config: %v", err)
		return 1
	}

	if err := run(cfg); err != nil {
		errnie.Warn("qregd - %v", err)
		return 1
	}
	return 0
}

func run(cfg *qreg.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			errnie.Warn("qregd - otel shutdown: %v", err)
		}
	}()

	space := qreg.NewSpace(
		cfg.SessionTTL, cfg.CleanupInterval, cfg.HistoryLimit,
		qreg.WithMaxSessions(cfg.MaxSessions),
	)
	defer space.Close()

	metrics := qreg.NewMetrics()
	engine := qreg.NewEngine(cfg.Policy(), qreg.NewSampler(qreg.NewSource(cfg.Seed)))

	opts := []qreg.OrchestratorOption{
		qreg.WithCircuitBreaker(qreg.NewCircuitBreaker(
			cfg.BreakerMaxFailures, cfg.BreakerReset, cfg.BreakerHalfOpenMax,
		)),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, qreg.WithRateLimiter(qreg.NewRateLimiter(cfg.RateLimit, cfg.RateInterval)))
	}

	orchestrator := qreg.NewOrchestrator(engine, space, metrics, opts...)
	server, err := qreg.NewServer(cfg.Addr, orchestrator)
	if err != nil {
		return err
	}

	errnie.Info(
		"qregd - mode %s, symmetric set %v, session ttl %v",
		cfg.EngineMode, cfg.SymmetricSet, cfg.SessionTTL,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx)
	})
	g.Go(func() error {
		maintain(gctx, orchestrator, time.Second, time.Minute)
		return nil
	})
	return g.Wait()
}

// maintain renormalizes the regulators and periodically logs the metrics.
func maintain(ctx context.Context, orchestrator *qreg.Orchestrator, tick, report time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			orchestrator.Renormalize()
			if now.Sub(last) >= report {
				errnie.Info("qregd - metrics %v", orchestrator.Metrics().Export())
				last = now
			}
		}
	}
}
