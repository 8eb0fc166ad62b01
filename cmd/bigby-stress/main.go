// Command bigby-stress populates a World, drives an App as fast as possible
// for a fixed duration and prints a report of frame times, World and phase
// statistics and memory usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/plugins/script"
	"github.com/plus3/bigby/ticker"
	"go.uber.org/zap"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	churn := flag.Int("churn", 100, "Short-lived entities spawned every frame.")
	seed := flag.Uint64("seed", 1, "Random seed for entity composition.")
	configPath := flag.String("config", os.Getenv(config.EnvPath), "TOML or YAML config file.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	r := rand.New(rand.NewPCG(*seed, *seed))
	a := app.New(app.WithLogger(logger), app.WithConfig(cfg.App))
	registerComponents(a.World)
	if err := addSystems(a, r, *churn); err != nil {
		logger.Fatal("add systems", zap.Error(err))
	}
	if len(cfg.Script.Paths) > 0 {
		a.Use(script.Plugin(cfg.Script,
			script.Expose[Position]("Position"),
			script.Expose[Velocity]("Velocity"),
			script.Expose[Health]("Health"),
		))
	}

	logger.Info("populating world", zap.Int("entities", *entityCount))
	for range *entityCount {
		a.MustSpawn(randomComponents(r)...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.Start(ctx); err != nil {
		_ = a.Stop()
		logger.Fatal("startup failed", zap.Error(err))
	}

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Churn:          *churn,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", zap.Duration("duration", *duration))
	runCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	t := ticker.New(a, cfg.Ticker)
	start := time.Now()
	last := start

Loop:
	for {
		select {
		case <-runCtx.Done():
			break Loop
		case <-a.Done():
			break Loop
		default:
			now := time.Now()
			dt := now.Sub(last).Seconds()
			last = now

			t.Tick(dt)
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(now))
		}
	}

	report.TotalTime = time.Since(start)
	report.Frames, report.FixedSteps, report.DroppedSteps = t.Counters()
	report.FrameTime.Finalize()
	report.World = a.CollectStats()
	report.Phases = a.Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err := a.Stop(); err != nil {
		logger.Warn("stop", zap.Error(err))
	}
	logger.Info("simulation finished", zap.Uint64("frames", report.Frames))

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}
