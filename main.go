package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Log window stats via slog")
	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Structured JSON logging to stdout
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	s, err := sim.New(sim.Options{
		Seed:      *seed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting buoyancy simulation",
		"seed", *seed,
		"fleet", cfg.Fleet.Count,
		"pool_capacity", cfg.Buoyancy.PoolCapacity,
		"max_ticks", *maxTicks,
	)

	for {
		if err := s.Step(); err != nil {
			slog.Error("simulation stopped", "error", err)
			os.Exit(1)
		}
		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "ticks", s.Tick())
			return
		}
	}
}
