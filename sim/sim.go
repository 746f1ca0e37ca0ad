// Package sim hosts the buoyancy pipeline: an ark ECS world of drifting
// hulls, a Gerstner water surface, and a fixed-interval stepping loop that
// runs one collect/query/aggregate pass per tick.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/buoyancy"
	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/telemetry"
	"github.com/pthm-cable/swell/water"
)

// Options configures a simulation run.
type Options struct {
	Seed      int64
	OutputDir string // empty = CSV output disabled
	LogStats  bool   // log window stats via slog
}

// Sim owns the world and the injected buoyancy service. Collaborators hold
// the service reference through their adapters; there is no global instance.
type Sim struct {
	world *ecs.World
	rng   *rand.Rand

	hullMapper *ecs.Map3[components.Position, components.Velocity, components.Hull]
	hullFilter *ecs.Filter3[components.Position, components.Velocity, components.Hull]
	posMap     *ecs.Map1[components.Position]

	surface *water.Surface
	solver  *water.Solver
	buoy    *buoyancy.Dispatcher

	// adapters tracks the registry handle per entity so despawn can
	// deregister.
	adapters map[ecs.Entity]*hullAdapter

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	tick       int32
	simTime    float64
	nextWindow int32
	logStats   bool
}

// New builds a simulation from the global config.
func New(opts Options) (*Sim, error) {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Sim{
		world:      world,
		rng:        rand.New(rand.NewSource(seed)),
		hullMapper: ecs.NewMap3[components.Position, components.Velocity, components.Hull](world),
		hullFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Hull](world),
		posMap:     ecs.NewMap1[components.Position](world),
		adapters:   make(map[ecs.Entity]*hullAdapter),
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:  telemetry.NewCollector(),
		nextWindow: cfg.Derived.StatsWindowTicks,
		logStats:   opts.LogStats,
	}

	s.surface = water.NewSurface(waveParams(cfg.Water), seed)
	s.solver = water.NewSolver(s.surface)

	policy := buoyancy.DropLog
	if cfg.Buoyancy.DropPolicy == "fail" {
		policy = buoyancy.DropFail
	}
	buoy, err := buoyancy.NewDispatcher(s.solver, buoyancy.Options{
		PoolCapacity:   cfg.Buoyancy.PoolCapacity,
		MaxIterations:  cfg.Buoyancy.MaxIterations,
		ErrorThreshold: float32(cfg.Buoyancy.ErrorThreshold),
		DropPolicy:     policy,
		Timer:          s.perf,
	})
	if err != nil {
		s.solver.Close()
		return nil, err
	}
	s.buoy = buoy

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.output = output
	if err := s.output.WriteConfig(cfg); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.spawnFleet(cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func waveParams(w config.WaterConfig) water.WaveParams {
	return water.WaveParams{
		Count:         w.WaveCount,
		MinAmplitude:  float32(w.MinAmplitude),
		MaxAmplitude:  float32(w.MaxAmplitude),
		MinWavelength: float32(w.MinWavelength),
		MaxWavelength: float32(w.MaxWavelength),
		Steepness:     float32(w.Steepness),
		MinSpeed:      float32(w.MinSpeed),
		MaxSpeed:      float32(w.MaxSpeed),
	}
}

// Buoyancy returns the injected buoyancy service, mainly for tests and
// hosts that register their own bodies.
func (s *Sim) Buoyancy() *buoyancy.Dispatcher { return s.buoy }

// Surface returns the water surface.
func (s *Sim) Surface() *water.Surface { return s.surface }

// Tick returns the current tick number.
func (s *Sim) Tick() int32 { return s.tick }

// Step advances the simulation by one tick: surface clock, hull drift, the
// buoyancy pipeline, then telemetry. The error is non-nil only under the
// fail drop policy on pool overflow.
func (s *Sim) Step() error {
	cfg := config.Cfg()
	dt := cfg.Derived.DT32

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSurface)
	s.surface.Advance(dt)

	s.perf.StartPhase(telemetry.PhaseDrift)
	s.updateDrift(dt)

	// The dispatcher reports its own collect/query/aggregate phases.
	report, err := s.buoy.Tick()
	if err != nil {
		s.perf.EndTick()
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordTick(report.Bodies, report.Samples, report.Dropped, report.Skipped)
	if !report.Skipped && report.Samples > 0 {
		b := s.buoy.Batch()
		s.collector.RecordBatch(telemetry.Summarize(b.Heights(), b.Residuals(), b.Iterations()))
	}

	s.perf.EndTick()
	s.tick++
	s.simTime += float64(dt)

	if s.tick >= s.nextWindow {
		s.flushWindow()
		s.nextWindow = s.tick + cfg.Derived.StatsWindowTicks
	}
	return nil
}

// updateDrift moves hulls horizontally by their velocity, wrapping within
// the spawn area so the fleet keeps crossing the wave field.
func (s *Sim) updateDrift(dt float32) {
	area := float32(config.Cfg().Fleet.SpawnArea)
	query := s.hullFilter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		pos.X = wrap(pos.X+vel.X*dt, area)
		pos.Z = wrap(pos.Z+vel.Z*dt, area)
	}
}

func wrap(v, area float32) float32 {
	if area <= 0 {
		return v
	}
	half := area / 2
	for v > half {
		v -= area
	}
	for v < -half {
		v += area
	}
	return v
}

func (s *Sim) flushWindow() {
	stats := s.collector.Flush(s.tick, s.simTime)
	if s.logStats {
		slog.Info("window stats",
			"tick", stats.WindowEndTick,
			"bodies", stats.Bodies,
			"samples", stats.Samples,
			"dropped", stats.DroppedSamples,
			"skipped_ticks", stats.SkippedTicks,
			"height_mean", stats.HeightMean,
			"residual_max", stats.ResidualMax,
			"iterations_mean", stats.IterationsMean,
		)
	}
	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(s.perf.ToCSV(stats.WindowEndTick)); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// Close releases the sample pool, stops solver workers, and closes output
// files. Idempotent.
func (s *Sim) Close() {
	if s.buoy != nil {
		s.buoy.Close()
	}
	if s.solver != nil {
		s.solver.Close()
	}
	s.output.Close()
	s.output = nil
}
