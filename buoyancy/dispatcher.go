package buoyancy

import (
	"errors"
	"fmt"
	"log/slog"
)

// Defaults applied by NewDispatcher when an option is zero.
const (
	DefaultPoolCapacity   = 10000
	DefaultMaxIterations  = 8
	DefaultErrorThreshold = 0.01
)

// Phase names reported to the Timer.
const (
	PhaseCollect   = "collect"
	PhaseQuery     = "query"
	PhaseAggregate = "aggregate"
)

// Options configures a Dispatcher.
type Options struct {
	PoolCapacity   int     // max samples per tick across all bodies
	MaxIterations  int     // solver iteration bound per sample
	ErrorThreshold float32 // solver convergence threshold, length units
	DropPolicy     DropPolicy
	Logger         *slog.Logger // nil = slog.Default()
	Timer          Timer        // optional phase instrumentation
}

// Dispatcher owns the sample pool and runs the per-tick
// collect -> query -> aggregate pipeline against a single oracle.
//
// A Dispatcher is not safe for concurrent use; the hosting stepping loop
// must guarantee at most one Tick in flight, and nothing may touch the pool
// outside that tick.
type Dispatcher struct {
	registry Registry
	oracle   Oracle
	pool     samplePool

	maxIterations  int
	errorThreshold float32
	dropPolicy     DropPolicy
	log            *slog.Logger
	timer          Timer

	// Aggregation scratch, reused across ticks.
	sums   []float32
	counts []int32
}

// NewDispatcher allocates the sample pool and wires the oracle. The pool is
// allocated exactly once here; pair with Close.
func NewDispatcher(oracle Oracle, opts Options) (*Dispatcher, error) {
	if oracle == nil {
		return nil, errors.New("buoyancy: nil oracle")
	}
	if opts.PoolCapacity == 0 {
		opts.PoolCapacity = DefaultPoolCapacity
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.ErrorThreshold <= 0 {
		opts.ErrorThreshold = DefaultErrorThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dispatcher{
		oracle:         oracle,
		maxIterations:  opts.MaxIterations,
		errorThreshold: opts.ErrorThreshold,
		dropPolicy:     opts.DropPolicy,
		log:            opts.Logger,
		timer:          opts.Timer,
	}
	if err := d.pool.allocate(opts.PoolCapacity); err != nil {
		return nil, err
	}
	return d, nil
}

// Registry returns the body registry backing this dispatcher.
func (d *Dispatcher) Registry() *Registry { return &d.registry }

// Batch exposes the most recently solved batch for diagnostics.
func (d *Dispatcher) Batch() BatchView { return BatchView{&d.pool} }

// Capacity returns the pool capacity in samples.
func (d *Dispatcher) Capacity() int { return d.pool.capacity }

// Close releases the sample pool. Idempotent; the dispatcher must not be
// ticked afterwards.
func (d *Dispatcher) Close() { d.pool.release() }

// Tick runs one full pipeline pass: refresh the oracle snapshot, flatten all
// bodies' sample points into the pool, solve the whole batch synchronously,
// and snap each body's vertical coordinate to the mean of its heights.
//
// A failed snapshot refresh skips the tick (logged, counted in the report,
// no positions touched) and is retried implicitly next tick. The returned
// error is non-nil only under DropFail on capacity overflow.
func (d *Dispatcher) Tick() (TickReport, error) {
	report := TickReport{Bodies: d.registry.Len()}

	if err := d.oracle.RefreshSnapshot(); err != nil {
		d.log.Warn("surface snapshot refresh failed, skipping buoyancy tick", "error", err)
		report.Skipped = true
		return report, nil
	}

	d.startPhase(PhaseCollect)
	dropped := d.collect()
	report.Samples = d.pool.count
	report.Dropped = dropped
	if dropped > 0 {
		if d.dropPolicy == DropFail {
			return report, fmt.Errorf("%w: %d samples over capacity %d", ErrPoolOverflow, dropped, d.pool.capacity)
		}
		d.log.Warn("sample pool capacity exceeded, excess samples dropped",
			"capacity", d.pool.capacity, "dropped", dropped, "bodies", report.Bodies)
	}

	if d.pool.count == 0 {
		return report, nil
	}

	d.startPhase(PhaseQuery)
	n := d.pool.count
	d.oracle.SolveBatch(
		d.pool.positions[:n],
		d.pool.heights[:n], d.pool.residuals[:n], d.pool.iterations[:n],
		d.maxIterations, d.errorThreshold,
	)

	d.startPhase(PhaseAggregate)
	d.aggregate()
	return report, nil
}

// collect flattens every body's current sample points into the pool, bodies
// in registry order, points in declaration order. Collection stops at pool
// capacity; the overflow count is returned and already-collected samples
// stay intact.
func (d *Dispatcher) collect() (dropped int) {
	d.pool.reset()
	for bi := range d.registry.floaters {
		f := &d.registry.floaters[bi]
		for _, pt := range f.points {
			if !d.pool.push(pt.WorldPosition(), int32(bi)) {
				dropped++
			}
		}
	}
	return dropped
}

// aggregate averages the solved heights per owning body and writes the
// result as the body's new vertical coordinate, leaving X and Z unchanged.
// The divisor is the body's declared point count, not the samples actually
// collected, so a truncated body gets an understated average that tick. A
// body with no collected samples at all is left untouched.
func (d *Dispatcher) aggregate() {
	n := len(d.registry.floaters)
	if cap(d.sums) < n {
		d.sums = make([]float32, n)
		d.counts = make([]int32, n)
	}
	d.sums = d.sums[:n]
	d.counts = d.counts[:n]
	for i := range d.sums {
		d.sums[i] = 0
		d.counts[i] = 0
	}

	for i := 0; i < d.pool.count; i++ {
		o := d.pool.owners[i]
		d.sums[o] += d.pool.heights[i]
		d.counts[o]++
	}

	for bi := range d.registry.floaters {
		if d.counts[bi] == 0 {
			continue
		}
		f := &d.registry.floaters[bi]
		pos := f.handle.Position()
		pos.Y = d.sums[bi] / float32(len(f.points))
		f.handle.SetPosition(pos)
	}
}

func (d *Dispatcher) startPhase(name string) {
	if d.timer != nil {
		d.timer.StartPhase(name)
	}
}
