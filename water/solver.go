package water

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/pthm-cable/swell/buoyancy"
)

// parallelThreshold is the minimum batch size to use the worker pool.
// Below this, solving inline is faster than goroutine handoff.
const parallelThreshold = 64

// ErrNoSurface is returned by RefreshSnapshot when the solver has no surface
// attached; the dispatcher skips the tick and retries next tick.
var ErrNoSurface = errors.New("water: no surface attached")

// batchState describes the batch currently being solved. Workers read it
// between dispatch and the completion barrier; nothing mutates it in flight.
type batchState struct {
	positions  []buoyancy.Vec3
	heights    []float32
	residuals  []float32
	iterations []uint8
	maxIter    int
	threshold  float32
}

// workChunk is a range of samples for one worker.
type workChunk struct {
	start, end int
}

// Solver answers batched height queries against a Surface by inverting the
// horizontal Gerstner displacement with bounded fixed-point iteration. It
// implements the buoyancy oracle contract: per-sample results depend only on
// that sample's position and the per-tick snapshot.
type Solver struct {
	surface *Surface
	snap    Snapshot
	cur     batchState

	numWorkers int
	workChan   chan workChunk
	doneChan   chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

// NewSolver creates a solver over the given surface. Workers are started
// lazily on the first large batch; pair with Close.
func NewSolver(surface *Surface) *Solver {
	return &Solver{
		surface:    surface,
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// RefreshSnapshot copies the live wave set and clock into the solver's
// snapshot. Called once per tick by the dispatcher, before SolveBatch.
func (s *Solver) RefreshSnapshot() error {
	if s.surface == nil {
		return ErrNoSurface
	}
	s.snap.capture(s.surface)
	return nil
}

// SolveBatch resolves every position against the current snapshot, writing
// height, residual, and iteration count per sample. Blocks until the whole
// batch is done.
func (s *Solver) SolveBatch(positions []buoyancy.Vec3, heights, residuals []float32, iterations []uint8, maxIterations int, errorThreshold float32) {
	n := len(positions)
	if n == 0 {
		return
	}
	s.cur = batchState{
		positions:  positions,
		heights:    heights,
		residuals:  residuals,
		iterations: iterations,
		maxIter:    maxIterations,
		threshold:  errorThreshold,
	}

	if n < parallelThreshold {
		s.solveRange(0, n)
		return
	}

	if !s.running {
		s.startWorkers()
	}

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers
	dispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		s.workChan <- workChunk{start: start, end: end}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-s.doneChan
	}
}

// solveRange resolves samples [i0, i1). For each query point q, the surface
// parameter point u that lands on q's horizontal position is found by
// fixed-point iteration: start at q, subtract the placement error, repeat
// until the error is under the threshold or the iteration budget runs out.
// The height at the converged parameter point is the answer.
func (s *Solver) solveRange(i0, i1 int) {
	b := &s.cur
	for i := i0; i < i1; i++ {
		q := b.positions[i]
		u, v := q.X, q.Z
		var height, residual float32
		var iters uint8
		for n := 0; n < b.maxIter; n++ {
			dx, dz, y := s.snap.displace(u, v)
			ex := u + dx - q.X
			ez := v + dz - q.Z
			height = y
			residual = float32(math.Sqrt(float64(ex*ex + ez*ez)))
			iters = uint8(n + 1)
			if residual <= b.threshold {
				break
			}
			u -= ex
			v -= ez
		}
		b.heights[i] = height
		b.residuals[i] = residual
		b.iterations[i] = iters
	}
}

// startWorkers launches the persistent worker goroutines.
func (s *Solver) startWorkers() {
	s.workChan = make(chan workChunk, s.numWorkers)
	s.doneChan = make(chan struct{}, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *Solver) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case chunk, ok := <-s.workChan:
			if !ok {
				return
			}
			s.solveRange(chunk.start, chunk.end)
			s.doneChan <- struct{}{}
		}
	}
}

// Close stops the worker pool and waits for it. Idempotent.
func (s *Solver) Close() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}
