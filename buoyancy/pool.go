package buoyancy

import "fmt"

// samplePool holds the per-tick parallel sample arrays: input positions,
// solver outputs, and the owning body index per sample. All arrays are sized
// once at allocate and reused every tick; entries at or past count are stale
// from a previous tick and must not be read.
type samplePool struct {
	capacity   int
	positions  []Vec3
	owners     []int32
	heights    []float32
	residuals  []float32
	iterations []uint8
	count      int
	released   bool
}

// allocate reserves storage for capacity samples across all parallel arrays.
// Either every array is valid afterwards or none is. Allocating twice, or
// after release, is a programming error and panics.
func (p *samplePool) allocate(capacity int) error {
	if p.positions != nil {
		panic("buoyancy: sample pool allocated twice")
	}
	if p.released {
		panic("buoyancy: sample pool allocated after release")
	}
	if capacity < 1 {
		return fmt.Errorf("buoyancy: pool capacity must be positive, got %d", capacity)
	}
	p.capacity = capacity
	p.positions = make([]Vec3, capacity)
	p.owners = make([]int32, capacity)
	p.heights = make([]float32, capacity)
	p.residuals = make([]float32, capacity)
	p.iterations = make([]uint8, capacity)
	return nil
}

// release frees all storage. Idempotent; the pool cannot be reused after.
func (p *samplePool) release() {
	if p.released {
		return
	}
	p.positions = nil
	p.owners = nil
	p.heights = nil
	p.residuals = nil
	p.iterations = nil
	p.capacity = 0
	p.count = 0
	p.released = true
}

func (p *samplePool) reset() {
	if p.positions == nil {
		panic("buoyancy: sample pool used before allocate or after release")
	}
	p.count = 0
}

// push appends one sample. Reports false once the pool is full; samples
// already collected are unaffected.
func (p *samplePool) push(pos Vec3, owner int32) bool {
	if p.count >= p.capacity {
		return false
	}
	p.positions[p.count] = pos
	p.owners[p.count] = owner
	p.count++
	return true
}

// BatchView is a read-only view of the most recently solved batch, for
// diagnostics. The slices it returns alias the pool and are valid only until
// the next tick; callers must not mutate or retain them.
type BatchView struct {
	pool *samplePool
}

// Count returns the number of samples in the batch.
func (v BatchView) Count() int { return v.pool.count }

// Positions returns the sampled world positions.
func (v BatchView) Positions() []Vec3 { return v.pool.positions[:v.pool.count] }

// Heights returns the solved surface heights.
func (v BatchView) Heights() []float32 { return v.pool.heights[:v.pool.count] }

// Residuals returns the per-sample residual error of the solve.
func (v BatchView) Residuals() []float32 { return v.pool.residuals[:v.pool.count] }

// Iterations returns the per-sample iteration counts used by the solve.
func (v BatchView) Iterations() []uint8 { return v.pool.iterations[:v.pool.count] }

// Owners returns the body index each sample belongs to.
func (v BatchView) Owners() []int32 { return v.pool.owners[:v.pool.count] }
