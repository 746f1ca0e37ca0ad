package water

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/swell/buoyancy"
)

const (
	testMaxIter   = 8
	testThreshold = 0.01
)

func solveOne(t *testing.T, s *Solver, pos buoyancy.Vec3, maxIter int) (height, residual float32, iters uint8) {
	t.Helper()
	heights := make([]float32, 1)
	residuals := make([]float32, 1)
	iterations := make([]uint8, 1)
	s.SolveBatch([]buoyancy.Vec3{pos}, heights, residuals, iterations, maxIter, testThreshold)
	return heights[0], residuals[0], iterations[0]
}

func TestRefreshSnapshotWithoutSurface(t *testing.T) {
	s := NewSolver(nil)
	if err := s.RefreshSnapshot(); !errors.Is(err, ErrNoSurface) {
		t.Errorf("RefreshSnapshot = %v, want ErrNoSurface", err)
	}
}

func TestSolveConvergesOnGentleSea(t *testing.T) {
	surface := NewSurface(testParams(), 3)
	surface.SetTime(1.25)
	solver := NewSolver(surface)
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	bound := surface.MaxAmplitude()
	for i := 0; i < 40; i++ {
		pos := buoyancy.Vec3{X: float32(i)*3.1 - 60, Z: float32(i)*-1.3 + 20}
		height, residual, iters := solveOne(t, solver, pos, testMaxIter)

		if residual > testThreshold {
			t.Errorf("sample %d residual %v exceeds threshold after %d iterations", i, residual, iters)
		}
		if iters < 1 || iters > testMaxIter {
			t.Errorf("sample %d iterations = %d, want 1..%d", i, iters, testMaxIter)
		}
		if float64(height) > float64(bound)+1e-5 || float64(height) < -float64(bound)-1e-5 {
			t.Errorf("sample %d height %v outside amplitude bound %v", i, height, bound)
		}
	}
}

func TestSolveRespectsIterationBudget(t *testing.T) {
	surface := NewSurface(testParams(), 3)
	solver := NewSolver(surface)
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	_, _, iters := solveOne(t, solver, buoyancy.Vec3{X: 5, Z: 5}, 1)
	if iters != 1 {
		t.Errorf("iterations = %d with budget 1, want exactly 1", iters)
	}
}

func TestZeroSteepnessConvergesImmediately(t *testing.T) {
	surface := NewSurfaceFromWaves([]Wave{{
		Amplitude: 0.4, Wavelength: 15, Steepness: 0, Speed: 2, DirX: 1,
	}})
	surface.SetTime(0.5)
	solver := NewSolver(surface)
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	q := buoyancy.Vec3{X: 3, Z: -8}
	height, residual, iters := solveOne(t, solver, q, testMaxIter)
	if iters != 1 || residual != 0 {
		t.Errorf("iters = %d, residual = %v; undisplaced surface should converge in one step", iters, residual)
	}
	_, _, want := surface.Displace(q.X, q.Z)
	if height != want {
		t.Errorf("height = %v, want direct evaluation %v", height, want)
	}
}

func TestParallelBatchMatchesSequential(t *testing.T) {
	surface := NewSurface(testParams(), 9)
	surface.SetTime(2.0)
	solver := NewSolver(surface)
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	// Big enough to cross the worker-pool threshold.
	n := parallelThreshold * 4
	positions := make([]buoyancy.Vec3, n)
	for i := range positions {
		positions[i] = buoyancy.Vec3{X: float32(i) * 0.37, Z: float32(n-i) * 0.11}
	}

	heights := make([]float32, n)
	residuals := make([]float32, n)
	iterations := make([]uint8, n)
	solver.SolveBatch(positions, heights, residuals, iterations, testMaxIter, testThreshold)

	// Every sample solved one at a time must agree exactly: results may not
	// depend on batch composition or order.
	for i := 0; i < n; i += 17 {
		h, r, it := solveOne(t, solver, positions[i], testMaxIter)
		if h != heights[i] || r != residuals[i] || it != iterations[i] {
			t.Errorf("sample %d differs between batch and single solve: (%v,%v,%d) vs (%v,%v,%d)",
				i, heights[i], residuals[i], iterations[i], h, r, it)
		}
	}
}

func TestSnapshotIsolatesSolveFromLiveSurface(t *testing.T) {
	surface := NewSurface(testParams(), 5)
	surface.SetTime(1.0)
	solver := NewSolver(surface)
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	q := buoyancy.Vec3{X: 4, Z: 2}
	before, _, _ := solveOne(t, solver, q, testMaxIter)

	// Advancing the live surface must not affect solves against the captured
	// snapshot.
	surface.Advance(3.0)
	after, _, _ := solveOne(t, solver, q, testMaxIter)
	if before != after {
		t.Errorf("solve leaked live surface state: %v vs %v", before, after)
	}

	// A fresh snapshot picks up the new time.
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}
	refreshed, _, _ := solveOne(t, solver, q, testMaxIter)
	if refreshed == before {
		t.Error("refreshed snapshot still answers with the old surface state")
	}
}

func TestSolveBatchEmptyIsNoOp(t *testing.T) {
	solver := NewSolver(NewSurface(testParams(), 1))
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}
	solver.SolveBatch(nil, nil, nil, nil, testMaxIter, testThreshold)
}

func TestCloseIsIdempotent(t *testing.T) {
	solver := NewSolver(NewSurface(testParams(), 1))
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}
	// Force workers to start.
	n := parallelThreshold
	solver.SolveBatch(make([]buoyancy.Vec3, n), make([]float32, n), make([]float32, n), make([]uint8, n), testMaxIter, testThreshold)
	solver.Close()
	solver.Close()
}

func TestResidualIsEuclideanPlacementError(t *testing.T) {
	surface := NewSurfaceFromWaves([]Wave{{
		Amplitude: 0.3, Wavelength: 20, Steepness: 0.4, Speed: 1, DirX: 1,
	}})
	surface.SetTime(0.7)
	solver := NewSolver(surface)
	defer solver.Close()
	if err := solver.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	q := buoyancy.Vec3{X: 6, Z: 0}
	_, residual, _ := solveOne(t, solver, q, testMaxIter)
	if residual < 0 {
		t.Fatalf("negative residual %v", residual)
	}
	if math.IsNaN(float64(residual)) {
		t.Fatal("residual is NaN")
	}
}
