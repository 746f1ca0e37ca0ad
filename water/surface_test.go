package water

import (
	"math"
	"testing"
)

func testParams() WaveParams {
	return WaveParams{
		Count:         4,
		MinAmplitude:  0.2,
		MaxAmplitude:  0.4,
		MinWavelength: 10,
		MaxWavelength: 30,
		Steepness:     0.3,
		MinSpeed:      1,
		MaxSpeed:      3,
	}
}

func TestNewSurfaceIsDeterministicPerSeed(t *testing.T) {
	a := NewSurface(testParams(), 42)
	b := NewSurface(testParams(), 42)
	c := NewSurface(testParams(), 43)

	wa, wb := a.Waves(), b.Waves()
	if len(wa) != 4 {
		t.Fatalf("wave count = %d, want 4", len(wa))
	}
	for i := range wa {
		if wa[i] != wb[i] {
			t.Fatalf("same seed produced different wave %d: %+v vs %+v", i, wa[i], wb[i])
		}
	}

	same := true
	for i, w := range c.Waves() {
		if w != wa[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced an identical sea")
	}
}

func TestWaveDirectionsAreUnit(t *testing.T) {
	for _, w := range NewSurface(testParams(), 7).Waves() {
		n := math.Sqrt(float64(w.DirX*w.DirX + w.DirZ*w.DirZ))
		if math.Abs(n-1) > 1e-5 {
			t.Errorf("wave direction norm = %v, want 1", n)
		}
	}
}

func TestHeightBoundedByAmplitudeSum(t *testing.T) {
	s := NewSurface(testParams(), 11)
	bound := float64(s.MaxAmplitude())
	for i := 0; i < 200; i++ {
		u := float32(i)*1.7 - 170
		_, _, y := s.Displace(u, -u/3)
		if math.Abs(float64(y)) > bound+1e-5 {
			t.Errorf("height %v at u=%v exceeds amplitude sum %v", y, u, bound)
		}
	}
}

func TestAdvanceMovesTheSurface(t *testing.T) {
	s := NewSurface(testParams(), 11)
	_, _, y0 := s.Displace(3, 4)
	s.Advance(0.5)
	_, _, y1 := s.Displace(3, 4)
	if y0 == y1 {
		t.Error("surface did not move after Advance")
	}
}

func TestSetWavesCopiesInput(t *testing.T) {
	waves := []Wave{{Amplitude: 1, Wavelength: 10, DirX: 1}}
	s := NewSurfaceFromWaves(waves)
	waves[0].Amplitude = 99
	if s.MaxAmplitude() != 1 {
		t.Errorf("surface aliased caller's wave slice: amplitude sum = %v", s.MaxAmplitude())
	}
}

func TestZeroSteepnessHasNoHorizontalDisplacement(t *testing.T) {
	s := NewSurfaceFromWaves([]Wave{{
		Amplitude: 0.5, Wavelength: 12, Steepness: 0, Speed: 2, DirX: 1,
	}})
	dx, dz, _ := s.Displace(5, -2)
	if dx != 0 || dz != 0 {
		t.Errorf("displacement = (%v, %v) with zero steepness, want (0, 0)", dx, dz)
	}
}
