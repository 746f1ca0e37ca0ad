// Package water provides a Gerstner wave surface and a batched height solver
// implementing the buoyancy oracle contract.
package water

import (
	"math"
	"math/rand"
)

// Wave is one Gerstner component of the surface.
type Wave struct {
	Amplitude  float32 // crest height, length units
	Wavelength float32
	Steepness  float32 // 0..1, scales horizontal displacement
	Speed      float32 // phase speed, length units per second
	DirX, DirZ float32 // unit travel direction in the horizontal plane
	Phase      float32 // radians
}

// WaveParams bounds the randomized wave set built by NewSurface.
type WaveParams struct {
	Count         int
	MinAmplitude  float32
	MaxAmplitude  float32
	MinWavelength float32
	MaxWavelength float32
	Steepness     float32
	MinSpeed      float32
	MaxSpeed      float32
}

// Surface is a sum-of-Gerstner-waves height field animated over time.
// Advance and SetWaves must not run concurrently with a solve; the hosting
// loop calls them between ticks.
type Surface struct {
	waves []Wave
	time  float64
}

// NewSurface builds a randomized wave set from params. The same seed yields
// the same sea.
func NewSurface(params WaveParams, seed int64) *Surface {
	rng := rand.New(rand.NewSource(seed))
	waves := make([]Wave, params.Count)
	for i := range waves {
		ang := rng.Float64() * 2 * math.Pi
		waves[i] = Wave{
			Amplitude:  lerp(params.MinAmplitude, params.MaxAmplitude, rng.Float32()),
			Wavelength: lerp(params.MinWavelength, params.MaxWavelength, rng.Float32()),
			Steepness:  params.Steepness,
			Speed:      lerp(params.MinSpeed, params.MaxSpeed, rng.Float32()),
			DirX:       float32(math.Cos(ang)),
			DirZ:       float32(math.Sin(ang)),
			Phase:      rng.Float32() * 2 * math.Pi,
		}
	}
	return &Surface{waves: waves}
}

// NewSurfaceFromWaves builds a surface from an explicit wave set.
func NewSurfaceFromWaves(waves []Wave) *Surface {
	owned := make([]Wave, len(waves))
	copy(owned, waves)
	return &Surface{waves: owned}
}

// Advance moves the surface clock forward by dt seconds.
func (s *Surface) Advance(dt float32) { s.time += float64(dt) }

// SetTime sets the surface clock, mainly for deterministic tests.
func (s *Surface) SetTime(t float64) { s.time = t }

// SetWaves replaces the wave set. Call only between ticks.
func (s *Surface) SetWaves(waves []Wave) {
	s.waves = s.waves[:0]
	s.waves = append(s.waves, waves...)
}

// Displace evaluates the displaced surface at parameter point (u, v) at the
// surface's current time, for rendering. Solvers use a per-tick snapshot
// instead.
func (s *Surface) Displace(u, v float32) (dx, dz, y float32) {
	sn := Snapshot{waves: s.waves, time: float32(s.time)}
	return sn.displace(u, v)
}

// Waves returns a copy of the current wave set.
func (s *Surface) Waves() []Wave {
	out := make([]Wave, len(s.waves))
	copy(out, s.waves)
	return out
}

// MaxAmplitude returns the sum of wave amplitudes, an upper bound on |height|.
func (s *Surface) MaxAmplitude() float32 {
	var sum float32
	for i := range s.waves {
		sum += s.waves[i].Amplitude
	}
	return sum
}

// Snapshot is an immutable copy of the surface state, captured once per tick
// so solver workers never race the live surface.
type Snapshot struct {
	waves []Wave
	time  float32
}

// capture copies the surface state, reusing the snapshot's backing array.
func (sn *Snapshot) capture(s *Surface) {
	sn.waves = sn.waves[:0]
	sn.waves = append(sn.waves, s.waves...)
	sn.time = float32(s.time)
}

// displace evaluates the displaced surface at parameter point (u, v): the
// horizontal Gerstner displacement (dx, dz) and the height y there.
func (sn *Snapshot) displace(u, v float32) (dx, dz, y float32) {
	for i := range sn.waves {
		w := &sn.waves[i]
		k := 2 * math.Pi / float64(w.Wavelength)
		theta := k * float64(w.DirX*u+w.DirZ*v-w.Speed*sn.time)
		sin, cos := math.Sincos(theta + float64(w.Phase))
		chop := w.Steepness * w.Amplitude * float32(cos)
		dx += w.DirX * chop
		dz += w.DirZ * chop
		y += w.Amplitude * float32(sin)
	}
	return dx, dz, y
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
