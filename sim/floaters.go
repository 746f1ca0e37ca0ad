package sim

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/buoyancy"
	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/config"
)

// hullAdapter bridges one ECS hull entity to the buoyancy service: it is the
// dynamics handle the registry holds. Created at spawn, registered
// immediately, deregistered at despawn.
type hullAdapter struct {
	sim    *Sim
	entity ecs.Entity
}

func (a *hullAdapter) Position() buoyancy.Vec3 {
	p := a.sim.posMap.Get(a.entity)
	return buoyancy.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

func (a *hullAdapter) SetPosition(v buoyancy.Vec3) {
	p := a.sim.posMap.Get(a.entity)
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// pontoonPoint is one live sample point: the hull's current position plus a
// fixed local offset. Positions are read fresh every tick.
type pontoonPoint struct {
	adapter *hullAdapter
	dx, dz  float32
}

func (p pontoonPoint) WorldPosition() buoyancy.Vec3 {
	v := p.adapter.Position()
	v.X += p.dx
	v.Z += p.dz
	return v
}

// SpawnHull creates a hull entity and registers it with the buoyancy
// service. Pontoon offsets come from the hull layout; a hull with zero
// pontoons still registers (the service samples its origin).
func (s *Sim) SpawnHull(x, z float32, vel components.Velocity, hull components.Hull) (ecs.Entity, error) {
	pos := components.Position{X: x, Y: 0, Z: z}
	entity := s.hullMapper.NewEntity(&pos, &vel, &hull)

	adapter := &hullAdapter{sim: s, entity: entity}
	points := make([]buoyancy.Point, 0, hull.Count)
	for i := uint8(0); i < hull.Count; i++ {
		p := hull.Pontoons[i]
		points = append(points, pontoonPoint{adapter: adapter, dx: p.X, dz: p.Z})
	}

	if err := s.buoy.Registry().Register(adapter, points); err != nil {
		s.hullMapper.Remove(entity)
		return ecs.Entity{}, fmt.Errorf("registering hull: %w", err)
	}
	s.adapters[entity] = adapter
	return entity, nil
}

// DespawnHull deregisters and removes a hull. Safe no-op for unknown
// entities.
func (s *Sim) DespawnHull(entity ecs.Entity) {
	adapter, ok := s.adapters[entity]
	if !ok {
		return
	}
	s.buoy.Registry().Unregister(adapter)
	delete(s.adapters, entity)
	s.hullMapper.Remove(entity)
}

// HullCount returns the number of live hulls.
func (s *Sim) HullCount() int { return len(s.adapters) }

// spawnFleet scatters the configured fleet across the spawn area, pontoons
// laid out in a ring around each hull.
func (s *Sim) spawnFleet(cfg *config.Config) error {
	area := float32(cfg.Fleet.SpawnArea)
	spread := float32(cfg.Fleet.PontoonSpread)
	driftMax := float32(cfg.Fleet.DriftSpeed)

	count := cfg.Fleet.PontoonsPerHull
	if count > components.MaxPontoons {
		count = components.MaxPontoons
	}

	for i := 0; i < cfg.Fleet.Count; i++ {
		var hull components.Hull
		hull.Size = spread
		for p := 0; p < count; p++ {
			ang := 2 * math.Pi * float64(p) / float64(count)
			hull.AddPontoon(spread*float32(math.Cos(ang)), spread*float32(math.Sin(ang)))
		}

		x := (s.rng.Float32() - 0.5) * area
		z := (s.rng.Float32() - 0.5) * area
		heading := s.rng.Float64() * 2 * math.Pi
		speed := s.rng.Float32() * driftMax
		vel := components.Velocity{
			X: speed * float32(math.Cos(heading)),
			Z: speed * float32(math.Sin(heading)),
		}

		if _, err := s.SpawnHull(x, z, vel, hull); err != nil {
			return err
		}
	}
	return nil
}
