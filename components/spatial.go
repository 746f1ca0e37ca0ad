package components

// Position is an entity's world position. Y is vertical.
type Position struct {
	X, Y, Z float32
}

// Velocity is an entity's drift velocity in the horizontal plane. The
// vertical coordinate is owned by the buoyancy pipeline, not integrated.
type Velocity struct {
	X, Z float32
}
