package buoyancy

// floater is one registered body: its dynamics handle (non-owning) and an
// owned copy of its sample-point list.
type floater struct {
	handle Handle
	points []Point
}

// Registry is the ordered collection of registered bodies. Insertion order
// defines the body index used for aggregation; removal compacts the list, so
// surviving indices may shift after an Unregister.
type Registry struct {
	floaters []floater
}

// Register appends a body. A body registered with no points is assigned one
// synthetic point at its own origin, so every body contributes at least one
// sample per tick. The point slice is copied; the handle is not retained
// beyond lookups and position writes.
func (r *Registry) Register(handle Handle, points []Point) error {
	if handle == nil {
		return ErrNilHandle
	}
	if r.IsRegistered(handle) {
		return ErrAlreadyRegistered
	}
	owned := make([]Point, 0, max(len(points), 1))
	owned = append(owned, points...)
	if len(owned) == 0 {
		owned = append(owned, originPoint{handle})
	}
	r.floaters = append(r.floaters, floater{handle: handle, points: owned})
	return nil
}

// Unregister removes every entry whose handle matches. Safe no-op when the
// handle was never registered.
func (r *Registry) Unregister(handle Handle) {
	kept := r.floaters[:0]
	for _, f := range r.floaters {
		if f.handle != handle {
			kept = append(kept, f)
		}
	}
	// Clear the tail so dropped handles don't linger in the backing array.
	for i := len(kept); i < len(r.floaters); i++ {
		r.floaters[i] = floater{}
	}
	r.floaters = kept
}

// IsRegistered reports whether the handle is currently registered.
func (r *Registry) IsRegistered(handle Handle) bool {
	for i := range r.floaters {
		if r.floaters[i].handle == handle {
			return true
		}
	}
	return false
}

// Len returns the number of registered bodies.
func (r *Registry) Len() int { return len(r.floaters) }

// originPoint samples a body at its own origin.
type originPoint struct {
	h Handle
}

func (o originPoint) WorldPosition() Vec3 { return o.h.Position() }
