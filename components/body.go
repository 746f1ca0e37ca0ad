package components

// MaxPontoons bounds the pontoon count per hull so Hull stays a flat,
// copyable component.
const MaxPontoons = 8

// Pontoon is a sample-point offset in hull-local space. Hulls don't rotate,
// so local offsets map straight to world offsets.
type Pontoon struct {
	X, Z float32
}

// Hull describes a floating body's pontoon layout and drawn extent.
type Hull struct {
	Pontoons [MaxPontoons]Pontoon
	Count    uint8
	Size     float32 // half-extent for previews
}

// AddPontoon appends an offset. Reports false when the hull is full.
func (h *Hull) AddPontoon(x, z float32) bool {
	if int(h.Count) >= MaxPontoons {
		return false
	}
	h.Pontoons[h.Count] = Pontoon{X: x, Z: z}
	h.Count++
	return true
}
