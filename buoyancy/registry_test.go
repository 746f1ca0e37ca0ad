package buoyancy

import (
	"errors"
	"testing"
)

func TestRegisterRejectsNilHandle(t *testing.T) {
	var r Registry
	if err := r.Register(nil, nil); !errors.Is(err, ErrNilHandle) {
		t.Errorf("Register(nil) = %v, want ErrNilHandle", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry grew on rejected registration: len = %d", r.Len())
	}
}

func TestRegisterRejectsDuplicateHandle(t *testing.T) {
	var r Registry
	body := &stubBody{}
	if err := r.Register(body, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(body, nil); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate Register = %v, want ErrAlreadyRegistered", err)
	}
	if r.Len() != 1 {
		t.Errorf("len = %d after duplicate rejection, want 1", r.Len())
	}
}

func TestRegisterEmptyPointsGetsSyntheticOrigin(t *testing.T) {
	var r Registry
	body := &stubBody{pos: Vec3{X: 7, Y: 1, Z: -3}}
	if err := r.Register(body, nil); err != nil {
		t.Fatal(err)
	}

	f := r.floaters[0]
	if len(f.points) != 1 {
		t.Fatalf("points = %d, want 1 synthetic point", len(f.points))
	}
	if got := f.points[0].WorldPosition(); got != body.pos {
		t.Errorf("synthetic point at %+v, want body origin %+v", got, body.pos)
	}

	// The synthetic point tracks the body, it isn't a cached position.
	body.pos.X = 100
	if got := f.points[0].WorldPosition(); got.X != 100 {
		t.Errorf("synthetic point did not follow the body: %+v", got)
	}
}

func TestRegisterCopiesPointList(t *testing.T) {
	var r Registry
	points := []Point{fixedPoint{X: 1}, fixedPoint{X: 2}}
	if err := r.Register(&stubBody{}, points); err != nil {
		t.Fatal(err)
	}
	points[0] = fixedPoint{X: 999}
	if got := r.floaters[0].points[0].WorldPosition().X; got != 1 {
		t.Errorf("registry points aliased the caller's slice: X = %v", got)
	}
}

func TestUnregisterCompactsAndIsIdempotent(t *testing.T) {
	var r Registry
	a, b, c := &stubBody{}, &stubBody{}, &stubBody{}
	for _, h := range []*stubBody{a, b, c} {
		if err := r.Register(h, nil); err != nil {
			t.Fatal(err)
		}
	}

	r.Unregister(b)
	if r.Len() != 2 {
		t.Fatalf("len = %d after Unregister, want 2", r.Len())
	}
	if r.IsRegistered(b) {
		t.Error("b still registered")
	}
	// Survivors keep their relative order; indices compact.
	if r.floaters[0].handle != Handle(a) || r.floaters[1].handle != Handle(c) {
		t.Error("survivors reordered after compaction")
	}

	// Removing an absent handle is a safe no-op.
	r.Unregister(b)
	r.Unregister(&stubBody{})
	if r.Len() != 2 {
		t.Errorf("len = %d after no-op removals, want 2", r.Len())
	}
}

func TestIsRegisteredOnEmptyRegistry(t *testing.T) {
	var r Registry
	if r.IsRegistered(&stubBody{}) {
		t.Error("empty registry reported a member")
	}
}
