package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorBasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseCollect)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseQuery)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	if pc.Total() <= 0 {
		t.Error("expected positive average tick duration")
	}
	if pc.Avg(PhaseCollect) <= 0 {
		t.Error("expected collect phase to be tracked")
	}
	if pc.Avg(PhaseQuery) <= pc.Avg(PhaseCollect) {
		t.Error("expected query phase to dominate collect")
	}

	names := pc.SortedNames()
	if len(names) != 2 || names[0] != PhaseQuery {
		t.Errorf("SortedNames = %v, want query first", names)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	// Overfill the window; older samples roll off without growing state.
	for i := 0; i < 12; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAggregate)
		pc.EndTick()
	}
	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want window size 5", pc.sampleCount)
	}
	if pc.Total() < 0 {
		t.Error("negative tick duration")
	}
}

func TestPerfCollectorToCSV(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhaseSurface)
	time.Sleep(50 * time.Microsecond)
	pc.EndTick()

	row := pc.ToCSV(240)
	if row.WindowEnd != 240 {
		t.Errorf("WindowEnd = %d, want 240", row.WindowEnd)
	}
	if row.SurfaceMicros <= 0 {
		t.Error("expected surface phase micros in CSV row")
	}
	if row.TickMicros < row.SurfaceMicros {
		t.Error("tick total smaller than one of its phases")
	}
}
