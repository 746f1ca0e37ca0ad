package telemetry

import (
	"sort"
	"time"
)

// Phase names for the simulation step. The collect/query/aggregate phases
// are reported by the buoyancy dispatcher through its Timer hook.
const (
	PhaseSurface   = "surface"
	PhaseDrift     = "drift"
	PhaseCollect   = "collect"
	PhaseQuery     = "query"
	PhaseAggregate = "aggregate"
	PhaseTelemetry = "telemetry"
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks per-phase timings over a rolling window of ticks.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// Total returns the average tick duration over the window.
func (p *PerfCollector) Total() time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < p.sampleCount; i++ {
		sum += p.samples[i].TickDuration
	}
	return sum / time.Duration(p.sampleCount)
}

// Avg returns the average duration of one phase over the window.
func (p *PerfCollector) Avg(phase string) time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < p.sampleCount; i++ {
		sum += p.samples[i].Phases[phase]
	}
	return sum / time.Duration(p.sampleCount)
}

// SortedNames returns all phase names seen in the window, slowest first.
func (p *PerfCollector) SortedNames() []string {
	seen := make(map[string]bool)
	var names []string
	for i := 0; i < p.sampleCount; i++ {
		for name := range p.samples[i].Phases {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Slice(names, func(a, b int) bool {
		return p.Avg(names[a]) > p.Avg(names[b])
	})
	return names
}

// PerfStatsCSV is one perf.csv row: window-averaged phase timings in
// microseconds.
type PerfStatsCSV struct {
	WindowEnd       int32   `csv:"window_end"`
	TickMicros      float64 `csv:"tick_us"`
	SurfaceMicros   float64 `csv:"surface_us"`
	DriftMicros     float64 `csv:"drift_us"`
	CollectMicros   float64 `csv:"collect_us"`
	QueryMicros     float64 `csv:"query_us"`
	AggregateMicros float64 `csv:"aggregate_us"`
	TelemetryMicros float64 `csv:"telemetry_us"`
}

// ToCSV snapshots the current window averages into a CSV record.
func (p *PerfCollector) ToCSV(windowEnd int32) PerfStatsCSV {
	micros := func(d time.Duration) float64 {
		return float64(d.Nanoseconds()) / 1e3
	}
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		TickMicros:      micros(p.Total()),
		SurfaceMicros:   micros(p.Avg(PhaseSurface)),
		DriftMicros:     micros(p.Avg(PhaseDrift)),
		CollectMicros:   micros(p.Avg(PhaseCollect)),
		QueryMicros:     micros(p.Avg(PhaseQuery)),
		AggregateMicros: micros(p.Avg(PhaseAggregate)),
		TelemetryMicros: micros(p.Avg(PhaseTelemetry)),
	}
}
