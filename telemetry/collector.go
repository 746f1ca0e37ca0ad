package telemetry

// Collector accumulates buoyancy pipeline counters over a stats window.
// The hosting loop records every tick and flushes at window boundaries.
type Collector struct {
	ticks    int
	skipped  int
	overflow int
	samples  int64
	dropped  int64
	bodies   int // last seen

	lastBatch BatchStats
	haveBatch bool
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordTick accumulates one tick's pipeline counters.
func (c *Collector) RecordTick(bodies, samples, dropped int, skipped bool) {
	c.ticks++
	c.bodies = bodies
	c.samples += int64(samples)
	c.dropped += int64(dropped)
	if dropped > 0 {
		c.overflow++
	}
	if skipped {
		c.skipped++
	}
}

// RecordBatch stores the batch distribution of the most recent solved tick.
// The window report carries the last one before the flush (sampled at window
// end, matching the counter semantics).
func (c *Collector) RecordBatch(stats BatchStats) {
	c.lastBatch = stats
	c.haveBatch = true
}

// Flush builds the window report and resets all counters for the next
// window.
func (c *Collector) Flush(windowEnd int32, simTime float64) WindowStats {
	ws := WindowStats{
		WindowEndTick:  windowEnd,
		SimTimeSec:     simTime,
		Bodies:         c.bodies,
		Ticks:          c.ticks,
		SkippedTicks:   c.skipped,
		OverflowTicks:  c.overflow,
		Samples:        c.samples,
		DroppedSamples: c.dropped,
	}
	if c.haveBatch {
		ws.HeightMean = c.lastBatch.HeightMean
		ws.HeightStd = c.lastBatch.HeightStd
		ws.HeightP10 = c.lastBatch.HeightP10
		ws.HeightP50 = c.lastBatch.HeightP50
		ws.HeightP90 = c.lastBatch.HeightP90
		ws.ResidualMean = c.lastBatch.ResidualMean
		ws.ResidualMax = c.lastBatch.ResidualMax
		ws.IterationsMean = c.lastBatch.IterationsMean
	}

	*c = Collector{}
	return ws
}
