package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BatchStats summarizes the solved samples of a single tick's batch.
type BatchStats struct {
	HeightMean   float64
	HeightStd    float64
	HeightP10    float64
	HeightP50    float64
	HeightP90    float64
	ResidualMean float64
	ResidualMax  float64
	// IterationsMean is the mean solver iteration count per sample;
	// informational only, nothing downstream consumes it.
	IterationsMean float64
}

// Summarize computes distribution statistics over one solved batch. The
// three slices are the dispatcher's parallel output arrays for the tick.
func Summarize(heights, residuals []float32, iterations []uint8) BatchStats {
	n := len(heights)
	if n == 0 {
		return BatchStats{}
	}

	hs := make([]float64, n)
	for i, h := range heights {
		hs[i] = float64(h)
	}
	sort.Float64s(hs)

	bs := BatchStats{
		HeightMean: stat.Mean(hs, nil),
		HeightP10:  stat.Quantile(0.10, stat.Empirical, hs, nil),
		HeightP50:  stat.Quantile(0.50, stat.Empirical, hs, nil),
		HeightP90:  stat.Quantile(0.90, stat.Empirical, hs, nil),
	}
	if n > 1 {
		bs.HeightStd = stat.StdDev(hs, nil)
	}

	var resSum, resMax float64
	for _, r := range residuals {
		v := float64(r)
		resSum += v
		if v > resMax {
			resMax = v
		}
	}
	bs.ResidualMean = resSum / float64(n)
	bs.ResidualMax = resMax

	var iterSum int
	for _, it := range iterations {
		iterSum += int(it)
	}
	bs.IterationsMean = float64(iterSum) / float64(n)

	return bs
}

// WindowStats is one telemetry.csv row: pipeline counters for the window
// plus the batch distribution sampled at window end.
type WindowStats struct {
	WindowEndTick int32   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	Bodies         int   `csv:"bodies"`
	Ticks          int   `csv:"ticks"`
	SkippedTicks   int   `csv:"skipped_ticks"`
	OverflowTicks  int   `csv:"overflow_ticks"`
	Samples        int64 `csv:"samples"`
	DroppedSamples int64 `csv:"dropped_samples"`

	HeightMean     float64 `csv:"height_mean"`
	HeightStd      float64 `csv:"height_std"`
	HeightP10      float64 `csv:"height_p10"`
	HeightP50      float64 `csv:"height_p50"`
	HeightP90      float64 `csv:"height_p90"`
	ResidualMean   float64 `csv:"residual_mean"`
	ResidualMax    float64 `csv:"residual_max"`
	IterationsMean float64 `csv:"iterations_mean"`
}
