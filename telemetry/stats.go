package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Pool occupancy at window end
	Emitters  int     `csv:"emitters"`
	Slots     int     `csv:"slots"`
	Alive     int     `csv:"alive"`
	Free      int     `csv:"free"`
	Occupancy float64 `csv:"occupancy"` // Alive / Slots

	// Particle activity during window
	Spawned   int     `csv:"spawned"`
	Reused    int     `csv:"reused"`
	Grown     int     `csv:"grown"`
	Expired   int     `csv:"expired"`
	Dropped   int     `csv:"dropped"`
	LimitHits int     `csv:"limit_hits"`
	ReuseRate float64 `csv:"reuse_rate"` // Reused / Spawned

	// Emitter lifecycle during window
	EmittersCreated int `csv:"emitters_created"`
	EmittersExpired int `csv:"emitters_expired"`
	Respawns        int `csv:"respawns"`
	Rebinds         int `csv:"rebinds"`

	// Remaining lifetime of live particles (sampled at window end)
	LifetimeMean float64 `csv:"lifetime_mean"`
	LifetimeP10  float64 `csv:"lifetime_p10"`
	LifetimeP50  float64 `csv:"lifetime_p50"`
	LifetimeP90  float64 `csv:"lifetime_p90"`

	// Speed of live particles (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation between closest ranks
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLifetimeStats calculates mean and percentiles from lifetime values.
func ComputeLifetimeStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeSpeedStats calculates the mean and sample standard deviation.
func ComputeSpeedStats(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("emitters", s.Emitters),
		slog.Int("slots", s.Slots),
		slog.Int("alive", s.Alive),
		slog.Int("free", s.Free),
		slog.Float64("occupancy", s.Occupancy),
		slog.Int("spawned", s.Spawned),
		slog.Int("reused", s.Reused),
		slog.Int("grown", s.Grown),
		slog.Int("expired", s.Expired),
		slog.Int("dropped", s.Dropped),
		slog.Int("limit_hits", s.LimitHits),
		slog.Float64("reuse_rate", s.ReuseRate),
		slog.Int("emitters_created", s.EmittersCreated),
		slog.Int("emitters_expired", s.EmittersExpired),
		slog.Int("respawns", s.Respawns),
		slog.Int("rebinds", s.Rebinds),
		slog.Float64("lifetime_mean", s.LifetimeMean),
		slog.Float64("lifetime_p10", s.LifetimeP10),
		slog.Float64("lifetime_p50", s.LifetimeP50),
		slog.Float64("lifetime_p90", s.LifetimeP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"emitters", s.Emitters,
		"slots", s.Slots,
		"alive", s.Alive,
		"free", s.Free,
		"occupancy", s.Occupancy,
		"spawned", s.Spawned,
		"reused", s.Reused,
		"grown", s.Grown,
		"expired", s.Expired,
		"dropped", s.Dropped,
		"limit_hits", s.LimitHits,
		"reuse_rate", s.ReuseRate,
		"emitters_created", s.EmittersCreated,
		"emitters_expired", s.EmittersExpired,
		"respawns", s.Respawns,
		"rebinds", s.Rebinds,
		"lifetime_mean", s.LifetimeMean,
		"lifetime_p50", s.LifetimeP50,
		"speed_mean", s.SpeedMean,
	)
}
