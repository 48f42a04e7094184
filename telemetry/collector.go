package telemetry

import (
	"math"

	"github.com/simulation-tree/particle-systems/components"
	"github.com/simulation-tree/particle-systems/systems"
)

// Sample holds pool measurements taken at a window boundary.
type Sample struct {
	Emitters  int
	Slots     int
	Alive     int
	Lifetimes []float64
	Speeds    []float64
}

// AddBuffer accumulates one emitter's particle buffer into the sample.
func (s *Sample) AddBuffer(buf *components.ParticleBuffer) {
	s.Emitters++
	s.Slots += buf.Len()
	for i := range buf.Particles {
		p := &buf.Particles[i]
		if p.Free {
			continue
		}
		s.Alive++
		s.Lifetimes = append(s.Lifetimes, float64(p.Lifetime))
		s.Speeds = append(s.Speeds, float64(p.Velocity.Len()))
	}
}

// Reset clears the sample, keeping allocated slices.
func (s *Sample) Reset() {
	s.Emitters, s.Slots, s.Alive = 0, 0, 0
	s.Lifetimes = s.Lifetimes[:0]
	s.Speeds = s.Speeds[:0]
}

// Collector accumulates events within time windows and produces WindowStats.
// Particle activity is taken as the difference between cumulative
// systems.Counters at consecutive flushes.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32
	lastCounters    systems.Counters
	lastRebinds     int

	// Event counters for current window
	emittersCreated int
	emittersExpired int
	respawns        int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts a lifecycle event toward the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventEmitterCreated:
		c.emittersCreated++
	case EventEmitterExpired:
		c.emittersExpired++
	case EventEmitterRespawned:
		c.respawns++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// counters and rebinds are the cumulative values reported by the particle
// system; sample describes the pool at currentTick.
func (c *Collector) Flush(currentTick int32, counters systems.Counters, rebinds int, sample *Sample) WindowStats {
	delta := func(now, before int64) int { return int(now - before) }

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Emitters: sample.Emitters,
		Slots:    sample.Slots,
		Alive:    sample.Alive,
		Free:     sample.Slots - sample.Alive,

		Spawned:   delta(counters.Spawned, c.lastCounters.Spawned),
		Reused:    delta(counters.Reused, c.lastCounters.Reused),
		Grown:     delta(counters.Grown, c.lastCounters.Grown),
		Expired:   delta(counters.Expired, c.lastCounters.Expired),
		Dropped:   delta(counters.Dropped, c.lastCounters.Dropped),
		LimitHits: delta(counters.LimitHits, c.lastCounters.LimitHits),

		EmittersCreated: c.emittersCreated,
		EmittersExpired: c.emittersExpired,
		Respawns:        c.respawns,
		Rebinds:         rebinds - c.lastRebinds,
	}

	if stats.Slots > 0 {
		stats.Occupancy = float64(stats.Alive) / float64(stats.Slots)
	}
	if stats.Spawned > 0 {
		stats.ReuseRate = float64(stats.Reused) / float64(stats.Spawned)
	}

	stats.LifetimeMean, stats.LifetimeP10, stats.LifetimeP50, stats.LifetimeP90 = ComputeLifetimeStats(sample.Lifetimes)
	stats.SpeedMean, stats.SpeedStd = ComputeSpeedStats(sample.Speeds)

	// Reset for next window
	c.windowStartTick = currentTick
	c.lastCounters = counters
	c.lastRebinds = rebinds
	c.emittersCreated = 0
	c.emittersExpired = 0
	c.respawns = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
