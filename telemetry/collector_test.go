package telemetry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/simulation-tree/particle-systems/components"
	"github.com/simulation-tree/particle-systems/systems"
)

func TestCollectorWindowTicks(t *testing.T) {
	tests := []struct {
		window float64
		dt     float32
		want   int32
	}{
		{1.0, 0.1, 10},
		{0.01, 0.1, 1},
		{2.0, 0.5, 4},
		{1.0, 0.016666667, 60},
		{0.5, 0.3, 2},
	}
	for _, tt := range tests {
		c := NewCollector(tt.window, tt.dt)
		if got := c.WindowDurationTicks(); got != tt.want {
			t.Errorf("NewCollector(%v, %v) ticks = %d, want %d", tt.window, tt.dt, got, tt.want)
		}
	}

	c := NewCollector(1.0, 0.25)
	if c.ShouldFlush(3) {
		t.Error("ShouldFlush(3) = true before window end")
	}
	if !c.ShouldFlush(4) {
		t.Error("ShouldFlush(4) = false at window end")
	}
}

func TestSampleAddBuffer(t *testing.T) {
	buf := &components.ParticleBuffer{Particles: []components.Particle{
		{Lifetime: 1, Velocity: mgl32.Vec3{3, 4, 0}},
		{Free: true, Lifetime: 9},
		{Lifetime: 2, Velocity: mgl32.Vec3{0, 0, 1}},
	}}

	var s Sample
	s.AddBuffer(buf)
	s.AddBuffer(&components.ParticleBuffer{})

	if s.Emitters != 2 || s.Slots != 3 || s.Alive != 2 {
		t.Errorf("sample = %+v", s)
	}
	if len(s.Lifetimes) != 2 || s.Lifetimes[1] != 2 {
		t.Errorf("lifetimes = %v", s.Lifetimes)
	}
	if math.Abs(s.Speeds[0]-5) > 1e-6 {
		t.Errorf("speed = %v, want 5", s.Speeds[0])
	}

	s.Reset()
	if s.Emitters != 0 || len(s.Lifetimes) != 0 || len(s.Speeds) != 0 {
		t.Errorf("Reset left %+v", s)
	}
}

func TestCollectorFlushDiffsCounters(t *testing.T) {
	c := NewCollector(1.0, 0.5)

	c.Record(NewEmitterCreatedEvent(0, 1, "a"))
	c.Record(NewEmitterCreatedEvent(0, 2, "a"))
	c.Record(NewLimitHitEvent(1, systems.ErrSpawnLimit))

	sample := &Sample{Emitters: 2, Slots: 10, Alive: 5, Lifetimes: []float64{1, 2, 3, 4, 5}}
	first := c.Flush(2, systems.Counters{Spawned: 10, Reused: 4, Grown: 6, Expired: 5}, 2, sample)

	if first.WindowStartTick != 0 || first.WindowEndTick != 2 || first.SimTimeSec != 1.0 {
		t.Errorf("window = %d..%d at %v", first.WindowStartTick, first.WindowEndTick, first.SimTimeSec)
	}
	if first.Spawned != 10 || first.Reused != 4 || first.Grown != 6 || first.Expired != 5 {
		t.Errorf("activity = %+v", first)
	}
	if first.Free != 5 || first.Occupancy != 0.5 || first.ReuseRate != 0.4 {
		t.Errorf("occupancy = %v free = %d reuse = %v", first.Occupancy, first.Free, first.ReuseRate)
	}
	if first.EmittersCreated != 2 || first.Rebinds != 2 {
		t.Errorf("lifecycle = created %d rebinds %d", first.EmittersCreated, first.Rebinds)
	}
	if first.LifetimeMean != 3 || first.LifetimeP50 != 3 {
		t.Errorf("lifetime mean/p50 = %v/%v, want 3/3", first.LifetimeMean, first.LifetimeP50)
	}

	c.Record(NewEmitterExpiredEvent(3, 1, "a"))
	c.Record(NewEmitterRespawnedEvent(3, 3, 1, "a"))
	second := c.Flush(4, systems.Counters{Spawned: 13, Reused: 7, Grown: 6, Expired: 9, Dropped: 1, LimitHits: 1}, 3, &Sample{})

	if second.WindowStartTick != 2 {
		t.Errorf("second window starts at %d, want 2", second.WindowStartTick)
	}
	if second.Spawned != 3 || second.Reused != 3 || second.Grown != 0 || second.Expired != 4 {
		t.Errorf("second activity = %+v", second)
	}
	if second.Dropped != 1 || second.LimitHits != 1 {
		t.Errorf("second limits = dropped %d hits %d", second.Dropped, second.LimitHits)
	}
	if second.EmittersCreated != 0 || second.EmittersExpired != 1 || second.Respawns != 1 || second.Rebinds != 1 {
		t.Errorf("second lifecycle = %+v", second)
	}
	if second.Occupancy != 0 || second.LifetimeMean != 0 {
		t.Error("empty sample should produce zero occupancy and lifetime")
	}
}
