package telemetry

import (
	"log/slog"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseLifecycle)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseParticles)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseLifecycle]; !ok {
		t.Error("expected lifecycle phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseParticles]; !ok {
		t.Error("expected particles phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseTelemetry]; ok {
		t.Error("telemetry phase was never started but is tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseParticles)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseTelemetry)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseParticles)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct[PhaseTelemetry]
	slowPct := stats.PhasePct[PhaseParticles]
	if slowPct <= fastPct {
		t.Errorf("expected particles phase (%v%%) > telemetry phase (%v%%)", slowPct, fastPct)
	}

	row := stats.ToCSV(600)
	if row.WindowEnd != 600 || row.ParticlesPct != slowPct || row.TelemetryPct != fastPct {
		t.Errorf("ToCSV() = %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStats_LogValue(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 250 * time.Microsecond,
		PhasePct:        map[string]float64{PhaseParticles: 80},
	}

	v := s.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("kind = %v, want group", v.Kind())
	}
	got := map[string]slog.Value{}
	for _, a := range v.Group() {
		got[a.Key] = a.Value
	}
	if got["avg_tick_us"].Int64() != 250 {
		t.Errorf("avg_tick_us = %v, want 250", got["avg_tick_us"])
	}
	if got["particles_pct"].Float64() != 80 {
		t.Errorf("particles_pct = %v, want 80", got["particles_pct"])
	}
	if _, ok := got["telemetry_pct"]; !ok {
		t.Error("missing telemetry_pct")
	}
}
