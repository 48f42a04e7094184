package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/oklog/ulid/v2"

	"github.com/simulation-tree/particle-systems/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Nil manager methods are no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager: %v", err)
	}
	if om.Dir() != "" || om.RunID() != "" {
		t.Error("nil manager reports a directory")
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	root := t.TempDir()
	om, err := NewOutputManager(root)
	if err != nil {
		t.Fatalf("NewOutputManager() error = %v", err)
	}

	if _, err := ulid.Parse(om.RunID()); err != nil {
		t.Errorf("RunID %q is not a ULID: %v", om.RunID(), err)
	}
	if om.Dir() != filepath.Join(root, om.RunID()) {
		t.Errorf("Dir() = %q, want run directory under %q", om.Dir(), root)
	}

	for i, s := range []WindowStats{
		{WindowEndTick: 60, Alive: 10, Spawned: 12},
		{WindowEndTick: 120, Alive: 8, Spawned: 3},
	} {
		if err := om.WriteTelemetry(s); err != nil {
			t.Fatalf("WriteTelemetry(%d) error = %v", i, err)
		}
	}
	events := []Event{
		NewEmitterCreatedEvent(0, 1, "sparks"),
		NewEmitterRespawnedEvent(300, 7, 1, "sparks"),
		NewLimitHitEvent(301, errors.New("emitter 7: spawn limit reached")),
	}
	if err := om.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSaturation, Tick: 60}); err != nil {
		t.Fatalf("WriteBookmark() error = %v", err)
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{PhaseParticles: 80}}, 60); err != nil {
		t.Fatalf("WritePerf() error = %v", err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(filepath.Join(om.Dir(), "telemetry.csv"))
	if err != nil {
		t.Fatalf("opening telemetry.csv: %v", err)
	}
	defer f.Close()

	var rows []WindowStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	if len(rows) != 2 || rows[1].WindowEndTick != 120 || rows[0].Spawned != 12 {
		t.Errorf("telemetry rows = %+v", rows)
	}

	data, err := os.ReadFile(filepath.Join(om.Dir(), "events.csv"))
	if err != nil {
		t.Fatalf("reading events.csv: %v", err)
	}
	text := string(data)
	if strings.Count(text, "\n") != 4 {
		t.Errorf("events.csv should have a header and 3 rows:\n%s", text)
	}
	for _, want := range []string{"emitter_created", "emitter_respawned", "limit_hit"} {
		if !strings.Contains(text, want) {
			t.Errorf("events.csv missing %q:\n%s", want, text)
		}
	}

	if _, err := config.Load(filepath.Join(om.Dir(), "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
