package game

import "log/slog"

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.sampleBuffers()
	stats := g.collector.Flush(g.tick, g.particles.Counters(), g.particles.States().Rebinds(), &g.sample)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		g.writeEvents()
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// sampleBuffers measures every particle buffer into g.sample.
func (g *Game) sampleBuffers() {
	g.sample.Reset()
	query := g.bufferFilter.Query()
	for query.Next() {
		g.sample.AddBuffer(query.Get())
	}
}

// writeEvents flushes buffered lifecycle events to events.csv.
func (g *Game) writeEvents() {
	if len(g.events) == 0 {
		return
	}
	if err := g.outputManager.WriteEvents(g.events); err != nil {
		slog.Error("failed to write events", "error", err)
	}
	g.events = g.events[:0]
}
