package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSpawnSurge   BookmarkType = "spawn_surge"
	BookmarkSaturation   BookmarkType = "saturation"
	BookmarkPoolCollapse BookmarkType = "pool_collapse"
	BookmarkSteadyState  BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the particle pools.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentAlivePeak    int  // peak alive count since the last collapse
	saturated          bool // previous window dropped spawns
	steadyWindowsCount int  // consecutive windows with a stable alive count
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkSaturation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkSpawnSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPoolCollapse(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSteadyState(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.Alive > bd.recentAlivePeak {
		bd.recentAlivePeak = stats.Alive
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

// checkSpawnSurge fires when spawns exceed twice the rolling average.
func (bd *BookmarkDetector) checkSpawnSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Spawned
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Spawned) > avg*2.0 && stats.Spawned >= 10 {
		return &Bookmark{
			Type:        BookmarkSpawnSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Spawned %d is %.1fx average (%.1f)", stats.Spawned, float64(stats.Spawned)/avg, avg),
		}
	}
	return nil
}

// checkSaturation fires on the first window that drops spawns.
func (bd *BookmarkDetector) checkSaturation(stats WindowStats) *Bookmark {
	was := bd.saturated
	bd.saturated = stats.Dropped > 0
	if !bd.saturated || was {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSaturation,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Dropped %d spawns with %d slots across %d emitters", stats.Dropped, stats.Slots, stats.Emitters),
	}
}

// checkPoolCollapse fires when the alive count falls by more than half from its peak.
func (bd *BookmarkDetector) checkPoolCollapse(stats WindowStats) *Bookmark {
	if bd.recentAlivePeak < 20 {
		return nil
	}

	drop := 1.0 - float64(stats.Alive)/float64(bd.recentAlivePeak)
	if drop <= 0.5 {
		return nil
	}

	oldPeak := bd.recentAlivePeak
	bd.recentAlivePeak = stats.Alive
	return &Bookmark{
		Type:        BookmarkPoolCollapse,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Alive particles fell %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Alive),
	}
}

// checkSteadyState fires once after five consecutive windows whose alive
// count has a coefficient of variation below 0.2 over the last four windows.
func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	if stats.Alive == 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	alive := make([]float64, 0, 4)
	for _, h := range history[len(history)-4:] {
		alive = append(alive, float64(h.Alive))
	}
	mean, variance := stat.MeanVariance(alive, nil)

	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady pool with %d alive particles over 5+ windows", stats.Alive),
		}
	}
	return nil
}
