package telemetry

import "testing"

func countBookmarks(bookmarks []Bookmark, typ BookmarkType) int {
	n := 0
	for _, bm := range bookmarks {
		if bm.Type == typ {
			n++
		}
	}
	return n
}

func TestBookmarkDetector_SpawnSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		if got := bd.Check(WindowStats{WindowEndTick: int32(i * 60), Spawned: 10}); countBookmarks(got, BookmarkSpawnSurge) != 0 {
			t.Fatalf("window %d: unexpected spawn_surge", i)
		}
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Spawned: 30})
	if countBookmarks(bookmarks, BookmarkSpawnSurge) != 1 {
		t.Errorf("expected spawn_surge bookmark, got %+v", bookmarks)
	}
}

func TestBookmarkDetector_Saturation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	steps := []struct {
		dropped int
		want    int
	}{
		{0, 0},
		{3, 1},
		{5, 0}, // still saturated
		{0, 0},
		{1, 1},
	}

	for i, s := range steps {
		got := countBookmarks(bd.Check(WindowStats{WindowEndTick: int32(i * 60), Dropped: s.dropped}), BookmarkSaturation)
		if got != s.want {
			t.Errorf("window %d (dropped %d): saturation bookmarks = %d, want %d", i, s.dropped, got, s.want)
		}
	}
}

func TestBookmarkDetector_PoolCollapse(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Alive: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Alive: 40})
	if countBookmarks(bookmarks, BookmarkPoolCollapse) != 1 {
		t.Fatalf("expected pool_collapse bookmark, got %+v", bookmarks)
	}

	// Peak resets after triggering.
	bookmarks = bd.Check(WindowStats{WindowEndTick: 360, Alive: 35})
	if countBookmarks(bookmarks, BookmarkPoolCollapse) != 0 {
		t.Error("pool_collapse fired twice for the same drop")
	}
}

func TestBookmarkDetector_SteadyStateFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	total := 0
	firstTick := int32(-1)
	for i := 0; i < 15; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 60), Alive: 50})
		if n := countBookmarks(bookmarks, BookmarkSteadyState); n > 0 {
			total += n
			if firstTick < 0 {
				firstTick = int32(i * 60)
			}
		}
	}

	if total != 1 {
		t.Errorf("steady_state bookmarks = %d, want 1", total)
	}
	if firstTick != 480 {
		t.Errorf("steady_state fired at tick %d, want 480", firstTick)
	}
}
