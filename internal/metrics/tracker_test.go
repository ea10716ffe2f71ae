package metrics

import (
	"testing"

	"github.com/intrinsictime/engine/internal/store"
)

func TestTrackerCountsTicksAndEvents(t *testing.T) {
	m := NewTracker()

	tick := store.Tick{Symbol: "BTCUSDT", Bid: 100, Ask: 101, Time: 1}
	m.RecordTick(tick, 1, 100, 100)
	m.RecordTick(tick, 1, 99, 100)

	m.RecordEvent(store.IntrinsicEvent{Symbol: "BTCUSDT", Code: -2, OvershootLen: -0.02, Deviation: 0.0001})
	m.RecordEvent(store.IntrinsicEvent{Symbol: "BTCUSDT", Code: 1, OvershootLen: 0.03, Deviation: 0.0004})

	snap := m.Snapshot()

	if snap.TicksTotal != 2 {
		t.Errorf("expected 2 ticks, got %d", snap.TicksTotal)
	}
	if snap.EventsTotal != 2 {
		t.Errorf("expected 2 events, got %d", snap.EventsTotal)
	}
	if snap.EventsByType[store.EventNameOSDown] != 1 || snap.EventsByType[store.EventNameDCUp] != 1 {
		t.Errorf("event counters wrong: %v", snap.EventsByType)
	}

	activity := snap.Symbols["BTCUSDT"]
	if activity == nil {
		t.Fatal("expected activity record for BTCUSDT")
	}
	if activity.OSDown != 1 || activity.DCUp != 1 {
		t.Errorf("per-symbol counters wrong: %+v", activity)
	}
	if activity.EventTotal() != 2 {
		t.Errorf("expected event total 2, got %d", activity.EventTotal())
	}

	// Coastline is direction-agnostic: |−0.02| + |0.03|.
	if activity.Coastline != 0.05 {
		t.Errorf("expected coastline 0.05, got %f", activity.Coastline)
	}
	if activity.LastDeviation != 0.0004 {
		t.Errorf("expected last deviation 0.0004, got %f", activity.LastDeviation)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewTracker()
	m.RecordTick(store.Tick{Symbol: "ETHUSDT", Bid: 10, Ask: 11}, -1, 10, 10)

	snap := m.Snapshot()
	snap.Symbols["ETHUSDT"].TickCount = 999
	snap.EventsByType["DC_UP"] = 999

	fresh := m.Snapshot()
	if fresh.Symbols["ETHUSDT"].TickCount != 1 {
		t.Error("snapshot mutation leaked into tracker state")
	}
	if fresh.EventsByType["DC_UP"] != 0 {
		t.Error("event map mutation leaked into tracker state")
	}
}

func TestMostActiveRanking(t *testing.T) {
	m := NewTracker()
	m.RecordEvent(store.IntrinsicEvent{Symbol: "A", Code: 1, OvershootLen: 0.01})
	m.RecordEvent(store.IntrinsicEvent{Symbol: "B", Code: 1, OvershootLen: 0.01})
	m.RecordEvent(store.IntrinsicEvent{Symbol: "B", Code: -1, OvershootLen: 0.01})

	snap := m.Snapshot()
	if len(snap.MostActive) != 2 {
		t.Fatalf("expected 2 ranked symbols, got %d", len(snap.MostActive))
	}

	counts := make(map[string]int64)
	for _, s := range snap.MostActive {
		counts[s.Symbol] = s.EventCount
	}
	if counts["A"] != 1 || counts["B"] != 2 {
		t.Errorf("ranking counts wrong: %v", counts)
	}
}
