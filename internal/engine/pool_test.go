package engine

import (
	"context"
	"math"
	"testing"

	"github.com/intrinsictime/engine/internal/detector"
	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/intrinsictime/engine/internal/store"
)

func runPool(t *testing.T, workers int, ticks []store.Tick) []store.IntrinsicEvent {
	t.Helper()

	cfg := detector.Config{
		ThresholdUp:   10,
		ThresholdDown: 10,
		OSSizeUp:      15,
		OSSizeDown:    15,
		InitialMode:   1,
	}

	tickChan := make(chan store.Tick, len(ticks))
	eventChan := make(chan store.IntrinsicEvent, len(ticks))
	tracker := metrics.NewTracker()

	pool := NewPool(cfg, workers, eventChan, tracker)
	pool.Start(context.Background(), tickChan)

	for _, tick := range ticks {
		tickChan <- tick
	}
	close(tickChan)
	pool.Wait()
	close(eventChan)

	var events []store.IntrinsicEvent
	for ev := range eventChan {
		events = append(events, ev)
	}
	return events
}

func symTick(symbol string, price, t int64) store.Tick {
	return store.Tick{Symbol: symbol, Bid: price, Ask: price, Time: t}
}

func TestPoolDetectsEventsPerSymbol(t *testing.T) {
	// One symbol: seed 1000, drop through 985 (OS down), recover to 995 (DC up).
	ticks := []store.Tick{
		symTick("BTCUSDT", 1000, 0),
		symTick("BTCUSDT", 985, 1),
		symTick("BTCUSDT", 980, 2),
		symTick("BTCUSDT", 995, 3),
	}

	events := runPool(t, 1, ticks)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Code != -2 {
		t.Errorf("expected OS down first, got %d", events[0].Code)
	}
	if events[1].Code != 1 {
		t.Errorf("expected DC up second, got %d", events[1].Code)
	}
	if events[1].Reference != events[1].Extreme {
		t.Error("reference must equal extreme after an event")
	}
}

func TestPoolIsolatesSymbols(t *testing.T) {
	// Interleave two symbols; each must be detected independently.
	ticks := []store.Tick{
		symTick("AAA", 1000, 0),
		symTick("BBB", 500, 0),
		symTick("AAA", 985, 1), // OS down for AAA only
		symTick("BBB", 500, 1),
		symTick("AAA", 980, 2),
		symTick("BBB", 501, 2),
		symTick("AAA", 995, 3), // DC up for AAA only
	}

	events := runPool(t, 4, ticks)

	for _, ev := range events {
		if ev.Symbol != "AAA" {
			t.Errorf("unexpected event for %s (code %d)", ev.Symbol, ev.Code)
		}
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events for AAA, got %d", len(events))
	}
}

func TestPoolDropsZeroPriceSeedInRelativeMode(t *testing.T) {
	// Exchanges occasionally publish a zero bid/ask. In relative mode such
	// a tick must not seed a detector: a seed at zero would confirm a
	// spurious DC on the next valid tick and poison the overshoot length.
	cfg := detector.Config{
		ThresholdUp:   0.01,
		ThresholdDown: 0.01,
		OSSizeUp:      0.02,
		OSSizeDown:    0.02,
		InitialMode:   1,
		RelativeMoves: true,
	}

	ticks := []store.Tick{
		symTick("BTCUSDT", 0, 0),     // rejected, nothing seeded
		symTick("BTCUSDT", 10000, 1), // seeds
		symTick("BTCUSDT", 9900, 2),  // extreme improves, no event
		symTick("BTCUSDT", 10001, 3), // DC up from extreme 9900
	}

	tickChan := make(chan store.Tick, len(ticks))
	eventChan := make(chan store.IntrinsicEvent, len(ticks))
	pool := NewPool(cfg, 1, eventChan, metrics.NewTracker())
	pool.Start(context.Background(), tickChan)

	for _, tick := range ticks {
		tickChan <- tick
	}
	close(tickChan)
	pool.Wait()
	close(eventChan)

	var events []store.IntrinsicEvent
	for ev := range eventChan {
		events = append(events, ev)
	}

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %+v", len(events), events)
	}
	if events[0].Code != 1 {
		t.Errorf("expected DC up, got %d", events[0].Code)
	}
	if events[0].Price != 10001 {
		t.Errorf("event must come from the valid series, got price %d", events[0].Price)
	}
	if math.IsNaN(events[0].OvershootLen) || math.IsNaN(events[0].Deviation) {
		t.Errorf("overshoot length and deviation must be finite, got %f / %f",
			events[0].OvershootLen, events[0].Deviation)
	}
}

func TestPoolDeterministicAcrossWorkerCounts(t *testing.T) {
	ticks := []store.Tick{
		symTick("AAA", 1000, 0),
		symTick("AAA", 980, 1),
		symTick("AAA", 1000, 2),
		symTick("BBB", 2000, 0),
		symTick("BBB", 1970, 1),
		symTick("BBB", 2000, 2),
	}

	count := func(events []store.IntrinsicEvent) map[string]int {
		c := make(map[string]int)
		for _, ev := range events {
			c[ev.Symbol]++
		}
		return c
	}

	one := count(runPool(t, 1, ticks))
	many := count(runPool(t, 8, ticks))

	if one["AAA"] != many["AAA"] || one["BBB"] != many["BBB"] {
		t.Errorf("event counts depend on worker count: %v vs %v", one, many)
	}
}
