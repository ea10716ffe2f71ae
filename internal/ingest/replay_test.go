package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/intrinsictime/engine/internal/store"
)

func TestReplayerDeliversAllTicks(t *testing.T) {
	csv := "time_ms,symbol,bid,ask\n" +
		"1000,BTCUSDT,100.0,100.1\n" +
		"2000,BTCUSDT,99.5,99.6\n" +
		"3000,ETHUSDT,10.0,10.05\n"

	path := filepath.Join(t.TempDir(), "ticks.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tickChan := make(chan store.Tick, 10)
	r := NewReplayer(path, 2, 0, tickChan)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	close(tickChan)

	var ticks []store.Tick
	for tick := range tickChan {
		ticks = append(ticks, tick)
	}

	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ticks))
	}
	if ticks[0].Time != 1000 || ticks[0].Bid != 10000 || ticks[0].Ask != 10010 {
		t.Errorf("first tick wrong: %+v", ticks[0])
	}
	if ticks[2].Symbol != "ETHUSDT" {
		t.Errorf("expected ETHUSDT last, got %s", ticks[2].Symbol)
	}
}

func TestReplayerRejectsMalformedRows(t *testing.T) {
	csv := "1000,BTCUSDT,100.0,100.1\n" +
		"2000,BTCUSDT,broken,99.6\n"

	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tickChan := make(chan store.Tick, 10)
	r := NewReplayer(path, 2, 0, tickChan)

	if err := r.Start(context.Background()); err == nil {
		t.Error("expected error for malformed row after first tick")
	}
}

func TestReplayerStopsOnCancel(t *testing.T) {
	csv := "1000,BTCUSDT,100.0,100.1\n2000,BTCUSDT,99.5,99.6\n"

	path := filepath.Join(t.TempDir(), "cancel.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	// Unbuffered channel with no reader: Start must bail out on cancel
	// instead of blocking forever.
	tickChan := make(chan store.Tick)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReplayer(path, 2, 0, tickChan)
	if err := r.Start(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
