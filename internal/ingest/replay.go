package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/intrinsictime/engine/internal/store"
)

// Replayer feeds ticks from a CSV file into the tick channel, standing in
// for the live feed during research runs and end-to-end tests. Rows are
// `time_ms,symbol,bid,ask` with decimal prices; a header row is skipped.
// Unlike the live listener, the replayer blocks on the channel so no tick
// is ever dropped and runs stay deterministic.
type Replayer struct {
	path       string
	priceScale int32
	interval   time.Duration // delay between ticks; zero replays at full speed
	tickChan   chan<- store.Tick
}

// NewReplayer creates a CSV tick replayer.
func NewReplayer(path string, priceScale int, interval time.Duration, tickChan chan<- store.Tick) *Replayer {
	return &Replayer{
		path:       path,
		priceScale: int32(priceScale),
		interval:   interval,
		tickChan:   tickChan,
	}
}

// Start replays the file from the beginning and returns when it is
// exhausted or the context is cancelled.
func (r *Replayer) Start(ctx context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	slog.Info("replay_started", "file", r.path, "interval", r.interval)

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4

	var sent, skipped int
	for {
		select {
		case <-ctx.Done():
			slog.Info("replay_cancelled", "sent", sent)
			return ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("replay read failed after %d ticks: %w", sent, err)
		}

		tick, err := parseReplayRecord(record, r.priceScale)
		if err != nil {
			// A header row lands here on the first line.
			if sent == 0 && skipped == 0 {
				skipped++
				continue
			}
			return fmt.Errorf("bad replay row %v: %w", record, err)
		}

		select {
		case r.tickChan <- tick:
			sent++
		case <-ctx.Done():
			return ctx.Err()
		}

		if r.interval > 0 {
			select {
			case <-time.After(r.interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	slog.Info("replay_finished", "sent", sent)
	return nil
}

// parseReplayRecord converts one CSV row into a tick.
func parseReplayRecord(record []string, scale int32) (store.Tick, error) {
	if len(record) != 4 {
		return store.Tick{}, fmt.Errorf("expected 4 fields, got %d", len(record))
	}

	t, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return store.Tick{}, fmt.Errorf("bad time %q: %w", record[0], err)
	}

	symbol := record[1]
	if symbol == "" {
		return store.Tick{}, fmt.Errorf("empty symbol")
	}

	bid, err := store.ScalePrice(record[2], scale)
	if err != nil {
		return store.Tick{}, err
	}
	ask, err := store.ScalePrice(record[3], scale)
	if err != nil {
		return store.Tick{}, err
	}

	return store.Tick{Symbol: symbol, Bid: bid, Ask: ask, Time: t}, nil
}
