// Package engine routes ticks onto a pool of workers, one detector per
// symbol, and publishes the resulting intrinsic events.
package engine

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/intrinsictime/engine/internal/detector"
	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/intrinsictime/engine/internal/store"
)

// WorkerQueueBuffer is the size of each worker's tick queue.
const WorkerQueueBuffer = 256

// Pool owns the per-symbol detectors. Ticks are partitioned by symbol hash,
// so all ticks of one symbol land on the same worker and each detector is
// only ever fed by a single goroutine. Sharing a plain worker pool over one
// channel would interleave a symbol's ticks across workers and break the
// detector's ordering contract.
type Pool struct {
	cfg       detector.Config
	tracker   *metrics.Tracker
	eventChan chan<- store.IntrinsicEvent
	workers   []chan store.Tick
	wg        sync.WaitGroup
}

// NewPool creates a detector pool with the given number of workers.
func NewPool(cfg detector.Config, workerCount int, eventChan chan<- store.IntrinsicEvent, tracker *metrics.Tracker) *Pool {
	return &Pool{
		cfg:       cfg,
		tracker:   tracker,
		eventChan: eventChan,
		workers:   make([]chan store.Tick, workerCount),
	}
}

// Start launches the workers and the dispatcher. The pool runs until the
// context is cancelled or the tick channel is closed; Wait blocks until all
// queued ticks are processed.
func (p *Pool) Start(ctx context.Context, tickChan <-chan store.Tick) {
	for i := range p.workers {
		p.workers[i] = make(chan store.Tick, WorkerQueueBuffer)
		p.wg.Add(1)
		go p.worker(ctx, i, p.workers[i])
	}

	p.wg.Add(1)
	go p.dispatch(ctx, tickChan)
}

// Wait blocks until the dispatcher and all workers have finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// dispatch routes ticks to workers by symbol hash.
func (p *Pool) dispatch(ctx context.Context, tickChan <-chan store.Tick) {
	defer p.wg.Done()
	defer func() {
		for _, w := range p.workers {
			close(w)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-tickChan:
			if !ok {
				return
			}
			w := p.workers[p.partition(tick.Symbol)]
			select {
			case w <- tick:
			case <-ctx.Done():
				return
			}
		}
	}
}

// partition maps a symbol to a worker index.
func (p *Pool) partition(symbol string) int {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return int(h.Sum32() % uint32(len(p.workers)))
}

// worker feeds its symbols' detectors and publishes non-zero events.
func (p *Pool) worker(ctx context.Context, id int, ticks <-chan store.Tick) {
	defer p.wg.Done()

	slog.Debug("detector_worker_started", "id", id)
	defer slog.Debug("detector_worker_stopped", "id", id)

	detectors := make(map[string]*detector.DcOS)

	for tick := range ticks {
		d, exists := detectors[tick.Symbol]
		if !exists {
			d = detector.NewDcOS(p.cfg)
			detectors[tick.Symbol] = d
		}

		// The first accepted tick for a symbol seeds its detector and
		// returns no event; a rejected tick leaves it unseeded so the
		// next valid tick seeds instead.
		event, err := d.Observe(tick)
		if err != nil {
			slog.Warn("tick_rejected", "symbol", tick.Symbol, "error", err)
			continue
		}

		p.tracker.RecordTick(tick, d.Mode(), d.Extreme(), d.Reference())

		if event == detector.EventNone {
			continue
		}

		// After any event reference equals extreme equals the event price.
		record := store.IntrinsicEvent{
			Symbol:       tick.Symbol,
			Code:         int(event),
			Price:        d.Extreme(),
			Extreme:      d.Extreme(),
			Reference:    d.Reference(),
			OvershootLen: d.OvershootLength(),
			Deviation:    d.Deviation(),
			Time:         tick.Time,
		}

		p.tracker.RecordEvent(record)

		select {
		case p.eventChan <- record:
		case <-ctx.Done():
			return
		}
	}
}
