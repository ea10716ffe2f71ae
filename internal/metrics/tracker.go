// Package metrics provides real-time metrics tracking for the engine.
package metrics

import (
	"math"
	"sync"
	"time"

	"github.com/intrinsictime/engine/internal/store"
)

// SymbolActivity tracks intrinsic-time activity for a single symbol.
type SymbolActivity struct {
	Symbol        string
	TickCount     int64
	DCUp          int64
	DCDown        int64
	OSUp          int64
	OSDown        int64
	Mode          int
	LastBid       int64
	LastAsk       int64
	Extreme       int64
	Reference     int64
	Coastline     float64 // sum of absolute overshoot lengths
	LastDeviation float64
	LastEventTime time.Time
	LastUpdate    time.Time
}

// EventTotal returns the total number of intrinsic events for the symbol.
func (a *SymbolActivity) EventTotal() int64 {
	return a.DCUp + a.DCDown + a.OSUp + a.OSDown
}

// Snapshot is a point-in-time view of metrics.
type Snapshot struct {
	TicksTotal        int64
	EventsTotal       int64
	EventsByType      map[string]int64
	TickRate          float64 // ticks per second
	Symbols           map[string]*SymbolActivity
	MostActive        []SymbolStats
	Uptime            time.Duration
	FeedStatus        string
	ChannelBufferUsed int
	ChannelBufferCap  int
}

// SymbolStats summarizes one symbol for activity ranking.
type SymbolStats struct {
	Symbol     string
	EventCount int64
	TickCount  int64
	Coastline  float64
	Mode       int
}

// Tracker provides thread-safe metrics tracking.
type Tracker struct {
	mu                sync.RWMutex
	ticksTotal        int64
	eventsTotal       int64
	eventsByType      map[string]int64
	symbols           map[string]*SymbolActivity
	startTime         time.Time
	tickTimestamps    []time.Time // for rate calculation
	feedStatus        string
	channelBufferUsed int
	channelBufferCap  int
}

// NewTracker creates a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		eventsByType:   make(map[string]int64),
		symbols:        make(map[string]*SymbolActivity),
		startTime:      time.Now(),
		tickTimestamps: make([]time.Time, 0, 1000),
		feedStatus:     "disconnected",
	}
}

// RecordTick counts a tick and updates the symbol's latest prices and mode.
func (m *Tracker) RecordTick(tick store.Tick, mode int, extreme, reference int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ticksTotal++
	now := time.Now()

	// Add to timestamps for rate calculation
	m.tickTimestamps = append(m.tickTimestamps, now)

	// Keep only last 60 seconds of timestamps
	cutoff := now.Add(-60 * time.Second)
	validIdx := 0
	for i, ts := range m.tickTimestamps {
		if ts.After(cutoff) {
			validIdx = i
			break
		}
	}
	if validIdx > 0 {
		m.tickTimestamps = m.tickTimestamps[validIdx:]
	}

	activity := m.activity(tick.Symbol)
	activity.TickCount++
	activity.LastBid = tick.Bid
	activity.LastAsk = tick.Ask
	activity.Mode = mode
	activity.Extreme = extreme
	activity.Reference = reference
	activity.LastUpdate = now
}

// RecordEvent counts an intrinsic event and extends the symbol's coastline.
func (m *Tracker) RecordEvent(event store.IntrinsicEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eventsTotal++
	m.eventsByType[store.EventName(event.Code)]++

	activity := m.activity(event.Symbol)
	switch event.Code {
	case 1:
		activity.DCUp++
	case -1:
		activity.DCDown++
	case 2:
		activity.OSUp++
	case -2:
		activity.OSDown++
	}
	activity.Coastline += math.Abs(event.OvershootLen)
	activity.LastDeviation = event.Deviation
	activity.LastEventTime = time.Now()
}

// activity returns the symbol's activity record, creating it if needed.
// Must be called with lock held.
func (m *Tracker) activity(symbol string) *SymbolActivity {
	activity, exists := m.symbols[symbol]
	if !exists {
		activity = &SymbolActivity{Symbol: symbol}
		m.symbols[symbol] = activity
	}
	return activity
}

// SetFeedStatus sets the market data feed status.
func (m *Tracker) SetFeedStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedStatus = status
}

// SetChannelBuffer sets the tick channel buffer usage.
func (m *Tracker) SetChannelBuffer(used, capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelBufferUsed = used
	m.channelBufferCap = capacity
}

// Snapshot returns a point-in-time snapshot of metrics.
func (m *Tracker) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Calculate tick rate (ticks per second over last 60s)
	tickRate := 0.0
	if len(m.tickTimestamps) > 0 {
		oldestTime := m.tickTimestamps[0]
		duration := time.Since(oldestTime).Seconds()
		if duration > 0 {
			tickRate = float64(len(m.tickTimestamps)) / duration
		}
	}

	// Copy event counters
	eventsCopy := make(map[string]int64)
	for k, v := range m.eventsByType {
		eventsCopy[k] = v
	}

	// Copy symbol activities
	symbolsCopy := make(map[string]*SymbolActivity)
	for k, v := range m.symbols {
		activityCopy := *v
		symbolsCopy[k] = &activityCopy
	}

	return Snapshot{
		TicksTotal:        m.ticksTotal,
		EventsTotal:       m.eventsTotal,
		EventsByType:      eventsCopy,
		TickRate:          tickRate,
		Symbols:           symbolsCopy,
		MostActive:        m.rankSymbols(),
		Uptime:            time.Since(m.startTime),
		FeedStatus:        m.feedStatus,
		ChannelBufferUsed: m.channelBufferUsed,
		ChannelBufferCap:  m.channelBufferCap,
	}
}

// rankSymbols summarizes symbols for activity ranking.
// Must be called with lock held.
func (m *Tracker) rankSymbols() []SymbolStats {
	stats := make([]SymbolStats, 0, len(m.symbols))

	for symbol, activity := range m.symbols {
		stats = append(stats, SymbolStats{
			Symbol:     symbol,
			EventCount: activity.EventTotal(),
			TickCount:  activity.TickCount,
			Coastline:  activity.Coastline,
			Mode:       activity.Mode,
		})
	}

	return stats
}

// Cleanup removes symbols with no recent updates from the tracker.
func (m *Tracker) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-60 * time.Minute)

	for symbol, activity := range m.symbols {
		if activity.LastUpdate.Before(cutoff) {
			delete(m.symbols, symbol)
		}
	}
}
