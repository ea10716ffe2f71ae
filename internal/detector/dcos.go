// Package detector implements the intrinsic event detector: it consumes
// bid/ask ticks one at a time and reports Directional-Change (DC) and
// Overshoot (OS) intrinsic events, re-sampling a price series by price
// movement instead of clock time.
package detector

import (
	"errors"
	"math"

	"github.com/intrinsictime/engine/internal/store"
)

// Event is the code returned by Observe for a single tick.
type Event int

// Event codes. DC events flip the detector's mode; OS events do not.
const (
	EventOSDown Event = -2
	EventDCDown Event = -1
	EventNone   Event = 0
	EventDCUp   Event = 1
	EventOSUp   Event = 2
)

// ErrNonPositivePrice is returned in relative mode when a tick carries a
// zero or negative price, which has no log-ratio representation.
var ErrNonPositivePrice = errors.New("detector: non-positive price in relative mode")

// Config holds the construction parameters of a detector.
// Thresholds and OS sizes are fractional in relative mode (1% == 0.01) and
// scaled price units in absolute mode. Non-positive values are not rejected;
// they make every qualifying tick an event, which is the caller's problem.
type Config struct {
	ThresholdUp   float64
	ThresholdDown float64
	OSSizeUp      float64
	OSSizeDown    float64
	InitialMode   int // +1 to watch for a downward trend, -1 for an upward one
	RelativeMoves bool
}

// DcOS is the intrinsic event state machine for one price series.
//
// It tracks a running local extreme, a reference anchor for overshoot
// measurement, the current regime (mode), the two most recent DC prices and
// the timestamps of the intrinsic-time tipping points. A DcOS instance must
// be fed by exactly one goroutine; independent instances share nothing.
type DcOS struct {
	thresholdUp   float64
	thresholdDown float64
	osSizeUp      float64
	osSizeDown    float64
	mode          int // +1 or -1
	initialized   bool
	relativeMoves bool
	move          moveFunc

	extreme       int64
	prevExtreme   int64
	reference     int64 // overshoot anchor, re-set on every DC/OS event
	latestDCPrice int64
	prevDCPrice   int64
	osLength      float64 // signed length of the last completed overshoot phase

	// Tipping point times (Unix milliseconds), with one-step-lagged copies
	// so callers can compute durations between consecutive same-kind events.
	tExtreme int64
	tDC      int64
	tOS      int64 // time of the extreme that ended the last overshoot phase
	tOSEvent int64 // time of the latest OS event
	tPrevDC  int64
	tPrevOS  int64
}

// NewDcOS creates an unseeded detector. The first observed tick only seeds
// state and emits no event.
func NewDcOS(cfg Config) *DcOS {
	d := &DcOS{
		thresholdUp:   cfg.ThresholdUp,
		thresholdDown: cfg.ThresholdDown,
		osSizeUp:      cfg.OSSizeUp,
		osSizeDown:    cfg.OSSizeDown,
		mode:          cfg.InitialMode,
		relativeMoves: cfg.RelativeMoves,
		move:          absoluteMove,
	}
	if cfg.RelativeMoves {
		d.move = relativeMove
	}
	return d
}

// NewSeededDcOS creates a detector pre-seeded with an initial tick, so the
// first call to Observe already evaluates transitions. The seed tick is held
// to the same price guard as Observe: in relative mode a non-positive bid or
// ask returns ErrNonPositivePrice instead of seeding a state no log-ratio
// can be taken from.
func NewSeededDcOS(cfg Config, tick store.Tick) (*DcOS, error) {
	d := NewDcOS(cfg)
	if d.relativeMoves && (tick.Bid <= 0 || tick.Ask <= 0) {
		return nil, ErrNonPositivePrice
	}
	d.seed(tick)
	return d, nil
}

// seed initializes all price fields from the tick's traded side and all
// timestamps from the tick's time.
func (d *DcOS) seed(tick store.Tick) {
	p := tick.Bid
	if d.mode == 1 {
		p = tick.Ask
	}
	d.extreme = p
	d.prevExtreme = p
	d.reference = p
	d.latestDCPrice = p
	d.prevDCPrice = p
	d.tExtreme = tick.Time
	d.tDC = tick.Time
	d.tOS = tick.Time
	d.tOSEvent = tick.Time
	d.tPrevDC = tick.Time
	d.tPrevOS = tick.Time
	d.initialized = true
}

// Observe feeds one tick into the state machine and returns the resulting
// event code. Ticks must arrive in non-decreasing time order; the detector
// does not reorder or validate timestamps. At most one event is emitted per
// tick, and the extreme/OS branch always wins over the DC branch.
func (d *DcOS) Observe(tick store.Tick) (Event, error) {
	if d.relativeMoves && (tick.Bid <= 0 || tick.Ask <= 0) {
		return EventNone, ErrNonPositivePrice
	}

	if !d.initialized {
		d.seed(tick)
		return EventNone, nil
	}

	if d.mode == 1 {
		// Watching a downtrend: extreme tracks the falling ask.
		if tick.Ask < d.extreme {
			d.extreme = tick.Ask
			d.tExtreme = tick.Time
			if -d.move(d.extreme, d.reference) >= d.osSizeDown {
				d.reference = d.extreme
				d.tOSEvent = tick.Time
				return EventOSDown, nil
			}
			return EventNone, nil
		}
		if d.move(tick.Bid, d.extreme) >= d.thresholdUp {
			d.osLength = -d.move(d.extreme, d.latestDCPrice)
			d.confirmDC(tick.Bid, tick.Time)
			return EventDCUp, nil
		}
		return EventNone, nil
	}

	// mode == -1, watching an uptrend: extreme tracks the rising bid.
	if tick.Bid > d.extreme {
		d.extreme = tick.Bid
		d.tExtreme = tick.Time
		if d.move(d.extreme, d.reference) >= d.osSizeUp {
			d.reference = d.extreme
			d.tOSEvent = tick.Time
			return EventOSUp, nil
		}
		return EventNone, nil
	}
	if -d.move(tick.Ask, d.extreme) >= d.thresholdDown {
		d.osLength = d.move(d.extreme, d.latestDCPrice)
		d.confirmDC(tick.Ask, tick.Time)
		return EventDCDown, nil
	}
	return EventNone, nil
}

// confirmDC shifts the price and timestamp history one step, re-anchors
// extreme and reference on the confirming price and flips the mode.
func (d *DcOS) confirmDC(price, t int64) {
	d.tPrevOS = d.tOS
	d.tPrevDC = d.tDC
	d.tOS = d.tExtreme
	d.tDC = t
	d.tExtreme = t
	d.prevDCPrice = d.latestDCPrice
	d.latestDCPrice = price
	d.prevExtreme = d.extreme
	d.extreme = price
	d.reference = price
	d.mode *= -1
}

// Deviation returns the squared difference between the length of the last
// completed overshoot phase and the current mode's DC threshold, per the
// intrinsic-time variability definition in "Bridging the gap between
// physical and intrinsic time". Note the threshold is the one active now,
// not the one active when the overshoot was recorded.
func (d *DcOS) Deviation() float64 {
	threshold := d.thresholdDown
	if d.mode == 1 {
		threshold = d.thresholdUp
	}
	return math.Pow(d.osLength-threshold, 2)
}

// OvershootLength returns the signed length of the last completed
// overshoot phase.
func (d *DcOS) OvershootLength() float64 { return d.osLength }

// Mode returns the current regime: +1 while watching for a downward trend,
// -1 while watching for an upward one.
func (d *DcOS) Mode() int { return d.mode }

// Initialized reports whether the first tick has been consumed.
func (d *DcOS) Initialized() bool { return d.initialized }

// RelativeMoves reports whether moves are computed as log ratios.
func (d *DcOS) RelativeMoves() bool { return d.relativeMoves }

// Extreme returns the running local extreme price.
func (d *DcOS) Extreme() int64 { return d.extreme }

// PrevExtreme returns the extreme recorded at the previous DC event.
func (d *DcOS) PrevExtreme() int64 { return d.prevExtreme }

// Reference returns the anchor price the next overshoot is measured from.
func (d *DcOS) Reference() int64 { return d.reference }

// LatestDCPrice returns the price at the most recent DC event.
func (d *DcOS) LatestDCPrice() int64 { return d.latestDCPrice }

// PrevDCPrice returns the price at the DC event before the latest one.
func (d *DcOS) PrevDCPrice() int64 { return d.prevDCPrice }

// ThresholdUp returns the upward DC trigger size.
func (d *DcOS) ThresholdUp() float64 { return d.thresholdUp }

// ThresholdDown returns the downward DC trigger size.
func (d *DcOS) ThresholdDown() float64 { return d.thresholdDown }

// OSSizeUp returns the upward overshoot trigger size.
func (d *DcOS) OSSizeUp() float64 { return d.osSizeUp }

// OSSizeDown returns the downward overshoot trigger size.
func (d *DcOS) OSSizeDown() float64 { return d.osSizeDown }

// TimeExtreme returns the time of the current local extreme.
func (d *DcOS) TimeExtreme() int64 { return d.tExtreme }

// TimeDC returns the time of the latest DC event.
func (d *DcOS) TimeDC() int64 { return d.tDC }

// TimeOS returns the time of the extreme that ended the last overshoot phase.
func (d *DcOS) TimeOS() int64 { return d.tOS }

// TimeOSEvent returns the time of the latest OS event.
func (d *DcOS) TimeOSEvent() int64 { return d.tOSEvent }

// TimePrevDC returns the time of the DC event before the latest one.
func (d *DcOS) TimePrevDC() int64 { return d.tPrevDC }

// TimePrevOS returns the lagged copy of TimeOS from before the latest DC.
func (d *DcOS) TimePrevOS() int64 { return d.tPrevOS }

// The setters below exist for re-seeding a detector from persisted state and
// for exercising specific transitions in tests. They bypass the transition
// logic entirely; a caller mixing them with Observe owns the consistency of
// the resulting state.

// SetExtreme overrides the running local extreme.
func (d *DcOS) SetExtreme(extreme int64) { d.extreme = extreme }

// SetReference overrides the overshoot anchor.
func (d *DcOS) SetReference(reference int64) { d.reference = reference }

// SetMode overrides the current regime.
func (d *DcOS) SetMode(mode int) { d.mode = mode }

// SetInitialized overrides the initialization flag. Setting it false makes
// the next tick re-seed all state.
func (d *DcOS) SetInitialized(initialized bool) { d.initialized = initialized }

// SetThresholdUp overrides the upward DC trigger size.
func (d *DcOS) SetThresholdUp(threshold float64) { d.thresholdUp = threshold }

// SetThresholdDown overrides the downward DC trigger size.
func (d *DcOS) SetThresholdDown(threshold float64) { d.thresholdDown = threshold }

// SetOSSizeUp overrides the upward overshoot trigger size.
func (d *DcOS) SetOSSizeUp(size float64) { d.osSizeUp = size }

// SetOSSizeDown overrides the downward overshoot trigger size.
func (d *DcOS) SetOSSizeDown(size float64) { d.osSizeDown = size }
