// Package store provides the shared data models of the engine.
package store

// Tick represents a single bid/ask price observation for one instrument.
type Tick struct {
	// Symbol is the instrument identifier (e.g. "BTCUSDT")
	Symbol string

	// Bid is the best bid price as a scaled integer (see PriceScale in config).
	// Scaled integers keep ordering comparisons exact; no float rounding.
	Bid int64

	// Ask is the best ask price as a scaled integer
	Ask int64

	// Time is the observation time in Unix milliseconds.
	// Ticks for one symbol must arrive in non-decreasing Time order.
	Time int64
}

// Event names for detector event codes
const (
	EventNameDCUp   = "DC_UP"
	EventNameDCDown = "DC_DOWN"
	EventNameOSUp   = "OS_UP"
	EventNameOSDown = "OS_DOWN"
)

// EventName maps a detector event code to its display name.
func EventName(code int) string {
	switch code {
	case 1:
		return EventNameDCUp
	case -1:
		return EventNameDCDown
	case 2:
		return EventNameOSUp
	case -2:
		return EventNameOSDown
	}
	return "NONE"
}

// IntrinsicEvent represents a confirmed DC or OS event for one symbol.
type IntrinsicEvent struct {
	// Symbol is the instrument the event was detected on
	Symbol string

	// Code is the detector event code: +1/-1 for DC up/down, +2/-2 for OS up/down
	Code int

	// Price is the scaled price that confirmed the event
	Price int64

	// Extreme is the detector's local extreme right after the event
	Extreme int64

	// Reference is the overshoot anchor right after the event (equals Extreme)
	Reference int64

	// OvershootLen is the signed length of the most recently completed
	// overshoot phase (log-ratio or difference, per detector mode)
	OvershootLen float64

	// Deviation is the squared deviation of the overshoot length from the
	// active DC threshold at event time
	Deviation float64

	// Time is the event time in Unix milliseconds
	Time int64
}

// Upward reports whether the event points in the upward direction.
func (e IntrinsicEvent) Upward() bool {
	return e.Code > 0
}

// IsDC reports whether the event is a directional change (vs. an overshoot).
func (e IntrinsicEvent) IsDC() bool {
	return e.Code == 1 || e.Code == -1
}
