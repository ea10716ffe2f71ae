package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/intrinsictime/engine/internal/store"
	"github.com/rivo/tview"
)

// EventAlerterView displays recently confirmed intrinsic events.
type EventAlerterView struct {
	list       *tview.List
	events     []store.IntrinsicEvent
	maxItems   int
	priceScale int32
}

// NewEventAlerterView creates a new event alerter view.
func NewEventAlerterView(priceScale int32) *EventAlerterView {
	list := tview.NewList().
		ShowSecondaryText(true)

	list.SetTitle(" Intrinsic Events ").SetBorder(true)
	list.SetMainTextColor(tcell.ColorWhite)

	return &EventAlerterView{
		list:       list,
		events:     make([]store.IntrinsicEvent, 0, 50),
		maxItems:   50,
		priceScale: priceScale,
	}
}

// Widget returns the tview primitive.
func (v *EventAlerterView) Widget() tview.Primitive {
	return v.list
}

// AddEvent adds a new event to the alerts list.
func (v *EventAlerterView) AddEvent(event store.IntrinsicEvent) {
	// Add to front of list
	v.events = append([]store.IntrinsicEvent{event}, v.events...)

	// Trim to max items
	if len(v.events) > v.maxItems {
		v.events = v.events[:v.maxItems]
	}

	// Rebuild list
	v.rebuildList()
}

// Refresh redraws the list.
func (v *EventAlerterView) Refresh() {
	v.rebuildList()
}

// rebuildList rebuilds the entire list from events.
func (v *EventAlerterView) rebuildList() {
	v.list.Clear()

	if len(v.events) == 0 {
		v.list.AddItem("No intrinsic events yet", "", 0, nil)
		return
	}

	for _, event := range v.events {
		mainText, secondaryText := v.formatEvent(event)
		v.list.AddItem(mainText, secondaryText, 0, nil)
	}

	// Update title with count
	v.list.SetTitle(fmt.Sprintf(" Intrinsic Events (%d) ", len(v.events)))
}

// formatEvent formats an event for display.
func (v *EventAlerterView) formatEvent(event store.IntrinsicEvent) (string, string) {
	var icon string
	switch event.Code {
	case 1:
		icon = "[green]▲ DC[-]"
	case -1:
		icon = "[red]▼ DC[-]"
	case 2:
		icon = "[green]⇈ OS[-]"
	case -2:
		icon = "[red]⇊ OS[-]"
	default:
		icon = "?"
	}

	timeStr := time.UnixMilli(event.Time).Format("15:04:05")

	// Main text: Time + direction icon + symbol
	mainText := fmt.Sprintf("%s %s %s", timeStr, icon, event.Symbol)

	// Secondary text: confirming price, overshoot length, deviation
	secondaryText := fmt.Sprintf("price %s | os %.5f | dev %.6f",
		store.FormatPrice(event.Price, v.priceScale),
		event.OvershootLen,
		event.Deviation,
	)

	return mainText, secondaryText
}
