package ui

import (
	"fmt"
	"time"

	"github.com/intrinsictime/engine/internal/store"
	"github.com/rivo/tview"
)

// LiveTicksView displays a scrolling feed of incoming ticks.
type LiveTicksView struct {
	table      *tview.Table
	ticks      []store.Tick
	maxRows    int
	priceScale int32
}

// NewLiveTicksView creates a new live ticks view.
func NewLiveTicksView(priceScale int32) *LiveTicksView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Live Ticks ").SetBorder(true)

	// Set header
	headers := []string{"Time", "Symbol", "Bid", "Ask", "Spread"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		table.SetCell(0, col, cell)
	}

	return &LiveTicksView{
		table:      table,
		ticks:      make([]store.Tick, 0, 100),
		maxRows:    100,
		priceScale: priceScale,
	}
}

// Widget returns the tview primitive.
func (v *LiveTicksView) Widget() tview.Primitive {
	return v.table
}

// AddTick adds a new tick to the view.
func (v *LiveTicksView) AddTick(tick store.Tick) {
	// Add to front of ring buffer
	v.ticks = append([]store.Tick{tick}, v.ticks...)

	// Trim to max rows
	if len(v.ticks) > v.maxRows {
		v.ticks = v.ticks[:v.maxRows]
	}

	// Update display
	v.updateTable()
}

// Refresh redraws the table.
func (v *LiveTicksView) Refresh() {
	v.updateTable()
}

// updateTable updates the table with current ticks.
func (v *LiveTicksView) updateTable() {
	// Clear table (keep header)
	v.table.Clear()

	// Re-add header
	headers := []string{"Time", "Symbol", "Bid", "Ask", "Spread"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		v.table.SetCell(0, col, cell)
	}

	// Add ticks
	for i, tick := range v.ticks {
		row := i + 1

		timeStr := time.UnixMilli(tick.Time).Format("15:04:05")

		cells := []string{
			timeStr,
			tick.Symbol,
			store.FormatPrice(tick.Bid, v.priceScale),
			store.FormatPrice(tick.Ask, v.priceScale),
			store.FormatPrice(tick.Ask-tick.Bid, v.priceScale),
		}

		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetAlign(tview.AlignLeft)
			v.table.SetCell(row, col, cell)
		}
	}

	// Update title with count
	v.table.SetTitle(fmt.Sprintf(" Live Ticks (%d) ", len(v.ticks)))
}
