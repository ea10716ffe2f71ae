package ui

import (
	"fmt"
	"sort"

	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/intrinsictime/engine/internal/store"
	"github.com/rivo/tview"
)

// SymbolOverviewView displays tracked symbols and their detector state.
type SymbolOverviewView struct {
	table      *tview.Table
	priceScale int32
}

// NewSymbolOverviewView creates a new symbol overview view.
func NewSymbolOverviewView(priceScale int32) *SymbolOverviewView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Symbol Overview ").SetBorder(true)

	// Set header
	headers := []string{"Symbol", "Regime", "Bid", "Extreme", "Reference", "Ticks", "Updated"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false).
			SetExpansion(1)
		table.SetCell(0, col, cell)
	}

	return &SymbolOverviewView{
		table:      table,
		priceScale: priceScale,
	}
}

// Widget returns the tview primitive.
func (v *SymbolOverviewView) Widget() tview.Primitive {
	return v.table
}

// Update refreshes the view with new metrics data.
func (v *SymbolOverviewView) Update(snapshot metrics.Snapshot) {
	// Keep header row, clear data rows
	v.table.Clear()

	// Re-add header
	headers := []string{"Symbol", "Regime", "Bid", "Extreme", "Reference", "Ticks", "Updated"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		v.table.SetCell(0, col, cell)
	}

	// Sort symbols by tick count (most active first)
	symbols := make([]*metrics.SymbolActivity, 0, len(snapshot.Symbols))
	for _, activity := range snapshot.Symbols {
		symbols = append(symbols, activity)
	}

	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].TickCount > symbols[j].TickCount
	})

	// Show top 10 symbols
	limit := 10
	if len(symbols) < limit {
		limit = len(symbols)
	}

	for i, activity := range symbols[:limit] {
		row := i + 1

		cells := []string{
			activity.Symbol,
			formatRegime(activity.Mode),
			store.FormatPrice(activity.LastBid, v.priceScale),
			store.FormatPrice(activity.Extreme, v.priceScale),
			store.FormatPrice(activity.Reference, v.priceScale),
			fmt.Sprintf("%d", activity.TickCount),
			formatTimeAgo(activity.LastUpdate),
		}

		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetAlign(tview.AlignLeft).
				SetExpansion(1)
			v.table.SetCell(row, col, cell)
		}
	}

	// Update title with total count
	v.table.SetTitle(fmt.Sprintf(" Symbol Overview (%d tracked) ", len(snapshot.Symbols)))
}

// formatRegime renders the detector mode as the trend being watched.
func formatRegime(mode int) string {
	switch mode {
	case 1:
		return "watch down"
	case -1:
		return "watch up"
	}
	return "?"
}
