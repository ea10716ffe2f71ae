package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/rivo/tview"
)

// MostActiveView displays symbols ranked by intrinsic event activity.
type MostActiveView struct {
	table *tview.Table
}

// NewMostActiveView creates a new most active view.
func NewMostActiveView() *MostActiveView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Most Active ").SetBorder(true)

	// Set header
	headers := []string{"Symbol", "Events", "Coastline", "Ticks", "Regime"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		table.SetCell(0, col, cell)
	}

	return &MostActiveView{
		table: table,
	}
}

// Widget returns the tview primitive.
func (v *MostActiveView) Widget() tview.Primitive {
	return v.table
}

// Update refreshes the most active display.
func (v *MostActiveView) Update(snapshot metrics.Snapshot) {
	// Clear table (keep header)
	v.table.Clear()

	// Re-add header
	headers := []string{"Symbol", "Events", "Coastline", "Ticks", "Regime"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		v.table.SetCell(0, col, cell)
	}

	// Rank by intrinsic event count, coastline as tiebreaker
	ranked := snapshot.MostActive
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EventCount != ranked[j].EventCount {
			return ranked[i].EventCount > ranked[j].EventCount
		}
		return ranked[i].Coastline > ranked[j].Coastline
	})

	// Show top 10
	limit := 10
	if len(ranked) < limit {
		limit = len(ranked)
	}

	if limit == 0 {
		// No data yet
		cell := tview.NewTableCell("No data yet...").
			SetAlign(tview.AlignCenter).
			SetExpansion(1)
		v.table.SetCell(1, 0, cell)
		return
	}

	for i, stats := range ranked[:limit] {
		row := i + 1

		// Symbol
		cell := tview.NewTableCell(stats.Symbol).SetAlign(tview.AlignLeft)
		v.table.SetCell(row, 0, cell)

		// Event count
		cell = tview.NewTableCell(fmt.Sprintf("%d", stats.EventCount)).
			SetAlign(tview.AlignRight)
		v.table.SetCell(row, 1, cell)

		// Coastline
		cell = tview.NewTableCell(fmt.Sprintf("%.5f", stats.Coastline)).
			SetAlign(tview.AlignRight)
		v.table.SetCell(row, 2, cell)

		// Tick count
		cell = tview.NewTableCell(fmt.Sprintf("%d", stats.TickCount)).
			SetAlign(tview.AlignRight)
		v.table.SetCell(row, 3, cell)

		// Regime with direction color
		regimeColor := tcell.ColorRed
		if stats.Mode == -1 {
			regimeColor = tcell.ColorGreen
		}
		cell = tview.NewTableCell(formatRegime(stats.Mode)).
			SetAlign(tview.AlignLeft).
			SetTextColor(regimeColor)
		v.table.SetCell(row, 4, cell)
	}
}
