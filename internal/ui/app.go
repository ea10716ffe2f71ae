// Package ui provides terminal user interface components.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/intrinsictime/engine/internal/store"
	"github.com/rivo/tview"
)

// App is the main TUI application.
type App struct {
	app    *tview.Application
	layout *tview.Flex

	// Views
	symbolOverview *SymbolOverviewView
	eventAlerter   *EventAlerterView
	liveTicks      *LiveTicksView
	statsDashboard *StatsDashboardView
	mostActive     *MostActiveView

	// Data channels
	tickChan  <-chan store.Tick
	eventChan <-chan store.IntrinsicEvent
	tracker   *metrics.Tracker

	refreshRate time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new TUI application.
func NewApp(tickChan <-chan store.Tick, eventChan <-chan store.IntrinsicEvent,
	tracker *metrics.Tracker, priceScale int, refreshRate time.Duration) *App {
	ctx, cancel := context.WithCancel(context.Background())

	if refreshRate <= 0 {
		refreshRate = 500 * time.Millisecond
	}

	app := &App{
		app:         tview.NewApplication(),
		tickChan:    tickChan,
		eventChan:   eventChan,
		tracker:     tracker,
		refreshRate: refreshRate,
		ctx:         ctx,
		cancel:      cancel,
	}

	// Initialize views
	scale := int32(priceScale)
	app.symbolOverview = NewSymbolOverviewView(scale)
	app.eventAlerter = NewEventAlerterView(scale)
	app.liveTicks = NewLiveTicksView(scale)
	app.statsDashboard = NewStatsDashboardView()
	app.mostActive = NewMostActiveView()

	// Setup layout
	app.setupLayout()

	// Setup keyboard shortcuts
	app.setupKeyboard()

	return app
}

// setupLayout creates the 5-panel layout.
func (a *App) setupLayout() {
	// Top row: Symbol Overview (left) | Event Alerter (right)
	topRow := tview.NewFlex().
		AddItem(a.symbolOverview.Widget(), 0, 1, false).
		AddItem(a.eventAlerter.Widget(), 0, 2, false)

	// Middle row: Live Ticks (full width)
	middleRow := a.liveTicks.Widget()

	// Bottom row: Stats Dashboard (left) | Most Active (right)
	bottomRow := tview.NewFlex().
		AddItem(a.statsDashboard.Widget(), 0, 1, false).
		AddItem(a.mostActive.Widget(), 0, 1, false)

	// Main vertical layout
	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 2, false).
		AddItem(middleRow, 0, 3, false).
		AddItem(bottomRow, 0, 2, false)

	a.app.SetRoot(a.layout, true)
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				a.Stop()
				return nil
			case 'r', 'R':
				a.refresh()
				return nil
			}
		}
		return event
	})
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	// Start data processing goroutines
	go a.processTicks()
	go a.processEvents()
	go a.updateLoop()

	// Run the TUI (blocking)
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// processTicks reads from the tick channel and updates the live feed view.
func (a *App) processTicks() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case tick, ok := <-a.tickChan:
			if !ok {
				return
			}

			a.app.QueueUpdateDraw(func() {
				a.liveTicks.AddTick(tick)
			})
		}
	}
}

// processEvents reads from the event channel and updates the alerter.
func (a *App) processEvents() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case event, ok := <-a.eventChan:
			if !ok {
				return
			}

			a.app.QueueUpdateDraw(func() {
				a.eventAlerter.AddEvent(event)
			})
		}
	}
}

// updateLoop periodically refreshes views with metrics data.
func (a *App) updateLoop() {
	ticker := time.NewTicker(a.refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			snapshot := a.tracker.Snapshot()

			a.app.QueueUpdateDraw(func() {
				a.statsDashboard.Update(snapshot)
				a.mostActive.Update(snapshot)
				a.symbolOverview.Update(snapshot)
			})
		}
	}
}

// refresh manually refreshes all views.
func (a *App) refresh() {
	snapshot := a.tracker.Snapshot()

	a.app.QueueUpdateDraw(func() {
		a.symbolOverview.Update(snapshot)
		a.eventAlerter.Refresh()
		a.liveTicks.Refresh()
		a.statsDashboard.Update(snapshot)
		a.mostActive.Update(snapshot)
	})
}
