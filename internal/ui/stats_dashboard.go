package ui

import (
	"fmt"
	"time"

	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/intrinsictime/engine/internal/store"
	"github.com/rivo/tview"
)

// StatsDashboardView displays system health and intrinsic-time totals.
type StatsDashboardView struct {
	textView *tview.TextView
}

// NewStatsDashboardView creates a new stats dashboard view.
func NewStatsDashboardView() *StatsDashboardView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Stats Dashboard ").SetBorder(true)

	return &StatsDashboardView{
		textView: textView,
	}
}

// Widget returns the tview primitive.
func (v *StatsDashboardView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the stats display.
func (v *StatsDashboardView) Update(snapshot metrics.Snapshot) {
	v.textView.Clear()

	// Format uptime
	uptime := formatDuration(snapshot.Uptime)

	// Format feed status
	feedStatus := snapshot.FeedStatus
	feedColor := "red"
	if feedStatus == "connected" || feedStatus == "replay" {
		feedColor = "green"
	}

	// Calculate buffer usage percentage
	bufferPct := 0.0
	if snapshot.ChannelBufferCap > 0 {
		bufferPct = (float64(snapshot.ChannelBufferUsed) / float64(snapshot.ChannelBufferCap)) * 100
	}

	// Build stats text
	text := fmt.Sprintf(`[yellow]System Status[-]
Uptime: %s
Feed: [%s]%s[-]

[yellow]Tick Stats[-]
Total Ticks: %d
Rate: %.2f ticks/sec

[yellow]Intrinsic Events[-]
DC Up: %d
DC Down: %d
OS Up: %d
OS Down: %d
Total: %d

[yellow]Performance[-]
Channel Buffer: %d/%d (%.1f%%)
`,
		uptime,
		feedColor, feedStatus,
		snapshot.TicksTotal,
		snapshot.TickRate,
		snapshot.EventsByType[store.EventNameDCUp],
		snapshot.EventsByType[store.EventNameDCDown],
		snapshot.EventsByType[store.EventNameOSUp],
		snapshot.EventsByType[store.EventNameOSDown],
		snapshot.EventsTotal,
		snapshot.ChannelBufferUsed,
		snapshot.ChannelBufferCap,
		bufferPct,
	)

	fmt.Fprint(v.textView, text)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%.0fh ago", elapsed.Hours())
	}
	return fmt.Sprintf("%.0fd ago", elapsed.Hours()/24)
}
