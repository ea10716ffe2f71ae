// Package main is the entry point for the intrinsic event engine.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/intrinsictime/engine/internal/config"
	"github.com/intrinsictime/engine/internal/detector"
	"github.com/intrinsictime/engine/internal/engine"
	"github.com/intrinsictime/engine/internal/ingest"
	"github.com/intrinsictime/engine/internal/metrics"
	"github.com/intrinsictime/engine/internal/store"
	"github.com/intrinsictime/engine/internal/ui"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// TickChannelBuffer is the size of the buffered tick channels
	TickChannelBuffer = 1000
	// EventChannelBuffer is the size of the buffered event channel
	EventChannelBuffer = 100
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("intrinsic event engine starting",
		"version", "1.0.0",
	)

	slog.Info("config_loaded",
		"symbols", strings.Join(cfg.Symbols, ","),
		"threshold_up", cfg.ThresholdUp,
		"threshold_down", cfg.ThresholdDown,
		"os_size_up", cfg.OSSizeUp,
		"os_size_down", cfg.OSSizeDown,
		"initial_mode", cfg.InitialMode,
		"relative_moves", cfg.RelativeMoves,
		"price_scale", cfg.PriceScale,
		"worker_count", cfg.WorkerCount,
		"replay_file", cfg.ReplayFile,
		"enable_tui", cfg.EnableTUI,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create channels. Raw feed ticks are teed into the detector pool
	// (blocking, nothing may be lost) and the UI feed (best effort).
	rawTickChan := make(chan store.Tick, TickChannelBuffer)
	poolTickChan := make(chan store.Tick, TickChannelBuffer)
	eventChan := make(chan store.IntrinsicEvent, EventChannelBuffer)

	var uiTickChan chan store.Tick
	if cfg.EnableTUI {
		uiTickChan = make(chan store.Tick, TickChannelBuffer)
	}

	go teeTicks(ctx, rawTickChan, poolTickChan, uiTickChan)

	// Initialize metrics tracker
	tracker := metrics.NewTracker()

	// Start periodic cleanup and buffer gauge updates
	go func() {
		cleanup := time.NewTicker(5 * time.Minute)
		gauge := time.NewTicker(time.Second)
		defer cleanup.Stop()
		defer gauge.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanup.C:
				tracker.Cleanup()
			case <-gauge.C:
				tracker.SetChannelBuffer(len(poolTickChan), cap(poolTickChan))
			}
		}
	}()

	// Start the detector pool
	detectorCfg := detector.Config{
		ThresholdUp:   cfg.ThresholdUp,
		ThresholdDown: cfg.ThresholdDown,
		OSSizeUp:      cfg.OSSizeUp,
		OSSizeDown:    cfg.OSSizeDown,
		InitialMode:   cfg.InitialMode,
		RelativeMoves: cfg.RelativeMoves,
	}
	pool := engine.NewPool(detectorCfg, cfg.WorkerCount, eventChan, tracker)
	pool.Start(ctx, poolTickChan)

	// Start the tick source: CSV replay or the live feed
	var listener *ingest.Listener

	if cfg.ReplayFile != "" {
		tracker.SetFeedStatus("replay")
		replayer := ingest.NewReplayer(cfg.ReplayFile, cfg.PriceScale, cfg.ReplayInterval, rawTickChan)
		go func() {
			defer close(rawTickChan)
			if err := replayer.Start(ctx); err != nil && err != context.Canceled {
				slog.Error("replay_failed", "error", err)
			}
		}()
	} else {
		symbols := resolveSymbols(ctx, cfg)

		listener = ingest.NewListener(cfg.BinanceWSURL, cfg.PriceScale, rawTickChan)
		listener.SetSymbols(symbols)
		listener.Start(ctx)
		tracker.SetFeedStatus("connected")
	}

	slog.Info("engine_started",
		"status", "observing ticks",
		"workers", cfg.WorkerCount,
		"tui_enabled", cfg.EnableTUI,
	)

	// Start TUI or run in background mode
	if cfg.EnableTUI {
		app := ui.NewApp(uiTickChan, eventChan, tracker, cfg.PriceScale, cfg.UIRefreshRate)

		// Start TUI in goroutine so we can still handle signals
		go func() {
			if err := app.Run(); err != nil {
				slog.Error("tui_error", "error", err)
				cancel()
			}
		}()

		// Wait for shutdown signal or context cancellation
		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
			app.Stop()
		case <-ctx.Done():
			app.Stop()
		}
	} else {
		// Background mode: log events until a signal arrives, or until a
		// replay run has been fully processed.
		go logEvents(ctx, eventChan)

		if cfg.ReplayFile != "" {
			poolDone := make(chan struct{})
			go func() {
				pool.Wait()
				close(poolDone)
			}()
			select {
			case sig := <-sigChan:
				slog.Info("shutdown_signal_received", "signal", sig.String())
			case <-poolDone:
				slog.Info("replay_processed")
			}
		} else {
			sig := <-sigChan
			slog.Info("shutdown_signal_received", "signal", sig.String())
		}
	}

	cancel()

	// Graceful shutdown
	slog.Info("shutting_down")
	if listener != nil {
		listener.Stop()
	}
	pool.Wait()

	slog.Info("shutdown_complete")
}

// teeTicks forwards feed ticks to the detector pool and, when present, the
// UI feed. The pool send blocks so detection never loses a tick; the UI
// send drops when the UI lags behind.
func teeTicks(ctx context.Context, in <-chan store.Tick, pool chan<- store.Tick, ui chan<- store.Tick) {
	defer close(pool)
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-in:
			if !ok {
				return
			}
			select {
			case pool <- tick:
			case <-ctx.Done():
				return
			}
			select {
			case ui <- tick:
			default:
			}
		}
	}
}

// resolveSymbols checks the configured symbols against the exchange and
// returns the tradable ones, falling back to the raw list when the lookup
// fails.
func resolveSymbols(ctx context.Context, cfg *config.Config) []string {
	client := ingest.NewInstrumentClient(cfg.BinanceRESTURL)
	tradable, unknown, err := client.TradableSymbols(ctx, cfg.Symbols)
	if err != nil {
		slog.Warn("instrument_lookup_failed, subscribing to configured symbols", "error", err)
		return cfg.Symbols
	}
	if len(unknown) > 0 {
		slog.Warn("symbols_not_trading", "symbols", strings.Join(unknown, ","))
	}
	if len(tradable) == 0 {
		slog.Warn("no_tradable_symbols, subscribing to configured symbols")
		return cfg.Symbols
	}
	return tradable
}

// logEvents drains the event channel in headless mode.
func logEvents(ctx context.Context, eventChan <-chan store.IntrinsicEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			slog.Info("intrinsic_event",
				"symbol", event.Symbol,
				"event", store.EventName(event.Code),
				"price", event.Price,
				"overshoot_len", event.OvershootLen,
				"deviation", event.Deviation,
			)
		}
	}
}

// setupLogger creates a structured logger with the configured level.
// When a log file is set, output is mirrored into a size-rotated file.
// Format: 2025-01-04 14:32:01 [INFO]  message key=value
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(out, opts)
	return slog.New(handler)
}
