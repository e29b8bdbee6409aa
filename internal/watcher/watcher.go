package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgewatchlabs/edgewatch/internal/matcher"
	"github.com/edgewatchlabs/edgewatch/internal/state"
)

// Fetcher retrieves the current component list. An empty result means
// "no data this cycle" and skips change detection entirely.
type Fetcher interface {
	Fetch(ctx context.Context) []matcher.Component
}

// Notifier delivers one status-change alert. Implementations own their
// failure handling; the watcher does not observe delivery outcome.
type Notifier interface {
	Notify(ctx context.Context, location, componentName, status string)
}

// Watcher runs the poll-compare-notify loop.
//
// Watcher owns the in-memory last-status mapping, loading it from the
// [state.Store] once at startup and persisting it after every detected
// change. The loop is strictly sequential: one fetch, one compare pass,
// and any notifications all happen on the calling goroutine, so no
// locking is needed anywhere.
type Watcher struct {
	targets  []string
	interval time.Duration
	fetcher  Fetcher
	notifier Notifier
	store    state.Store
	logger   *slog.Logger

	// statuses is the last-notified status per target. Mutated only by
	// the loop goroutine.
	statuses map[string]string
}

// New creates a [Watcher] monitoring the given targets.
//
// Targets must already be trimmed and lowercased (the config package
// guarantees this). interval is the sleep between poll cycles.
func New(targets []string, interval time.Duration, fetcher Fetcher, notifier Notifier, store state.Store, logger *slog.Logger) *Watcher {
	return &Watcher{
		targets:  targets,
		interval: interval,
		fetcher:  fetcher,
		notifier: notifier,
		store:    store,
		logger:   logger,
		statuses: map[string]string{},
	}
}

// Run executes the watch loop until ctx is cancelled.
//
// Run is a blocking call. It loads the persisted state, logs a startup
// summary, runs one cycle immediately, and then keeps cycling on the
// configured interval. A failing cycle never terminates the loop; even
// a panic inside a cycle is recovered and logged with a correlation ID.
// Run returns nil on clean shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	statuses, err := w.store.Load()
	if err != nil {
		w.logger.Warn("failed to load persisted state, starting fresh", "error", err)
	}
	if statuses == nil {
		statuses = map[string]string{}
	}
	w.statuses = statuses

	w.logger.Info("watch started",
		"targets", strings.Join(w.targets, ", "),
		"interval", w.interval.String(),
		"known_statuses", len(w.statuses),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutdown signal received, stopping")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle executes one cycle with panic recovery.
//
// If the cycle panics, the full stack trace is logged with a correlation
// ID and the loop simply proceeds to its next tick.
func (w *Watcher) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			w.logger.Error("cycle panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	w.cycle(ctx)
}

// cycle performs one fetch-match-compare-notify-persist pass.
func (w *Watcher) cycle(ctx context.Context) {
	components := w.fetcher.Fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if len(components) == 0 {
		w.logger.Info("no valid data this cycle")
		return
	}

	matches := matcher.Find(components, w.targets)

	for _, target := range w.targets {
		match, ok := matches[target]
		if !ok {
			w.logger.Warn("target not found in status feed, check the spelling",
				"target", target,
			)
			continue
		}

		previous, seen := w.statuses[target]
		if seen && previous == match.Status {
			continue
		}

		w.logger.Info("status change detected",
			"target", target,
			"component", match.ComponentName,
			"previous", previous,
			"current", match.Status,
		)

		w.notifier.Notify(ctx, target, match.ComponentName, match.Status)

		// state is updated after the send attempt regardless of delivery
		// outcome: a failed webhook is not retried on later cycles
		w.statuses[target] = match.Status
		if err := w.store.Save(w.statuses); err != nil {
			w.logger.Warn("failed to persist state", "error", err)
		}
	}
}
