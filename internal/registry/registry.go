// Package registry maintains the in-memory set of enabled monitors the
// scheduler evaluates against. It polls the database for configuration drift
// and swaps the whole set atomically, so evaluations always see a consistent
// snapshot.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"watchtower/internal/monitor"
)

// Loader is the persistence surface the registry reloads from.
type Loader interface {
	ListEnabledMonitors(ctx context.Context) ([]*monitor.Monitor, error)
	MonitorsFingerprint(ctx context.Context) (int, time.Time, error)
}

// Registry provides thread-safe access to the enabled monitor snapshot.
type Registry struct {
	loader       Loader
	pollInterval time.Duration

	mu       sync.RWMutex
	monitors []*monitor.Monitor
	byID     map[string]*monitor.Monitor

	fpCount   int
	fpUpdated time.Time
}

// NewRegistry creates a registry that reloads through the given loader.
func NewRegistry(loader Loader, pollInterval time.Duration) *Registry {
	return &Registry{
		loader:       loader,
		pollInterval: pollInterval,
		byID:         make(map[string]*monitor.Monitor),
	}
}

// Start loads the initial snapshot and begins polling for changes in a
// background goroutine. The goroutine exits when ctx is cancelled.
func (r *Registry) Start(ctx context.Context) error {
	if err := r.ReloadNow(ctx); err != nil {
		return err
	}

	slog.Info("Starting monitor registry poller",
		"poll_interval", r.pollInterval,
		"monitors", r.Count(),
	)

	go r.pollLoop(ctx)
	return nil
}

func (r *Registry) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Monitor registry poller stopped")
			return
		case <-ticker.C:
			if err := r.checkAndReload(ctx); err != nil {
				slog.Error("Failed to check/reload monitors", "error", err)
				// Continue polling even if reload fails
			}
		}
	}
}

// checkAndReload reloads the snapshot only when the fingerprint changed.
func (r *Registry) checkAndReload(ctx context.Context) error {
	count, updated, err := r.loader.MonitorsFingerprint(ctx)
	if err != nil {
		return err
	}

	r.mu.RLock()
	unchanged := count == r.fpCount && updated.Equal(r.fpUpdated)
	r.mu.RUnlock()
	if unchanged {
		return nil
	}

	return r.reload(ctx, count, updated)
}

// ReloadNow forces an immediate reload. CRUD handlers call this after a
// successful mutation so changes take effect before the next poll.
func (r *Registry) ReloadNow(ctx context.Context) error {
	count, updated, err := r.loader.MonitorsFingerprint(ctx)
	if err != nil {
		return err
	}
	return r.reload(ctx, count, updated)
}

func (r *Registry) reload(ctx context.Context, fpCount int, fpUpdated time.Time) error {
	monitors, err := r.loader.ListEnabledMonitors(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]*monitor.Monitor, len(monitors))
	for _, m := range monitors {
		byID[m.MonitorID] = m
	}

	r.mu.Lock()
	r.monitors = monitors
	r.byID = byID
	r.fpCount = fpCount
	r.fpUpdated = fpUpdated
	r.mu.Unlock()

	slog.Info("Monitor registry reloaded", "enabled_monitors", len(monitors))
	return nil
}

// Monitors returns the current enabled monitor snapshot.
func (r *Registry) Monitors() []*monitor.Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.monitors
}

// IsEnabled reports whether the monitor is in the current enabled snapshot.
// The emission path re-checks this so a disable lands before the insert even
// when the evaluation was already in flight.
func (r *Registry) IsEnabled(monitorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[monitorID]
	return ok
}

// Count returns the number of enabled monitors in the snapshot.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.monitors)
}
