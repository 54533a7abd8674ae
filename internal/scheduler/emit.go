package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"watchtower/internal/alert"
	"watchtower/internal/corpus"
	"watchtower/internal/database"
	"watchtower/internal/events"
	"watchtower/internal/monitor"
	"watchtower/internal/trigger"
)

// hookSchemaVersion is the schema version stamped on alerts.created events.
const hookSchemaVersion = 1

// emit runs a firing decision through the debounce and first-seen gates,
// builds the alert, persists it, and publishes the notification hook event.
func (s *Scheduler) emit(ctx context.Context, m *monitor.Monitor, kind trigger.Kind, e *corpus.Entity, evidence map[string]any) {
	cooldown := s.cooldownFor(m, kind)
	suppressed, err := s.ledger.ShouldSuppress(ctx, m.MonitorID, string(kind), e.EntityID, cooldown)
	if err != nil {
		s.metrics.RecordError()
		slog.Error("Debounce check failed",
			"monitor_id", m.MonitorID,
			"trigger", kind,
			"entity_id", e.EntityID,
			"error", err,
		)
		return
	}
	if suppressed {
		s.metrics.RecordSuppressed()
		slog.Debug("Alert suppressed by cooldown",
			"monitor_id", m.MonitorID,
			"trigger", kind,
			"entity_id", e.EntityID,
			"cooldown", cooldown,
		)
		return
	}

	// A disable that landed while this evaluation was in flight wins.
	if !s.monitors.IsEnabled(m.MonitorID) {
		return
	}

	// One-shot triggers fire once per entity lifetime. The seen set is
	// written only after the cooldown key is held: a ledger failure before
	// this point leaves no state behind, so a redelivered mutation retries
	// the first observation instead of losing it.
	if kind.EventDriven() {
		first, err := s.ledger.MarkSeen(ctx, m.MonitorID, string(kind), e.EntityID)
		if err != nil {
			s.metrics.RecordError()
			slog.Error("Failed to update seen set",
				"monitor_id", m.MonitorID,
				"trigger", kind,
				"entity_id", e.EntityID,
				"error", err,
			)
			return
		}
		if !first {
			return
		}
	}

	a := s.factory.Build(m, kind, e, evidence)
	if !s.persist(ctx, a) {
		return
	}
	s.finalize(ctx, a)
}

// persist inserts the alert with bounded backoff. On exhausted retries the
// alert is queued for replay on the next tick rather than dropped.
func (s *Scheduler) persist(ctx context.Context, a *alert.Alert) bool {
	backoff := s.cfg.RetryBackoff
	var err error
	for attempt := 1; attempt <= s.cfg.InsertRetries; attempt++ {
		err = s.store.InsertAlert(ctx, a)
		if err == nil {
			return true
		}
		if errors.Is(err, database.ErrAlreadyExists) {
			// A concurrent path already persisted this alert id.
			return false
		}
		if attempt < s.cfg.InsertRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	s.metrics.RecordError()
	slog.Error("Alert insert exhausted retries, requeueing for next tick",
		"alert_id", a.AlertID,
		"monitor_id", a.MonitorID,
		"error", err,
	)
	s.pendingMu.Lock()
	s.pending = append(s.pending, a)
	s.pendingMu.Unlock()
	return false
}

// flushPending retries alerts whose insert previously failed.
func (s *Scheduler) flushPending(ctx context.Context) {
	s.pendingMu.Lock()
	pending := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	for _, a := range pending {
		if s.persist(ctx, a) {
			s.finalize(ctx, a)
		}
	}
}

// finalize records the emission on the monitor and publishes the hook event.
// Both are best-effort after the alert is durably stored.
func (s *Scheduler) finalize(ctx context.Context, a *alert.Alert) {
	if err := s.store.TouchLastTriggered(ctx, a.MonitorID, a.TriggeredAt); err != nil {
		slog.Error("Failed to update monitor last_triggered",
			"monitor_id", a.MonitorID,
			"error", err,
		)
	}

	if err := s.hook.Publish(ctx, &events.AlertCreated{
		AlertID:       a.AlertID,
		SchemaVersion: hookSchemaVersion,
		MonitorID:     a.MonitorID,
		Type:          string(a.Type),
		Severity:      string(a.Severity),
		Title:         a.Title,
		TriggeredTS:   a.TriggeredAt.Unix(),
	}); err != nil {
		slog.Error("Failed to publish alert created event",
			"alert_id", a.AlertID,
			"error", err,
		)
	}

	s.metrics.RecordAlert()
	slog.Info("Alert created",
		"alert_id", a.AlertID,
		"monitor_id", a.MonitorID,
		"trigger", a.Type,
		"severity", a.Severity,
	)
}

// cooldownFor picks the suppression window: volume-based triggers debounce
// for their own time window, everything else for the fixed event cooldown.
func (s *Scheduler) cooldownFor(m *monitor.Monitor, kind trigger.Kind) time.Duration {
	if kind == trigger.KindVolumeSpike && m.Triggers.VolumeSpike != nil {
		return m.Triggers.VolumeSpike.TimeWindow.Duration()
	}
	return s.cfg.EventCooldown
}
