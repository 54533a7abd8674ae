// Package scheduler orchestrates monitor evaluation: corpus mutations drive
// immediate event-trigger evaluation through a bounded work queue, and a
// periodic tick re-evaluates window triggers over previously-matched
// entities. Failures are isolated per (monitor, entity) pair; no evaluator
// error aborts the rest of a pass.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"watchtower/internal/alert"
	"watchtower/internal/corpus"
	"watchtower/internal/debounce"
	"watchtower/internal/events"
	"watchtower/internal/monitor"
	"watchtower/internal/scope"
	"watchtower/internal/trigger"
)

// Queue overflow policies.
const (
	QueuePolicyBlock      = "block"
	QueuePolicyDropOldest = "drop-oldest"
)

// AlertStore is the persistence surface the scheduler writes through.
type AlertStore interface {
	InsertAlert(ctx context.Context, a *alert.Alert) error
	TouchLastTriggered(ctx context.Context, monitorID string, at time.Time) error
}

// HookPublisher emits the per-alert notification hook event.
type HookPublisher interface {
	Publish(ctx context.Context, created *events.AlertCreated) error
}

// MutationSource supplies corpus mutation events, normally the Kafka consumer.
type MutationSource interface {
	ReadMessage(ctx context.Context) (*events.CorpusMutation, error)
}

// MonitorSet is the registry view the scheduler evaluates against.
type MonitorSet interface {
	Monitors() []*monitor.Monitor
	IsEnabled(monitorID string) bool
}

// Recorder counts scheduler activity. The null implementation avoids nil checks.
type Recorder interface {
	RecordMutation()
	RecordDropped()
	RecordEvaluation()
	RecordError()
	RecordAlert()
	RecordSuppressed()
}

// NoOpRecorder is a no-op Recorder.
type NoOpRecorder struct{}

func (NoOpRecorder) RecordMutation()   {}
func (NoOpRecorder) RecordDropped()    {}
func (NoOpRecorder) RecordEvaluation() {}
func (NoOpRecorder) RecordError()      {}
func (NoOpRecorder) RecordAlert()      {}
func (NoOpRecorder) RecordSuppressed() {}

// Config holds scheduler tuning parameters.
type Config struct {
	TickInterval  time.Duration
	Workers       int
	QueueSize     int
	QueuePolicy   string
	EventCooldown time.Duration
	InsertRetries int
	RetryBackoff  time.Duration
}

// Validate checks the scheduler configuration.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick-interval must be > 0")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue-size must be > 0")
	}
	if c.QueuePolicy != QueuePolicyBlock && c.QueuePolicy != QueuePolicyDropOldest {
		return fmt.Errorf("queue-policy must be %q or %q", QueuePolicyBlock, QueuePolicyDropOldest)
	}
	if c.EventCooldown <= 0 {
		return fmt.Errorf("event-cooldown must be > 0")
	}
	if c.InsertRetries <= 0 {
		return fmt.Errorf("insert-retries must be > 0")
	}
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("retry-backoff must be > 0")
	}
	return nil
}

// Scheduler drives monitor evaluation.
type Scheduler struct {
	cfg      Config
	monitors MonitorSet
	corpus   corpus.Provider
	matcher  *scope.Matcher
	ledger   debounce.Store
	factory  *alert.Factory
	store    AlertStore
	hook     HookPublisher
	metrics  Recorder

	queue chan *events.CorpusMutation
	wg    sync.WaitGroup

	// Alerts whose store insert exhausted retries, replayed next tick.
	pendingMu sync.Mutex
	pending   []*alert.Alert
}

// NewScheduler creates a scheduler. A nil metrics recorder defaults to no-op.
func NewScheduler(cfg Config, monitors MonitorSet, provider corpus.Provider, matcher *scope.Matcher,
	ledger debounce.Store, factory *alert.Factory, store AlertStore, hook HookPublisher, metrics Recorder) *Scheduler {
	if metrics == nil {
		metrics = NoOpRecorder{}
	}
	return &Scheduler{
		cfg:      cfg,
		monitors: monitors,
		corpus:   provider,
		matcher:  matcher,
		ledger:   ledger,
		factory:  factory,
		store:    store,
		hook:     hook,
		metrics:  metrics,
		queue:    make(chan *events.CorpusMutation, cfg.QueueSize),
	}
}

// Start launches the worker pool and the tick loop. Workers exit when ctx is
// cancelled; call Wait to drain in-flight evaluations.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler",
		"tick_interval", s.cfg.TickInterval,
		"workers", s.cfg.Workers,
		"queue_size", s.cfg.QueueSize,
		"queue_policy", s.cfg.QueuePolicy,
	)

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	s.wg.Add(1)
	go s.tickLoop(ctx)
}

// Wait blocks until all workers and the tick loop have stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// Enqueue hands a corpus mutation to the worker pool, applying the configured
// overflow policy. Drops are counted and logged, never silent.
func (s *Scheduler) Enqueue(ctx context.Context, mutation *events.CorpusMutation) error {
	if s.cfg.QueuePolicy == QueuePolicyBlock {
		select {
		case s.queue <- mutation:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// drop-oldest: evict until the new mutation fits.
	for {
		select {
		case s.queue <- mutation:
			return nil
		default:
		}
		select {
		case dropped := <-s.queue:
			s.metrics.RecordDropped()
			slog.Warn("Mutation queue full, dropping oldest",
				"dropped_entity_id", dropped.EntityID,
				"dropped_entity_type", dropped.EntityType,
			)
		default:
		}
	}
}

// ConsumeLoop continuously reads corpus mutations from the source and
// enqueues them for evaluation. Returns when ctx is cancelled.
func (s *Scheduler) ConsumeLoop(ctx context.Context, source MutationSource) {
	slog.Info("Starting corpus mutation loop")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Corpus mutation loop stopped")
			return
		default:
			mutation, err := source.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("Failed to read corpus mutation", "error", err)
				// Continue processing other messages
				continue
			}
			s.metrics.RecordMutation()

			if err := s.Enqueue(ctx, mutation); err != nil {
				return
			}
		}
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case mutation := <-s.queue:
			s.handleMutation(ctx, mutation)
		}
	}
}

// handleMutation runs the event path: scope match per enabled monitor, then
// the event-driven triggers. The emission pipeline gates first-observation
// kinds on the persisted seen set.
func (s *Scheduler) handleMutation(ctx context.Context, mutation *events.CorpusMutation) {
	entity, ok := s.fetchEntity(ctx, mutation.EntityID)
	if !ok {
		return
	}

	for _, m := range s.monitors.Monitors() {
		matched, err := s.matcher.Matches(ctx, m, entity)
		if err != nil {
			s.metrics.RecordError()
			slog.Error("Scope match failed",
				"monitor_id", m.MonitorID,
				"entity_id", entity.EntityID,
				"error", err,
			)
			continue
		}
		if !matched {
			continue
		}
		s.metrics.RecordEvaluation()

		if err := s.ledger.TrackMatch(ctx, m.MonitorID, entity.EntityID); err != nil {
			slog.Error("Failed to track matched entity",
				"monitor_id", m.MonitorID,
				"entity_id", entity.EntityID,
				"error", err,
			)
		}

		for _, ev := range trigger.EventEvaluators() {
			res := ev.Evaluate(m, entity)
			if !res.Fires {
				continue
			}
			s.emit(ctx, m, ev.Kind(), entity, res.Evidence)
		}
	}
}

// tickLoop re-evaluates window triggers on a fixed interval.
func (s *Scheduler) tickLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Tick loop stopped")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick evaluates window triggers for every enabled monitor against the
// latest snapshot of each previously-matched entity. Monitors are evaluated
// in parallel, bounded by the worker count.
func (s *Scheduler) runTick(ctx context.Context) {
	s.flushPending(ctx)

	monitors := s.monitors.Monitors()
	slog.Debug("Running evaluation tick", "monitors", len(monitors))

	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup
	for _, m := range monitors {
		m := m
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.evaluateMonitorWindows(ctx, m)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) evaluateMonitorWindows(ctx context.Context, m *monitor.Monitor) {
	entityIDs, err := s.ledger.TrackedEntities(ctx, m.MonitorID)
	if err != nil {
		s.metrics.RecordError()
		slog.Error("Failed to list tracked entities", "monitor_id", m.MonitorID, "error", err)
		return
	}

	for _, entityID := range entityIDs {
		entity, ok := s.fetchEntity(ctx, entityID)
		if !ok {
			continue
		}

		// Re-check scope against the fresh snapshot: the monitor may have
		// been edited, or the entity may have drifted out of scope.
		matched, err := s.matcher.Matches(ctx, m, entity)
		if err != nil {
			s.metrics.RecordError()
			slog.Error("Scope match failed",
				"monitor_id", m.MonitorID,
				"entity_id", entityID,
				"error", err,
			)
			continue
		}
		if !matched {
			continue
		}
		s.metrics.RecordEvaluation()

		for _, ev := range trigger.WindowEvaluators() {
			res := ev.Evaluate(m, entity)
			if res.Fires {
				s.emit(ctx, m, ev.Kind(), entity, res.Evidence)
			}
		}
	}
}

// fetchEntity loads and validates an entity snapshot. A missing or malformed
// entity is skipped, never fatal.
func (s *Scheduler) fetchEntity(ctx context.Context, entityID string) (*corpus.Entity, bool) {
	entity, err := s.corpus.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, corpus.ErrNotFound) {
			slog.Warn("Entity snapshot not found", "entity_id", entityID)
			return nil, false
		}
		s.metrics.RecordError()
		slog.Error("Failed to fetch entity snapshot", "entity_id", entityID, "error", err)
		return nil, false
	}

	if err := entity.ValidateSeries(); err != nil {
		s.metrics.RecordError()
		slog.Error("Skipping entity with malformed history", "entity_id", entityID, "error", err)
		return nil, false
	}
	return entity, true
}
