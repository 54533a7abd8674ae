// Package metrics collects engine counters and reports them to Redis for
// centralized access by the operations dashboard.
package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MetricsKey is the Redis key the engine's metrics are written under.
	MetricsKey = "metrics:watchtower-engine"
	// MetricsTTL is how long metrics stay in Redis if not refreshed.
	MetricsTTL = 2 * time.Minute
	// DefaultReportInterval is the default interval for writing metrics to Redis.
	DefaultReportInterval = 30 * time.Second
)

// EngineMetrics is the reported metrics document.
type EngineMetrics struct {
	ServiceName       string    `json:"service_name"`
	StartedAt         time.Time `json:"started_at"`
	LastUpdated       time.Time `json:"last_updated"`
	MutationsConsumed uint64    `json:"mutations_consumed"`
	MutationsDropped  uint64    `json:"mutations_dropped"`
	EvaluationsRun    uint64    `json:"evaluations_run"`
	EvaluationErrors  uint64    `json:"evaluation_errors"`
	AlertsCreated     uint64    `json:"alerts_created"`
	AlertsSuppressed  uint64    `json:"alerts_suppressed"`
}

// Collector collects and reports engine metrics.
type Collector struct {
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	mutationsConsumed atomic.Uint64
	mutationsDropped  atomic.Uint64
	evaluationsRun    atomic.Uint64
	evaluationErrors  atomic.Uint64
	alertsCreated     atomic.Uint64
	alertsSuppressed  atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new metrics collector.
func NewCollector(redisClient *redis.Client) *Collector {
	return &Collector{
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: DefaultReportInterval,
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval for writing metrics to Redis.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.reportInterval = interval
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Collector) RecordMutation()   { c.mutationsConsumed.Add(1) }
func (c *Collector) RecordDropped()    { c.mutationsDropped.Add(1) }
func (c *Collector) RecordEvaluation() { c.evaluationsRun.Add(1) }
func (c *Collector) RecordError()      { c.evaluationErrors.Add(1) }
func (c *Collector) RecordAlert()      { c.alertsCreated.Add(1) }
func (c *Collector) RecordSuppressed() { c.alertsSuppressed.Add(1) }

// Snapshot returns the current metrics without writing to Redis.
func (c *Collector) Snapshot() *EngineMetrics {
	return &EngineMetrics{
		ServiceName:       "watchtower-engine",
		StartedAt:         c.startedAt,
		LastUpdated:       time.Now().UTC(),
		MutationsConsumed: c.mutationsConsumed.Load(),
		MutationsDropped:  c.mutationsDropped.Load(),
		EvaluationsRun:    c.evaluationsRun.Load(),
		EvaluationErrors:  c.evaluationErrors.Load(),
		AlertsCreated:     c.alertsCreated.Load(),
		AlertsSuppressed:  c.alertsSuppressed.Load(),
	}
}

func (c *Collector) writeMetrics(ctx context.Context) {
	payload, err := json.Marshal(c.Snapshot())
	if err != nil {
		slog.Error("Failed to marshal metrics", "error", err)
		return
	}
	if err := c.redis.Set(ctx, MetricsKey, payload, MetricsTTL).Err(); err != nil {
		slog.Warn("Failed to write metrics to Redis", "error", err)
	}
}
