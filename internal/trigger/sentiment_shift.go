package trigger

import (
	"math"

	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

// SentimentShift fires when the entity's aggregate sentiment moves by at
// least the configured threshold between the two most recent observation
// points, in the configured direction.
type SentimentShift struct{}

func (SentimentShift) Kind() Kind { return KindSentimentShift }

func (SentimentShift) Evaluate(m *monitor.Monitor, e *corpus.Entity) Result {
	cfg := m.Triggers.SentimentShift
	if cfg == nil {
		return Result{}
	}

	previous, current, ok := e.SentimentPair()
	if !ok {
		return Result{}
	}

	delta := current - previous
	if math.Abs(delta) < cfg.Threshold {
		return Result{}
	}

	switch cfg.Direction {
	case monitor.DirectionPositive:
		if delta <= 0 {
			return Result{}
		}
	case monitor.DirectionNegative:
		if delta >= 0 {
			return Result{}
		}
	}

	return Result{
		Fires: true,
		Evidence: map[string]any{
			"previous_sentiment": previous,
			"current_sentiment":  current,
			"delta":              delta,
			"direction":          string(cfg.Direction),
		},
	}
}
