// Package trigger implements the five trigger evaluation strategies.
// Evaluators are pure over the monitor config and the entity snapshot: the
// debounce ledger and first-seen bookkeeping live in the scheduler's emission
// path so the same evaluator can be replayed safely.
package trigger

import (
	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

// Kind identifies a trigger strategy.
type Kind string

const (
	KindNewNarrative      Kind = "new_narrative"
	KindNewEvent          Kind = "new_event"
	KindVolumeSpike       Kind = "volume_spike"
	KindSentimentShift    Kind = "sentiment_shift"
	KindFactionEngagement Kind = "faction_engagement"
)

// EventDriven reports whether the kind is evaluated on corpus mutations
// rather than on the periodic tick.
func (k Kind) EventDriven() bool {
	return k == KindNewNarrative || k == KindNewEvent
}

// Result is a single evaluation outcome. Evidence carries the numeric
// payload persisted as alert metadata when Fires is true.
type Result struct {
	Fires    bool
	Evidence map[string]any
}

// Evaluator is one trigger strategy. Evaluate must be pure and must tolerate
// sparse history (absent buckets are zero, never an error).
type Evaluator interface {
	Kind() Kind
	Evaluate(m *monitor.Monitor, e *corpus.Entity) Result
}

// WindowEvaluators returns the evaluators re-run on the periodic tick.
func WindowEvaluators() []Evaluator {
	return []Evaluator{VolumeSpike{}, SentimentShift{}, FactionEngagement{}}
}

// EventEvaluators returns the evaluators run immediately per corpus mutation.
func EventEvaluators() []Evaluator {
	return []Evaluator{NewNarrative{}, NewEvent{}}
}
