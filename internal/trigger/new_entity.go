package trigger

import (
	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

// NewNarrative fires when a narrative or sub-narrative is observed in a
// monitor's scope. The first-observation guarantee (at most once per
// monitor/entity, surviving restarts) is enforced by the scheduler against
// the persisted seen set; the evaluator only decides applicability.
type NewNarrative struct{}

func (NewNarrative) Kind() Kind { return KindNewNarrative }

func (NewNarrative) Evaluate(m *monitor.Monitor, e *corpus.Entity) Result {
	if !m.Triggers.NewNarrative || !e.IsNarrative() {
		return Result{}
	}
	return Result{
		Fires: true,
		Evidence: map[string]any{
			"entity_id":    e.EntityID,
			"entity_title": e.Title,
		},
	}
}

// NewEvent fires when an event is observed in a monitor's scope, under the
// same first-observation guarantee as NewNarrative.
type NewEvent struct{}

func (NewEvent) Kind() Kind { return KindNewEvent }

func (NewEvent) Evaluate(m *monitor.Monitor, e *corpus.Entity) Result {
	if !m.Triggers.NewEvent || e.Type != corpus.EntityEvent {
		return Result{}
	}
	return Result{
		Fires: true,
		Evidence: map[string]any{
			"entity_id":    e.EntityID,
			"entity_title": e.Title,
		},
	}
}
