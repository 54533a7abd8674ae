package trigger

import (
	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

// FactionEngagement fires when the summed mention volume of the trigger's
// watched factions reaches the threshold. Factions the entity does not
// mention contribute zero.
type FactionEngagement struct{}

func (FactionEngagement) Kind() Kind { return KindFactionEngagement }

func (FactionEngagement) Evaluate(m *monitor.Monitor, e *corpus.Entity) Result {
	cfg := m.Triggers.FactionEngagement
	if cfg == nil {
		return Result{}
	}

	perFaction, total := e.FactionVolume(cfg.FactionIDs)
	if total < cfg.Threshold {
		return Result{}
	}

	return Result{
		Fires: true,
		Evidence: map[string]any{
			"faction_engagement": perFaction,
			"threshold":          cfg.Threshold,
			"total_volume":       total,
		},
	}
}
