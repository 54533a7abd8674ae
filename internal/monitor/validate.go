package monitor

import "fmt"

// ValidationError describes a malformed monitor field. It is surfaced
// synchronously at create/update time and maps to a 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid monitor %s: %s", e.Field, e.Reason)
}

// Validate checks that the monitor definition is well-formed.
// Scope must contain at least one non-empty category, logic and direction
// must be known values, and trigger thresholds must be positive.
func (m *Monitor) Validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}

	if m.Logic != LogicAND && m.Logic != LogicOR {
		return &ValidationError{Field: "logic", Reason: "logic must be AND or OR"}
	}

	if m.Scope.NonEmptyCategories() == 0 {
		return &ValidationError{Field: "scope", Reason: "scope must contain at least one non-empty ID set"}
	}

	if !m.Triggers.Any() {
		return &ValidationError{Field: "triggers", Reason: "at least one trigger must be enabled"}
	}

	if vs := m.Triggers.VolumeSpike; vs != nil {
		if vs.Threshold <= 0 {
			return &ValidationError{Field: "triggers.volume_spike", Reason: "threshold must be positive"}
		}
		if vs.TimeWindow <= 0 {
			return &ValidationError{Field: "triggers.volume_spike", Reason: "time window must be positive"}
		}
	}

	if ss := m.Triggers.SentimentShift; ss != nil {
		if ss.Threshold <= 0 {
			return &ValidationError{Field: "triggers.sentiment_shift", Reason: "threshold must be positive"}
		}
		switch ss.Direction {
		case DirectionAny, DirectionPositive, DirectionNegative:
		default:
			return &ValidationError{Field: "triggers.sentiment_shift", Reason: "direction must be any, positive, or negative"}
		}
	}

	if fe := m.Triggers.FactionEngagement; fe != nil {
		if fe.Threshold <= 0 {
			return &ValidationError{Field: "triggers.faction_engagement", Reason: "threshold must be positive"}
		}
		if len(fe.FactionIDs) == 0 {
			return &ValidationError{Field: "triggers.faction_engagement", Reason: "faction_ids cannot be empty"}
		}
	}

	return nil
}
