package alert

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
	"watchtower/internal/trigger"
)

// SeverityPolicy maps a firing trigger's evidence to a severity. Severity is
// a domain policy, not an engine rule, so operators supply their own mapping
// at construction time.
type SeverityPolicy func(kind trigger.Kind, evidence map[string]any) Severity

// Factory builds alerts from firing decisions.
type Factory struct {
	policy SeverityPolicy
	now    func() time.Time
	newID  func() string
}

// NewFactory creates a factory with the given severity policy.
// A nil policy falls back to DefaultSeverityPolicy.
func NewFactory(policy SeverityPolicy) *Factory {
	if policy == nil {
		policy = DefaultSeverityPolicy
	}
	return &Factory{
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Build converts a firing decision into an alert ready for persistence.
func (f *Factory) Build(m *monitor.Monitor, kind trigger.Kind, e *corpus.Entity, evidence map[string]any) *Alert {
	a := &Alert{
		AlertID:     f.newID(),
		MonitorID:   m.MonitorID,
		Type:        kind,
		Title:       buildTitle(kind, e),
		Description: buildDescription(kind, e, evidence),
		Severity:    f.policy(kind, evidence),
		TriggeredAt: f.now().UTC(),
		Metadata:    evidence,
	}

	switch e.Type {
	case corpus.EntityNarrative:
		a.RelatedNarrativeIDs = []string{e.EntityID}
	case corpus.EntitySubNarrative:
		a.RelatedSubNarrativeIDs = []string{e.EntityID}
		if e.ParentNarrativeID != "" {
			a.RelatedNarrativeIDs = []string{e.ParentNarrativeID}
		}
	case corpus.EntityEvent:
		a.RelatedEventIDs = []string{e.EntityID}
	}

	return a
}

func buildTitle(kind trigger.Kind, e *corpus.Entity) string {
	switch kind {
	case trigger.KindNewNarrative:
		return "New narrative: " + e.Title
	case trigger.KindNewEvent:
		return "New event: " + e.Title
	case trigger.KindVolumeSpike:
		return "Volume spike: " + e.Title
	case trigger.KindSentimentShift:
		return "Sentiment shift: " + e.Title
	case trigger.KindFactionEngagement:
		return "Faction engagement surge: " + e.Title
	default:
		return e.Title
	}
}

func buildDescription(kind trigger.Kind, e *corpus.Entity, evidence map[string]any) string {
	switch kind {
	case trigger.KindNewNarrative:
		return fmt.Sprintf("A narrative matching the monitor scope was observed for the first time: %q.", e.Title)
	case trigger.KindNewEvent:
		return fmt.Sprintf("An event matching the monitor scope was observed for the first time: %q.", e.Title)
	case trigger.KindVolumeSpike:
		return fmt.Sprintf("Volume for %q reached %v over the trailing %v, %.1f%% over the threshold of %v.",
			e.Title, evidence["actual_value"], evidence["time_window"], asFloat(evidence["percent_over"]), evidence["threshold"])
	case trigger.KindSentimentShift:
		return fmt.Sprintf("Sentiment for %q moved from %.2f to %.2f (delta %+.2f).",
			e.Title, asFloat(evidence["previous_sentiment"]), asFloat(evidence["current_sentiment"]), asFloat(evidence["delta"]))
	case trigger.KindFactionEngagement:
		return fmt.Sprintf("Watched factions reached a combined volume of %v on %q, over the threshold of %v.",
			evidence["total_volume"], e.Title, evidence["threshold"])
	default:
		return e.Title
	}
}

// DefaultSeverityPolicy bands window-trigger severity by how far the observed
// value overshot its threshold, and rates first-observation triggers medium.
func DefaultSeverityPolicy(kind trigger.Kind, evidence map[string]any) Severity {
	switch kind {
	case trigger.KindNewNarrative, trigger.KindNewEvent:
		return SeverityMedium
	case trigger.KindVolumeSpike, trigger.KindFactionEngagement:
		return overshootSeverity(percentOver(evidence))
	case trigger.KindSentimentShift:
		// Shifts are already threshold-relative; band by delta magnitude.
		delta := math.Abs(asFloat(evidence["delta"]))
		switch {
		case delta >= 0.5:
			return SeverityCritical
		case delta >= 0.3:
			return SeverityHigh
		case delta >= 0.15:
			return SeverityMedium
		default:
			return SeverityLow
		}
	default:
		return SeverityLow
	}
}

func percentOver(evidence map[string]any) float64 {
	if p, ok := evidence["percent_over"]; ok {
		return asFloat(p)
	}
	total := asFloat(evidence["total_volume"])
	threshold := asFloat(evidence["threshold"])
	if threshold == 0 {
		return 0
	}
	return (total - threshold) / threshold * 100
}

func overshootSeverity(percentOver float64) Severity {
	switch {
	case percentOver >= 200:
		return SeverityCritical
	case percentOver >= 100:
		return SeverityHigh
	case percentOver >= 50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// asFloat normalizes the numeric types that survive a JSON metadata round-trip.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
