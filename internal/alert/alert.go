// Package alert defines the alert record and the factory that converts
// firing trigger decisions into persisted alerts.
package alert

import (
	"time"

	"watchtower/internal/trigger"
)

// Severity levels, lowest to highest.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is a known severity value.
func ValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Alert is an immutable record of a fired trigger. Acknowledged is the only
// field mutable after creation, and only through AcknowledgeAlert.
type Alert struct {
	AlertID                string         `json:"alert_id"`
	MonitorID              string         `json:"monitor_id"`
	Type                   trigger.Kind   `json:"type"`
	Title                  string         `json:"title"`
	Description            string         `json:"description"`
	Severity               Severity       `json:"severity"`
	TriggeredAt            time.Time      `json:"triggered_at"`
	Acknowledged           bool           `json:"acknowledged"`
	RelatedNarrativeIDs    []string       `json:"related_narrative_ids,omitempty"`
	RelatedSubNarrativeIDs []string       `json:"related_sub_narrative_ids,omitempty"`
	RelatedEventIDs        []string       `json:"related_event_ids,omitempty"`
	Metadata               map[string]any `json:"metadata,omitempty"`
}
