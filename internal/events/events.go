// Package events defines the event structures for the corpus.mutations and alerts.created topics.
package events

// Entity type values carried on corpus mutation events.
const (
	EntityTypeNarrative    = "narrative"
	EntityTypeSubNarrative = "sub_narrative"
	EntityTypeEvent        = "event"
)

// Change kind values carried on corpus mutation events.
const (
	ChangeKindNew     = "new"
	ChangeKindUpdated = "updated"
)

// CorpusMutation represents a mutation event from the corpus.mutations topic.
// The ingestion pipeline emits one message per created or updated entity.
type CorpusMutation struct {
	SchemaVersion int    `json:"schema_version"`
	EventTS       int64  `json:"event_ts"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	ChangeKind    string `json:"change_kind"`
}

// AlertCreated represents a notification hook event published to the alerts.created topic.
// Emitted exactly once per persisted alert, after the store insert succeeds.
type AlertCreated struct {
	AlertID       string `json:"alert_id"`
	SchemaVersion int    `json:"schema_version"`
	MonitorID     string `json:"monitor_id"`
	Type          string `json:"type"`
	Severity      string `json:"severity"`
	Title         string `json:"title"`
	TriggeredTS   int64  `json:"triggered_ts"`
}
