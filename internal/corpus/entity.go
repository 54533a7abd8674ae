// Package corpus defines read-only snapshots of corpus entities (narratives,
// sub-narratives, events) and the provider interface the engine fetches them through.
package corpus

import (
	"errors"
	"time"
)

// EntityType identifies the kind of a corpus entity.
type EntityType string

const (
	EntityNarrative    EntityType = "narrative"
	EntitySubNarrative EntityType = "sub_narrative"
	EntityEvent        EntityType = "event"
)

// ErrNotFound is returned by a Provider when an entity id is unknown.
var ErrNotFound = errors.New("entity not found")

// FactionMention holds a faction's aggregated engagement with an entity.
type FactionMention struct {
	Volume    int     `json:"volume"`
	Sentiment float64 `json:"sentiment"`
}

// VolumePoint is one daily observation in an entity's volume series.
// Sentiment is the precomputed aggregate for the day when the analytics
// pipeline supplies one; nil otherwise.
type VolumePoint struct {
	Date           time.Time      `json:"date"`
	FactionVolumes map[string]int `json:"faction_volumes,omitempty"`
	SourceVolumes  map[string]int `json:"source_volumes,omitempty"`
	Sentiment      *float64       `json:"sentiment,omitempty"`
}

// Entity is a point-in-time snapshot of a narrative, sub-narrative, or event,
// carrying the ID sets relevant to scope matching and its volume history.
type Entity struct {
	EntityID          string                    `json:"entity_id"`
	Type              EntityType                `json:"type"`
	Title             string                    `json:"title"`
	ParentNarrativeID string                    `json:"parent_narrative_id,omitempty"`
	ParentEventID     string                    `json:"parent_event_id,omitempty"`
	SubNarrativeIDs   []string                  `json:"sub_narrative_ids,omitempty"`
	SubEventIDs       []string                  `json:"sub_event_ids,omitempty"`
	EventIDs          []string                  `json:"event_ids,omitempty"`
	PersonIDs         []string                  `json:"person_ids,omitempty"`
	OrganizationIDs   []string                  `json:"organization_ids,omitempty"`
	LocationIDs       []string                  `json:"location_ids,omitempty"`
	FactionMentions   map[string]FactionMention `json:"faction_mentions,omitempty"`
	VolumeOverTime    []VolumePoint             `json:"volume_over_time,omitempty"`
}

// IsNarrative reports whether the entity is a narrative or sub-narrative.
func (e *Entity) IsNarrative() bool {
	return e.Type == EntityNarrative || e.Type == EntitySubNarrative
}

// FactionIDs returns the faction ids mentioned by the entity.
func (e *Entity) FactionIDs() []string {
	if len(e.FactionMentions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(e.FactionMentions))
	for id := range e.FactionMentions {
		ids = append(ids, id)
	}
	return ids
}
