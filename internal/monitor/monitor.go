// Package monitor defines the monitor model: scope, trigger configuration, and validation.
package monitor

import (
	"time"
)

// Logic is the operator applied across non-empty scope categories.
type Logic string

const (
	LogicAND Logic = "AND"
	LogicOR  Logic = "OR"
)

// Scope holds the entity-ID categories a monitor watches.
// Empty categories are ignored during matching.
type Scope struct {
	OrganizationIDs []string `json:"organization_ids,omitempty"`
	PersonIDs       []string `json:"person_ids,omitempty"`
	LocationIDs     []string `json:"location_ids,omitempty"`
	EventIDs        []string `json:"event_ids,omitempty"`
	NarrativeIDs    []string `json:"narrative_ids,omitempty"`
	FactionIDs      []string `json:"faction_ids,omitempty"`
}

// NonEmptyCategories returns the number of scope categories with at least one ID.
func (s *Scope) NonEmptyCategories() int {
	n := 0
	for _, ids := range [][]string{
		s.OrganizationIDs,
		s.PersonIDs,
		s.LocationIDs,
		s.EventIDs,
		s.NarrativeIDs,
		s.FactionIDs,
	} {
		if len(ids) > 0 {
			n++
		}
	}
	return n
}

// Options control transitive scope expansion during matching.
type Options struct {
	IncludeSubEvents     bool `json:"include_sub_events"`
	IncludeSubNarratives bool `json:"include_sub_narratives"`
	IncludeRelatedEvents bool `json:"include_related_events"`
}

// Monitor is a persistent watch configuration created by an analyst.
// The engine treats monitors as read-only except for LastTriggered.
type Monitor struct {
	MonitorID     string     `json:"monitor_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Scope         Scope      `json:"scope"`
	Logic         Logic      `json:"logic"`
	Options       Options    `json:"options"`
	Triggers      Triggers   `json:"triggers"`
	Enabled       bool       `json:"enabled"`
	Version       int        `json:"version"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
