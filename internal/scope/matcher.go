// Package scope decides whether a corpus entity falls within a monitor's
// watched entity sets. Matching is pure set logic over hashed ID sets; the
// monitor's expansion options additionally pull in descendant sub-entities
// and related events through the corpus provider.
package scope

import (
	"context"
	"errors"
	"log/slog"

	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

// Matcher evaluates monitor scopes against entity snapshots.
type Matcher struct {
	corpus corpus.Provider
}

// NewMatcher creates a matcher that resolves descendant entities through the
// given provider.
func NewMatcher(p corpus.Provider) *Matcher {
	return &Matcher{corpus: p}
}

// compiled holds a monitor scope's non-empty categories as hashed sets.
type compiled struct {
	categories []category
	logic      monitor.Logic
}

type category struct {
	ids func(e *corpus.Entity) []string
	set map[string]struct{}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// compile builds the hashed-set form of a monitor scope, skipping empty
// categories entirely: they neither require nor block a match.
func compile(m *monitor.Monitor) *compiled {
	c := &compiled{logic: m.Logic}

	add := func(ids []string, extract func(e *corpus.Entity) []string) {
		if len(ids) > 0 {
			c.categories = append(c.categories, category{ids: extract, set: toSet(ids)})
		}
	}

	add(m.Scope.OrganizationIDs, func(e *corpus.Entity) []string { return e.OrganizationIDs })
	add(m.Scope.PersonIDs, func(e *corpus.Entity) []string { return e.PersonIDs })
	add(m.Scope.LocationIDs, func(e *corpus.Entity) []string { return e.LocationIDs })
	add(m.Scope.EventIDs, eventIdentity)
	add(m.Scope.NarrativeIDs, narrativeIdentity)
	add(m.Scope.FactionIDs, func(e *corpus.Entity) []string { return e.FactionIDs() })

	return c
}

// eventIdentity is the entity's event-ID set: its own id when it is an event,
// plus its parent event link.
func eventIdentity(e *corpus.Entity) []string {
	var ids []string
	if e.Type == corpus.EntityEvent {
		ids = append(ids, e.EntityID)
	}
	if e.ParentEventID != "" {
		ids = append(ids, e.ParentEventID)
	}
	return ids
}

// narrativeIdentity is the entity's narrative-ID set: its own id when it is a
// narrative or sub-narrative, plus its parent narrative link.
func narrativeIdentity(e *corpus.Entity) []string {
	var ids []string
	if e.IsNarrative() {
		ids = append(ids, e.EntityID)
	}
	if e.ParentNarrativeID != "" {
		ids = append(ids, e.ParentNarrativeID)
	}
	return ids
}

// matchDirect applies the scope's logic operator over its non-empty
// categories. A scope with zero non-empty categories matches nothing.
func (c *compiled) matchDirect(e *corpus.Entity) bool {
	if len(c.categories) == 0 {
		return false
	}
	for _, cat := range c.categories {
		hit := false
		for _, id := range cat.ids(e) {
			if _, ok := cat.set[id]; ok {
				hit = true
				break
			}
		}
		if hit && c.logic == monitor.LogicOR {
			return true
		}
		if !hit && c.logic == monitor.LogicAND {
			return false
		}
	}
	return c.logic == monitor.LogicAND
}

// Matches reports whether the entity falls within the monitor's scope,
// including transitive matches through sub-entities and related events when
// the monitor's options enable them.
func (mt *Matcher) Matches(ctx context.Context, m *monitor.Monitor, e *corpus.Entity) (bool, error) {
	// The visited set terminates traversal of cyclic corpus links without
	// capping the depth of legitimate sub-entity chains.
	visited := map[string]struct{}{e.EntityID: {}}
	return mt.matches(ctx, compile(m), m.Options, e, visited)
}

func (mt *Matcher) matches(ctx context.Context, c *compiled, opts monitor.Options, e *corpus.Entity, visited map[string]struct{}) (bool, error) {
	if c.matchDirect(e) {
		return true, nil
	}

	var descendants []string
	if opts.IncludeSubNarratives {
		descendants = append(descendants, e.SubNarrativeIDs...)
	}
	if opts.IncludeSubEvents {
		descendants = append(descendants, e.SubEventIDs...)
	}
	if opts.IncludeRelatedEvents && e.IsNarrative() {
		descendants = append(descendants, e.EventIDs...)
	}

	for _, id := range descendants {
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		child, err := mt.corpus.GetEntity(ctx, id)
		if err != nil {
			if errors.Is(err, corpus.ErrNotFound) {
				// Dangling link in the corpus; it cannot contribute a match.
				slog.Debug("Skipping unresolvable descendant", "entity_id", id)
				continue
			}
			return false, err
		}
		ok, err := mt.matches(ctx, c, opts, child, visited)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
