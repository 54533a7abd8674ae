package corpus

import (
	"fmt"
	"time"
)

// ValidateSeries checks the entity's volume series for malformed analytics data:
// out-of-order dates or negative volumes. The scheduler skips entities that
// fail this check so one bad series cannot abort a whole evaluation pass.
func (e *Entity) ValidateSeries() error {
	var prev time.Time
	for i, p := range e.VolumeOverTime {
		if i > 0 && !p.Date.After(prev) {
			return fmt.Errorf("volume series for %s out of order at index %d (%s after %s)",
				e.EntityID, i, p.Date.Format(time.DateOnly), prev.Format(time.DateOnly))
		}
		prev = p.Date
		for faction, v := range p.FactionVolumes {
			if v < 0 {
				return fmt.Errorf("negative faction volume for %s: faction=%s volume=%d", e.EntityID, faction, v)
			}
		}
		for source, v := range p.SourceVolumes {
			if v < 0 {
				return fmt.Errorf("negative source volume for %s: source=%s volume=%d", e.EntityID, source, v)
			}
		}
	}
	return nil
}

// WindowVolume sums faction and source volumes over the trailing window.
// The window is anchored at the newest observation: buckets dated within
// window of it (inclusive) are summed, so a 24h window over daily buckets is
// the most recent bucket. Missing buckets count as zero.
func (e *Entity) WindowVolume(window time.Duration) int {
	if len(e.VolumeOverTime) == 0 {
		return 0
	}
	newest := e.VolumeOverTime[len(e.VolumeOverTime)-1].Date
	cutoff := newest.Add(-window)

	sum := 0
	for i := len(e.VolumeOverTime) - 1; i >= 0; i-- {
		p := e.VolumeOverTime[i]
		if !p.Date.After(cutoff) {
			break
		}
		for _, v := range p.FactionVolumes {
			sum += v
		}
		for _, v := range p.SourceVolumes {
			sum += v
		}
	}
	return sum
}

// SentimentPair returns the aggregate sentiment at the two most recent
// observation points. ok is false when fewer than two points exist.
func (e *Entity) SentimentPair() (previous, current float64, ok bool) {
	n := len(e.VolumeOverTime)
	if n < 2 {
		return 0, 0, false
	}
	previous = e.sentimentAt(n - 2)
	current = e.sentimentAt(n - 1)
	return previous, current, true
}

// sentimentAt returns the sentiment for one observation point, preferring the
// precomputed value and falling back to the volume-weighted mean of the
// entity's faction mention sentiments.
func (e *Entity) sentimentAt(i int) float64 {
	if s := e.VolumeOverTime[i].Sentiment; s != nil {
		return *s
	}
	return e.AggregateSentiment()
}

// AggregateSentiment derives an entity-level sentiment as the volume-weighted
// mean over faction mentions. Returns 0 when no mention carries volume.
func (e *Entity) AggregateSentiment() float64 {
	var weighted float64
	var total int
	for _, m := range e.FactionMentions {
		weighted += m.Sentiment * float64(m.Volume)
		total += m.Volume
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

// FactionVolume sums the mention volume of the given factions.
// Factions absent from the entity's mentions contribute zero.
func (e *Entity) FactionVolume(factionIDs []string) (perFaction map[string]int, total int) {
	perFaction = make(map[string]int, len(factionIDs))
	for _, id := range factionIDs {
		if m, ok := e.FactionMentions[id]; ok {
			perFaction[id] = m.Volume
			total += m.Volume
		}
	}
	return perFaction, total
}
