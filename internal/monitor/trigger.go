package monitor

import (
	"encoding/json"
	"fmt"
	"time"
)

// Window is a time window parsed from a duration string like "24h".
// It marshals back to the same string form for API and storage round-trips.
type Window time.Duration

// ParseWindow parses a duration string into a Window.
// Returns an error if the string is empty, unparsable, or non-positive.
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return 0, fmt.Errorf("time window cannot be empty")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid time window %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("time window must be positive, got %q", s)
	}
	return Window(d), nil
}

// Duration returns the window as a time.Duration.
func (w Window) Duration() time.Duration {
	return time.Duration(w)
}

// String returns the duration string form, e.g. "24h0m0s" -> "24h".
func (w Window) String() string {
	return time.Duration(w).String()
}

// MarshalJSON encodes the window as a duration string.
func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(w).String())
}

// UnmarshalJSON decodes the window from a duration string.
func (w *Window) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseWindow(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Direction constrains which sentiment deltas a sentiment shift trigger fires on.
type Direction string

const (
	DirectionAny      Direction = "any"
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// VolumeSpikeConfig fires when the windowed volume sum reaches the threshold.
type VolumeSpikeConfig struct {
	Threshold  int    `json:"threshold"`
	TimeWindow Window `json:"time_window"`
}

// SentimentShiftConfig fires when sentiment moves by at least Threshold
// between the two most recent observation points, in the configured direction.
type SentimentShiftConfig struct {
	Threshold float64   `json:"threshold"`
	Direction Direction `json:"direction"`
}

// FactionEngagementConfig fires when the summed mention volume of the listed
// factions reaches the threshold.
type FactionEngagementConfig struct {
	FactionIDs []string `json:"faction_ids"`
	Threshold  int      `json:"threshold"`
}

// Triggers holds the per-kind trigger configuration for a monitor.
// Each kind is independently optional; a nil config means the kind is disabled,
// so absent configuration cannot be confused with zero-valued configuration.
type Triggers struct {
	NewNarrative      bool                     `json:"new_narrative"`
	NewEvent          bool                     `json:"new_event"`
	VolumeSpike       *VolumeSpikeConfig       `json:"volume_spike,omitempty"`
	SentimentShift    *SentimentShiftConfig    `json:"sentiment_shift,omitempty"`
	FactionEngagement *FactionEngagementConfig `json:"faction_engagement,omitempty"`
}

// Any reports whether at least one trigger kind is enabled.
func (t *Triggers) Any() bool {
	return t.NewNarrative || t.NewEvent ||
		t.VolumeSpike != nil || t.SentimentShift != nil || t.FactionEngagement != nil
}
