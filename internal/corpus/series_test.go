package corpus

import (
	"math"
	"testing"
	"time"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func floatPtr(f float64) *float64 { return &f }

func TestEntity_ValidateSeries(t *testing.T) {
	tests := []struct {
		name    string
		series  []VolumePoint
		wantErr bool
	}{
		{
			name:   "empty series",
			series: nil,
		},
		{
			name: "ordered series",
			series: []VolumePoint{
				{Date: day("2026-08-28"), SourceVolumes: map[string]int{"rss": 10}},
				{Date: day("2026-08-29"), SourceVolumes: map[string]int{"rss": 12}},
				{Date: day("2026-08-30"), SourceVolumes: map[string]int{"rss": 9}},
			},
		},
		{
			name: "out of order dates",
			series: []VolumePoint{
				{Date: day("2026-08-29")},
				{Date: day("2026-08-28")},
			},
			wantErr: true,
		},
		{
			name: "duplicate dates",
			series: []VolumePoint{
				{Date: day("2026-08-29")},
				{Date: day("2026-08-29")},
			},
			wantErr: true,
		},
		{
			name: "negative faction volume",
			series: []VolumePoint{
				{Date: day("2026-08-29"), FactionVolumes: map[string]int{"f-1": -5}},
			},
			wantErr: true,
		},
		{
			name: "negative source volume",
			series: []VolumePoint{
				{Date: day("2026-08-29"), SourceVolumes: map[string]int{"rss": -1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entity{EntityID: "n-1", VolumeOverTime: tt.series}
			err := e.ValidateSeries()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSeries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntity_WindowVolume(t *testing.T) {
	e := &Entity{
		EntityID: "n-1",
		VolumeOverTime: []VolumePoint{
			{Date: day("2026-08-25"), SourceVolumes: map[string]int{"rss": 100}},
			{Date: day("2026-08-28"), FactionVolumes: map[string]int{"f-1": 200}, SourceVolumes: map[string]int{"rss": 50}},
			{Date: day("2026-08-29"), FactionVolumes: map[string]int{"f-1": 400, "f-2": 300}, SourceVolumes: map[string]int{"rss": 28}},
		},
	}

	tests := []struct {
		name   string
		window time.Duration
		want   int
	}{
		// The window anchors at the newest bucket; a 24h window covers it alone.
		{"one day", 24 * time.Hour, 728},
		{"two days includes 08-28", 48 * time.Hour, 978},
		// 08-25 sits exactly 4 days back, inside a 5-day window.
		{"five days includes everything", 5 * 24 * time.Hour, 1078},
		{"gap days count as zero", 4 * 24 * time.Hour, 978},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.WindowVolume(tt.window); got != tt.want {
				t.Errorf("WindowVolume(%v) = %v, want %v", tt.window, got, tt.want)
			}
		})
	}
}

func TestEntity_WindowVolume_EmptySeries(t *testing.T) {
	e := &Entity{EntityID: "n-1"}
	if got := e.WindowVolume(24 * time.Hour); got != 0 {
		t.Errorf("WindowVolume() = %v, want 0", got)
	}
}

func TestEntity_SentimentPair(t *testing.T) {
	e := &Entity{
		EntityID: "n-1",
		VolumeOverTime: []VolumePoint{
			{Date: day("2026-08-28"), Sentiment: floatPtr(-0.29)},
			{Date: day("2026-08-29"), Sentiment: floatPtr(-0.52)},
		},
	}

	previous, current, ok := e.SentimentPair()
	if !ok {
		t.Fatal("SentimentPair() ok = false, want true")
	}
	if previous != -0.29 || current != -0.52 {
		t.Errorf("SentimentPair() = (%v, %v), want (-0.29, -0.52)", previous, current)
	}
}

func TestEntity_SentimentPair_TooFewPoints(t *testing.T) {
	e := &Entity{
		VolumeOverTime: []VolumePoint{{Date: day("2026-08-29"), Sentiment: floatPtr(0.1)}},
	}
	if _, _, ok := e.SentimentPair(); ok {
		t.Error("SentimentPair() ok = true with one point, want false")
	}
}

func TestEntity_SentimentPair_FallsBackToAggregate(t *testing.T) {
	// Points without a precomputed sentiment fall back to the volume-weighted
	// mean over faction mentions.
	e := &Entity{
		FactionMentions: map[string]FactionMention{
			"f-1": {Volume: 300, Sentiment: -0.6},
			"f-2": {Volume: 100, Sentiment: 0.2},
		},
		VolumeOverTime: []VolumePoint{
			{Date: day("2026-08-28")},
			{Date: day("2026-08-29"), Sentiment: floatPtr(-0.1)},
		},
	}

	previous, current, ok := e.SentimentPair()
	if !ok {
		t.Fatal("SentimentPair() ok = false, want true")
	}
	wantPrev := (-0.6*300 + 0.2*100) / 400
	if math.Abs(previous-wantPrev) > 1e-9 {
		t.Errorf("previous = %v, want %v", previous, wantPrev)
	}
	if current != -0.1 {
		t.Errorf("current = %v, want -0.1", current)
	}
}

func TestEntity_AggregateSentiment_NoVolume(t *testing.T) {
	e := &Entity{FactionMentions: map[string]FactionMention{"f-1": {Volume: 0, Sentiment: 0.9}}}
	if got := e.AggregateSentiment(); got != 0 {
		t.Errorf("AggregateSentiment() = %v, want 0", got)
	}
}

func TestEntity_FactionVolume(t *testing.T) {
	e := &Entity{
		FactionMentions: map[string]FactionMention{
			"f-1": {Volume: 80},
			"f-2": {Volume: 40},
			"f-3": {Volume: 999},
		},
	}

	perFaction, total := e.FactionVolume([]string{"f-1", "f-2", "f-missing"})
	if total != 120 {
		t.Errorf("total = %v, want 120", total)
	}
	if len(perFaction) != 2 {
		t.Errorf("perFaction has %d entries, want 2 (absent factions contribute zero)", len(perFaction))
	}
	if perFaction["f-1"] != 80 || perFaction["f-2"] != 40 {
		t.Errorf("perFaction = %v", perFaction)
	}
}
