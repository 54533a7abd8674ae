package trigger

import (
	"math"
	"testing"

	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

func floatPtr(f float64) *float64 { return &f }

func shiftMonitor(threshold float64, direction monitor.Direction) *monitor.Monitor {
	return &monitor.Monitor{
		MonitorID: "m-1",
		Triggers: monitor.Triggers{
			SentimentShift: &monitor.SentimentShiftConfig{
				Threshold: threshold,
				Direction: direction,
			},
		},
	}
}

func sentimentEntity(previous, current float64) *corpus.Entity {
	return &corpus.Entity{
		EntityID: "n-1",
		VolumeOverTime: []corpus.VolumePoint{
			{Date: day("2026-08-28"), Sentiment: floatPtr(previous)},
			{Date: day("2026-08-29"), Sentiment: floatPtr(current)},
		},
	}
}

func TestSentimentShift_Evaluate(t *testing.T) {
	tests := []struct {
		name      string
		previous  float64
		current   float64
		threshold float64
		direction monitor.Direction
		wantFires bool
	}{
		{"negative slide fires on any", -0.29, -0.52, 0.15, monitor.DirectionAny, true},
		{"negative slide fires on negative", -0.29, -0.52, 0.15, monitor.DirectionNegative, true},
		{"negative slide ignored by positive direction", -0.29, -0.52, 0.15, monitor.DirectionPositive, false},
		{"positive swing ignored by negative direction", -0.1, 0.4, 0.15, monitor.DirectionNegative, false},
		{"positive swing fires on positive", -0.1, 0.4, 0.15, monitor.DirectionPositive, true},
		{"delta under threshold", -0.29, -0.35, 0.15, monitor.DirectionAny, false},
		{"delta exactly at threshold", 0.0, 0.15, 0.15, monitor.DirectionAny, true},
		{"flat sentiment never fires", 0.2, 0.2, 0.15, monitor.DirectionAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := SentimentShift{}.Evaluate(shiftMonitor(tt.threshold, tt.direction), sentimentEntity(tt.previous, tt.current))
			if res.Fires != tt.wantFires {
				t.Errorf("Fires = %v, want %v", res.Fires, tt.wantFires)
			}
		})
	}
}

func TestSentimentShift_Evidence(t *testing.T) {
	res := SentimentShift{}.Evaluate(shiftMonitor(0.15, monitor.DirectionAny), sentimentEntity(-0.29, -0.52))
	if !res.Fires {
		t.Fatal("Fires = false, want true")
	}

	delta, ok := res.Evidence["delta"].(float64)
	if !ok {
		t.Fatalf("delta type = %T, want float64", res.Evidence["delta"])
	}
	if math.Abs(delta-(-0.23)) > 1e-9 {
		t.Errorf("delta = %v, want -0.23", delta)
	}
	if res.Evidence["previous_sentiment"] != -0.29 {
		t.Errorf("previous_sentiment = %v, want -0.29", res.Evidence["previous_sentiment"])
	}
	if res.Evidence["current_sentiment"] != -0.52 {
		t.Errorf("current_sentiment = %v, want -0.52", res.Evidence["current_sentiment"])
	}
}

func TestSentimentShift_TooFewPoints(t *testing.T) {
	e := &corpus.Entity{
		VolumeOverTime: []corpus.VolumePoint{{Date: day("2026-08-29"), Sentiment: floatPtr(-0.9)}},
	}
	if res := (SentimentShift{}).Evaluate(shiftMonitor(0.1, monitor.DirectionAny), e); res.Fires {
		t.Error("Fires = true with a single observation, want false")
	}
}

func TestSentimentShift_NotConfigured(t *testing.T) {
	m := &monitor.Monitor{MonitorID: "m-1", Triggers: monitor.Triggers{NewEvent: true}}
	if res := (SentimentShift{}).Evaluate(m, sentimentEntity(-0.9, 0.9)); res.Fires {
		t.Error("Fires = true without sentiment shift config, want false")
	}
}
