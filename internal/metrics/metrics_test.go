package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(nil)

	c.RecordMutation()
	c.RecordMutation()
	c.RecordDropped()
	c.RecordEvaluation()
	c.RecordEvaluation()
	c.RecordEvaluation()
	c.RecordError()
	c.RecordAlert()
	c.RecordSuppressed()
	c.RecordSuppressed()

	snap := c.Snapshot()
	if snap.ServiceName != "watchtower-engine" {
		t.Errorf("ServiceName = %q", snap.ServiceName)
	}
	if snap.MutationsConsumed != 2 {
		t.Errorf("MutationsConsumed = %d, want 2", snap.MutationsConsumed)
	}
	if snap.MutationsDropped != 1 {
		t.Errorf("MutationsDropped = %d, want 1", snap.MutationsDropped)
	}
	if snap.EvaluationsRun != 3 {
		t.Errorf("EvaluationsRun = %d, want 3", snap.EvaluationsRun)
	}
	if snap.EvaluationErrors != 1 {
		t.Errorf("EvaluationErrors = %d, want 1", snap.EvaluationErrors)
	}
	if snap.AlertsCreated != 1 {
		t.Errorf("AlertsCreated = %d, want 1", snap.AlertsCreated)
	}
	if snap.AlertsSuppressed != 2 {
		t.Errorf("AlertsSuppressed = %d, want 2", snap.AlertsSuppressed)
	}
}

func TestCollector_SetReportInterval(t *testing.T) {
	c := NewCollector(nil)
	if c.reportInterval != DefaultReportInterval {
		t.Fatalf("reportInterval = %v, want default %v", c.reportInterval, DefaultReportInterval)
	}

	c.SetReportInterval(5 * time.Second)
	if c.reportInterval != 5*time.Second {
		t.Errorf("reportInterval = %v, want 5s", c.reportInterval)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	c := NewCollector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordEvaluation()
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot().EvaluationsRun; got != 1000 {
		t.Errorf("EvaluationsRun = %d, want 1000", got)
	}
}
