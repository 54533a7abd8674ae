package trigger

import (
	"watchtower/internal/corpus"
	"watchtower/internal/monitor"
)

// VolumeSpike fires when the entity's summed faction and source volumes over
// the trailing configured window reach the threshold.
type VolumeSpike struct{}

func (VolumeSpike) Kind() Kind { return KindVolumeSpike }

func (VolumeSpike) Evaluate(m *monitor.Monitor, e *corpus.Entity) Result {
	cfg := m.Triggers.VolumeSpike
	if cfg == nil {
		return Result{}
	}

	sum := e.WindowVolume(cfg.TimeWindow.Duration())
	if sum < cfg.Threshold {
		return Result{}
	}

	percentOver := float64(sum-cfg.Threshold) / float64(cfg.Threshold) * 100
	return Result{
		Fires: true,
		Evidence: map[string]any{
			"actual_value": sum,
			"threshold":    cfg.Threshold,
			"time_window":  cfg.TimeWindow.String(),
			"percent_over": percentOver,
		},
	}
}
