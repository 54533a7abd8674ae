package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.MutationsTopic != "corpus.mutations" {
		t.Errorf("MutationsTopic = %q", cfg.MutationsTopic)
	}
	if cfg.AlertsTopic != "alerts.created" {
		t.Errorf("AlertsTopic = %q", cfg.AlertsTopic)
	}
	if cfg.TickInterval != 5*time.Minute {
		t.Errorf("TickInterval = %v, want 5m", cfg.TickInterval)
	}
	if cfg.QueuePolicy != "block" {
		t.Errorf("QueuePolicy = %q, want block", cfg.QueuePolicy)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TICK_INTERVAL", "30s")
	t.Setenv("WORKERS", "4")
	t.Setenv("QUEUE_POLICY", "drop-oldest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.TickInterval != 30*time.Second {
		t.Errorf("TickInterval = %v, want 30s", cfg.TickInterval)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.QueuePolicy != "drop-oldest" {
		t.Errorf("QueuePolicy = %q, want drop-oldest", cfg.QueuePolicy)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty kafka brokers", "KAFKA_BROKERS", ""},
		{"empty mutations topic", "MUTATIONS_TOPIC", ""},
		{"unknown queue policy", "QUEUE_POLICY", "spill"},
		{"zero workers", "WORKERS", "0"},
		{"zero tick interval", "TICK_INTERVAL", "0s"},
		{"zero poll interval", "REGISTRY_POLL_INTERVAL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() error = nil with %s=%q, want rejection", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_SchedulerConfig(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sc := cfg.SchedulerConfig()
	if sc.TickInterval != cfg.TickInterval {
		t.Errorf("TickInterval = %v, want %v", sc.TickInterval, cfg.TickInterval)
	}
	if sc.Workers != cfg.Workers {
		t.Errorf("Workers = %d, want %d", sc.Workers, cfg.Workers)
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("SchedulerConfig().Validate() error = %v", err)
	}
}
