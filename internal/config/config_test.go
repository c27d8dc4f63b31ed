package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/pidsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Plant != "thermal" {
		t.Errorf("expected plant thermal, got %s", cfg.Plant)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.Controller.SampleInterval() != 100*time.Millisecond {
		t.Errorf("expected 100ms sample interval, got %v", cfg.Controller.SampleInterval())
	}
	if cfg.Controller.MinOutput != 0 || cfg.Controller.MaxOutput != 255 {
		t.Errorf("expected limits [0, 255], got [%v, %v]", cfg.Controller.MinOutput, cfg.Controller.MaxOutput)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("thermal", "heat")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Controller.Setpoint != 60 {
		t.Errorf("expected setpoint 60, got %f", cfg.Controller.Setpoint)
	}
	if cfg.Controller.Direction != "normal" || cfg.Controller.Mode != "on_error" {
		t.Errorf("expected filled defaults, got %q/%q", cfg.Controller.Direction, cfg.Controller.Mode)
	}

	cfg.Controller.Kp = 99
	if Presets["thermal"]["heat"].Controller.Kp == 99 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("thermal", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "heat")
	if cfg != nil {
		t.Error("expected nil for nonexistent plant")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("tank")
	if len(presets) != 3 {
		t.Errorf("expected 3 tank presets, got %v", presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent plant")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for plant := range Presets {
		for _, name := range ListPresets(plant) {
			if err := GetPreset(plant, name).Validate(); err != nil {
				t.Errorf("preset %s/%s: %v", plant, name, err)
			}
		}
	}
}

func TestGetInitState(t *testing.T) {
	tests := []struct {
		plant    string
		expected []float64
	}{
		{"thermal", []float64{20}},
		{"cooler", []float64{35}},
		{"tank", []float64{0}},
		{"motor", []float64{0, 0}},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Plant = tt.plant
		state := cfg.GetInitState()
		if len(state) != len(tt.expected) || state[0] != tt.expected[0] {
			t.Errorf("plant %s: expected %v, got %v", tt.plant, tt.expected, state)
		}
	}

	cfg := DefaultConfig()
	cfg.InitState = []float64{42}
	if s := cfg.GetInitState(); s[0] != 42 {
		t.Errorf("explicit init state ignored, got %v", s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"zero interval", func(c *Config) { c.Controller.SampleIntervalMs = 0 }},
		{"bad signal", func(c *Config) { c.Controller.Signal = "fixed" }},
		{"bad direction", func(c *Config) { c.Controller.Direction = "up" }},
		{"bad mode", func(c *Config) { c.Controller.Mode = "velocity" }},
		{"bad invocation", func(c *Config) { c.Controller.Invocation = "sometimes" }},
		{"negative window", func(c *Config) { c.Controller.IntegralWindow = -1 }},
		{"bad type", func(c *Config) { c.Controller.Type = "lqr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Controller.MinOutput, cfg.Controller.MaxOutput = 10, -10
	if err := cfg.Validate(); err != nil {
		t.Errorf("inverted limits are passed through, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Plant = "tank"
	cfg.Controller.Mode = "on_rate"
	cfg.Controller.IntegralWindow = 12
	cfg.PlantParams = map[string]float64{"area": 3}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Plant != "tank" || loaded.Controller.Mode != "on_rate" || loaded.Controller.IntegralWindow != 12 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.PlantParams["area"] != 3 {
		t.Errorf("expected plant param area=3, got %v", loaded.PlantParams)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("plant: motor\ncontroller:\n  kp: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Controller.Kp != 12 {
		t.Errorf("expected kp 12, got %v", cfg.Controller.Kp)
	}
	if cfg.Controller.Ki != DefaultKi || cfg.Controller.SampleIntervalMs != 100 {
		t.Errorf("unset fields should keep defaults, got %+v", cfg.Controller)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial config should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("controller:\n  ki: 0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOver(path, GetPreset("tank", "on_rate"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Controller.Ki != 0.1 {
		t.Errorf("file should override ki, got %v", cfg.Controller.Ki)
	}
	if cfg.Controller.Mode != "on_rate" || cfg.Controller.Kp != 40 {
		t.Errorf("preset values should survive, got %+v", cfg.Controller)
	}
}
