package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidsim/internal/control"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/pid"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 30.0
	DefaultKp       = 2.0
	DefaultKi       = 0.5
	DefaultKd       = 0.0
	DefaultSetpoint = 60.0
)

type Config struct {
	Plant       string             `yaml:"plant"`
	Integrator  string             `yaml:"integrator"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	Seed        int64              `yaml:"seed"`
	InitState   []float64          `yaml:"init_state,omitempty"`
	Controller  ControllerConfig   `yaml:"controller"`
	PlantParams map[string]float64 `yaml:"plant_params,omitempty"`
}

type ControllerConfig struct {
	Type              string  `yaml:"type"`
	Kp                float64 `yaml:"kp"`
	Ki                float64 `yaml:"ki"`
	Kd                float64 `yaml:"kd"`
	Setpoint          float64 `yaml:"setpoint"`
	SampleIntervalMs  int     `yaml:"sample_interval_ms"`
	Direction         string  `yaml:"direction"`
	Mode              string  `yaml:"mode"`
	MinOutput         float64 `yaml:"min_output"`
	MaxOutput         float64 `yaml:"max_output"`
	IntegralWindow    int     `yaml:"integral_window"`
	OptimizedIntegral bool    `yaml:"optimized_integral"`
	Signal            string  `yaml:"signal"`
	Invocation        string  `yaml:"invocation"`
	// OpenLoopOutput is the constant action of the open-loop baseline.
	OpenLoopOutput float64 `yaml:"open_loop_output,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      "thermal",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Controller: DefaultControllerConfig(),
	}
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Type:             "pid",
		Kp:               DefaultKp,
		Ki:               DefaultKi,
		Kd:               DefaultKd,
		Setpoint:         DefaultSetpoint,
		SampleIntervalMs: int(pid.DefaultSampleInterval / time.Millisecond),
		Direction:        pid.Normal.String(),
		Mode:             pid.OnError.String(),
		MinOutput:        pid.DefaultMinOutput,
		MaxOutput:        pid.DefaultMaxOutput,
		Signal:           "float",
		Invocation:       control.Schedule.String(),
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base: keys present in the file replace
// base values, everything else is kept.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the simulator and controller cannot recover
// from. Limits with min > max are accepted and passed through unchanged.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidConfig, c.Duration)
	}

	cc := c.Controller
	switch cc.Type {
	case "pid", "":
	case "openloop":
		return nil
	default:
		return fmt.Errorf("%w: unknown controller type %q", dynamo.ErrInvalidConfig, cc.Type)
	}
	if cc.SampleIntervalMs <= 0 {
		return fmt.Errorf("%w: sample_interval_ms must be positive, got %d", dynamo.ErrInvalidConfig, cc.SampleIntervalMs)
	}
	if cc.Signal != "float" && cc.Signal != "int" {
		return fmt.Errorf("%w: signal must be float or int, got %q", dynamo.ErrInvalidConfig, cc.Signal)
	}
	if _, err := pid.ParseDirection(cc.Direction); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if _, err := pid.ParseMode(cc.Mode); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if _, err := control.ParseInvocation(cc.Invocation); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if cc.IntegralWindow < 0 {
		return fmt.Errorf("%w: integral_window must not be negative", dynamo.ErrInvalidConfig)
	}
	return nil
}

// SampleInterval returns the controller period as a duration.
func (cc ControllerConfig) SampleInterval() time.Duration {
	return time.Duration(cc.SampleIntervalMs) * time.Millisecond
}

// GetInitState returns the configured initial state, or the plant's
// resting state when none is set.
func (c *Config) GetInitState() []float64 {
	if len(c.InitState) > 0 {
		return append([]float64(nil), c.InitState...)
	}
	switch c.Plant {
	case "thermal":
		return []float64{20}
	case "cooler":
		return []float64{35}
	case "motor":
		return []float64{0, 0}
	default:
		return []float64{0}
	}
}
