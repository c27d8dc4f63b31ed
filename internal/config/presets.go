package config

var Presets = map[string]map[string]*Config{
	"thermal": {
		"heat": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.01, Duration: 60.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 4, Ki: 0.4, Kd: 1, Setpoint: 60,
				SampleIntervalMs: 100, MinOutput: 0, MaxOutput: 255,
				Signal: "float", Invocation: "schedule",
			},
		},
		"windup": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.01, Duration: 90.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 6, Ki: 3, Kd: 0, Setpoint: 120,
				SampleIntervalMs: 100, MinOutput: 0, MaxOutput: 255,
				Signal: "float", Invocation: "schedule",
			},
		},
		"antiwindup": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.01, Duration: 90.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 6, Ki: 3, Kd: 0, Setpoint: 120,
				SampleIntervalMs: 100, MinOutput: 0, MaxOutput: 255,
				OptimizedIntegral: true,
				Signal:            "float", Invocation: "schedule",
			},
		},
		"fixed_point": {
			Plant: "thermal", Integrator: "euler", Dt: 0.01, Duration: 60.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 4, Ki: 0.4, Kd: 0, Setpoint: 60,
				SampleIntervalMs: 100, MinOutput: 0, MaxOutput: 255,
				Signal: "int", Invocation: "schedule",
			},
		},
		"baseline": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.01, Duration: 60.0,
			Controller: ControllerConfig{
				Type: "openloop", Setpoint: 60, OpenLoopOutput: 80,
				SampleIntervalMs: 100, Signal: "float",
			},
		},
	},
	"cooler": {
		"reverse": {
			Plant: "cooler", Integrator: "rk4", Dt: 0.01, Duration: 90.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 8, Ki: 1, Kd: 0, Setpoint: 22,
				SampleIntervalMs: 100, Direction: "reverse", MinOutput: 0, MaxOutput: 255,
				Signal: "float", Invocation: "schedule",
			},
		},
	},
	"tank": {
		"fill": {
			Plant: "tank", Integrator: "euler", Dt: 0.01, Duration: 60.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 20, Ki: 2, Kd: 0, Setpoint: 1.5,
				SampleIntervalMs: 100, MinOutput: 0, MaxOutput: 255,
				Signal: "float", Invocation: "schedule",
			},
		},
		"on_rate": {
			Plant: "tank", Integrator: "euler", Dt: 0.01, Duration: 60.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 40, Ki: 4, Kd: 0, Setpoint: 1.5,
				SampleIntervalMs: 100, Mode: "on_rate", MinOutput: 0, MaxOutput: 255,
				Signal: "float", Invocation: "schedule",
			},
		},
		"windowed": {
			Plant: "tank", Integrator: "euler", Dt: 0.01, Duration: 60.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 20, Ki: 2, Kd: 0, Setpoint: 1.5,
				SampleIntervalMs: 100, MinOutput: 0, MaxOutput: 255, IntegralWindow: 50,
				Signal: "float", Invocation: "schedule",
			},
		},
	},
	"motor": {
		"position": {
			Plant: "motor", Integrator: "rk4", Dt: 0.005, Duration: 20.0,
			Controller: ControllerConfig{
				Type: "pid", Kp: 30, Ki: 1, Kd: 8, Setpoint: 3.14,
				SampleIntervalMs: 20, MinOutput: -255, MaxOutput: 255,
				Signal: "float", Invocation: "elapsed",
			},
		},
	},
}

// GetPreset returns a copy of a named preset with unset controller fields
// filled from the defaults.
func GetPreset(plant, preset string) *Config {
	plantPresets, ok := Presets[plant]
	if !ok {
		return nil
	}
	p, ok := plantPresets[preset]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.Controller.Direction == "" {
		cfg.Controller.Direction = "normal"
	}
	if cfg.Controller.Mode == "" {
		cfg.Controller.Mode = "on_error"
	}
	if cfg.Controller.Invocation == "" {
		cfg.Controller.Invocation = "schedule"
	}
	return &cfg
}

func ListPresets(plant string) []string {
	plantPresets, ok := Presets[plant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(plantPresets))
	for name := range plantPresets {
		names = append(names, name)
	}
	return names
}
