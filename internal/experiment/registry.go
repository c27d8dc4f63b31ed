package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/control"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/integrators"
	"github.com/san-kum/pidsim/internal/metrics"
	"github.com/san-kum/pidsim/internal/pid"
	"github.com/san-kum/pidsim/internal/plant"
)

type Registry struct {
	plants      map[string]func() dynamo.System
	integrators map[string]func() dynamo.Integrator
	controllers map[string]func(config.ControllerConfig) (dynamo.Controller, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		plants:      make(map[string]func() dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]func(config.ControllerConfig) (dynamo.Controller, error)),
	}

	r.plants["thermal"] = func() dynamo.System { return plant.NewThermal() }
	r.plants["cooler"] = func() dynamo.System { return plant.NewCooler() }
	r.plants["tank"] = func() dynamo.System { return plant.NewTank() }
	r.plants["motor"] = func() dynamo.System { return plant.NewMotor() }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	r.controllers["pid"] = newPID
	r.controllers[""] = newPID
	r.controllers["openloop"] = func(cc config.ControllerConfig) (dynamo.Controller, error) {
		return control.NewOpenLoop(cc.OpenLoopOutput, 1), nil
	}

	return r
}

// newPID picks the signal type: "int" runs the fixed-point Controller[int16]
// the way a small MCU would, anything else Controller[float64].
func newPID(cc config.ControllerConfig) (dynamo.Controller, error) {
	dir, err := pid.ParseDirection(cc.Direction)
	if err != nil {
		return nil, err
	}
	mode, err := pid.ParseMode(cc.Mode)
	if err != nil {
		return nil, err
	}
	inv, err := control.ParseInvocation(cc.Invocation)
	if err != nil {
		return nil, err
	}

	clock := pid.NewManualClock(0)
	opts := []pid.Option{
		pid.WithClock(clock),
		pid.WithSampleInterval(cc.SampleInterval()),
		pid.WithLimits(cc.MinOutput, cc.MaxOutput),
		pid.WithDirection(dir),
		pid.WithMode(mode),
		pid.WithIntegralWindow(cc.IntegralWindow),
	}
	if cc.OptimizedIntegral {
		opts = append(opts, pid.WithOptimizedIntegral())
	}

	if cc.Signal == "int" {
		c := pid.New[int16](cc.Kp, cc.Ki, cc.Kd, opts...)
		c.Setpoint = pid.FromFloat[int16](cc.Setpoint)
		return control.NewPID(c, clock, inv), nil
	}
	c := pid.New[float64](cc.Kp, cc.Ki, cc.Kd, opts...)
	c.Setpoint = cc.Setpoint
	return control.NewPID(c, clock, inv), nil
}

func (r *Registry) GetPlant(name string) (dynamo.System, error) {
	fn, ok := r.plants[name]
	if !ok {
		return nil, fmt.Errorf("unknown plant: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(cc config.ControllerConfig) (dynamo.Controller, error) {
	fn, ok := r.controllers[cc.Type]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", cc.Type)
	}
	return fn(cc)
}

func (r *Registry) ListPlants() []string {
	names := make([]string, 0, len(r.plants))
	for name := range r.plants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the metric set for a run. Tracking metrics are
// only added when the controller follows a setpoint; open-loop runs are
// scored against the configured setpoint.
func (r *Registry) DefaultMetrics(cc config.ControllerConfig, ctrl dynamo.Controller) []dynamo.Metric {
	var sp dynamo.Tracker = staticSetpoint(cc.Setpoint)
	if t, ok := ctrl.(dynamo.Tracker); ok {
		sp = t
	}
	return []dynamo.Metric{
		metrics.NewControlEffort(),
		metrics.NewSaturation(cc.MinOutput, cc.MaxOutput),
		metrics.NewIAE(sp),
		metrics.NewRMSError(sp),
		metrics.NewErrorStdDev(sp),
		metrics.NewOvershoot(sp),
		metrics.NewSettlingTime(sp, 0.02),
	}
}

type staticSetpoint float64

func (s staticSetpoint) Setpoint() float64 { return float64(s) }
