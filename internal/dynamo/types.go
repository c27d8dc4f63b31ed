package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Measurement is the plant output seen by the controller.
func (s State) Measurement() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

type Control []float64

// System is a plant: dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Bounded plants constrain their state after each integration step
// (e.g. a tank level cannot go negative).
type Bounded interface {
	Constrain(x State) State
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type Controller interface {
	Compute(x State, t float64) Control
}

// Resettable controllers are rewound whenever a run restarts.
type Resettable interface {
	Reset()
}

// Tracker is implemented by controllers that follow a setpoint.
type Tracker interface {
	Setpoint() float64
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Controls   []Control
	Setpoints  []float64
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Outputs returns the first control channel of every step.
func (r *Result) Outputs() []float64 {
	out := make([]float64, len(r.Controls))
	for i, u := range r.Controls {
		if len(u) > 0 {
			out[i] = u[0]
		}
	}
	return out
}

// Measurements returns x[0] of every recorded state.
func (r *Result) Measurements() []float64 {
	out := make([]float64, len(r.States))
	for i, x := range r.States {
		out[i] = x.Measurement()
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
