package control

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/pid"
)

// Invocation selects which controller entry point runs on each simulation step.
type Invocation uint8

const (
	// Manual calls Update every step; the step must match the sample interval.
	Manual Invocation = iota
	// Schedule calls UpdateOnSchedule every step (timer gated).
	Schedule
	// Elapsed calls UpdateWithElapsedTime every step (adaptive interval).
	Elapsed
)

func (i Invocation) String() string {
	switch i {
	case Manual:
		return "manual"
	case Schedule:
		return "schedule"
	case Elapsed:
		return "elapsed"
	}
	return fmt.Sprintf("invocation(%d)", uint8(i))
}

func ParseInvocation(s string) (Invocation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "schedule", "timer":
		return Schedule, nil
	case "manual":
		return Manual, nil
	case "elapsed", "now":
		return Elapsed, nil
	}
	return Schedule, fmt.Errorf("unknown invocation: %s", s)
}

// Snapshot is a read-only view of the controller after the last step.
type Snapshot struct {
	Setpoint  float64
	Input     float64
	Output    float64
	Integral  float64
	Kp        float64
	Ki        float64
	Kd        float64
	Direction pid.Direction
	Mode      pid.Mode
	Interval  time.Duration
	Ticks     uint64
}

// PID drives a pid.Controller from simulation time. The embedded controller
// reads x[0] as its input; its clock follows the simulation clock, so the
// scheduled and elapsed-time modes see simulated, not wall, time.
type PID[T pid.Signal] struct {
	ctrl       *pid.Controller[T]
	clock      *pid.ManualClock
	invocation Invocation
	saturated  bool
	seed       bool
}

// NewPID wraps a controller built with pid.New. clock must be the clock the
// controller was constructed with.
func NewPID[T pid.Signal](ctrl *pid.Controller[T], clock *pid.ManualClock, invocation Invocation) *PID[T] {
	return &PID[T]{
		ctrl:       ctrl,
		clock:      clock,
		invocation: invocation,
	}
}

func (p *PID[T]) Controller() *pid.Controller[T] { return p.ctrl }

func (p *PID[T]) Invocation() Invocation { return p.invocation }

func (p *PID[T]) Compute(x dynamo.State, t float64) dynamo.Control {
	p.clock.Set(secondsToDuration(t))
	in := pid.FromFloat[T](x.Measurement())
	if p.seed {
		p.ctrl.SeedInput(in)
		p.seed = false
	} else {
		p.ctrl.Input = in
	}

	var out T
	switch p.invocation {
	case Manual:
		out = p.ctrl.Update()
	case Schedule:
		out = p.ctrl.UpdateOnSchedule()
	case Elapsed:
		out = p.ctrl.UpdateWithElapsedTime()
	}

	min, max := p.ctrl.Limits()
	saturated := out <= min || out >= max
	if saturated != p.saturated && glog.V(1) {
		if saturated {
			glog.Infof("pid: output saturated at %v (t=%.3fs, integral=%.3f)", out, t, p.ctrl.Integral)
		} else {
			glog.Infof("pid: output left saturation at %v (t=%.3fs)", out, t)
		}
	}
	p.saturated = saturated

	return dynamo.Control{float64(out)}
}

func (p *PID[T]) Setpoint() float64 { return float64(p.ctrl.Setpoint) }

// Reset rewinds the clock to simulation time zero, clears the integral and
// output and re-arms the timer. The next measurement also seeds the previous
// input, so a restart from a new state gives no derivative kick.
func (p *PID[T]) Reset() {
	p.clock.Set(0)
	p.ctrl.ResetIntegral()
	p.ctrl.Output = 0
	p.ctrl.Arm()
	p.saturated = false
	p.seed = true
}

// ResetIntegral clears the accumulated integral without touching the timer.
func (p *PID[T]) ResetIntegral() { p.ctrl.ResetIntegral() }

func (p *PID[T]) Snapshot() Snapshot {
	return Snapshot{
		Setpoint:  float64(p.ctrl.Setpoint),
		Input:     float64(p.ctrl.Input),
		Output:    float64(p.ctrl.Output),
		Integral:  p.ctrl.Integral,
		Kp:        p.ctrl.Kp,
		Ki:        p.ctrl.Ki,
		Kd:        p.ctrl.Kd,
		Direction: p.ctrl.Direction(),
		Mode:      p.ctrl.Mode(),
		Interval:  p.ctrl.SampleInterval(),
		Ticks:     p.ctrl.Ticks(),
	}
}

// GetParams returns tunable parameters for live adjustment
func (p *PID[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":       p.ctrl.Kp,
		"ki":       p.ctrl.Ki,
		"kd":       p.ctrl.Kd,
		"setpoint": float64(p.ctrl.Setpoint),
	}
}

// SetParam adjusts a PID parameter
func (p *PID[T]) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.ctrl.Kp = value
	case "ki":
		p.ctrl.Ki = value
	case "kd":
		p.ctrl.Kd = value
	case "setpoint":
		p.ctrl.Setpoint = pid.FromFloat[T](value)
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}

// ToggleDirection flips between Normal and Reverse.
func (p *PID[T]) ToggleDirection() {
	if p.ctrl.Direction() == pid.Normal {
		p.ctrl.SetDirection(pid.Reverse)
	} else {
		p.ctrl.SetDirection(pid.Normal)
	}
}

// ToggleMode flips between OnError and OnRate.
func (p *PID[T]) ToggleMode() {
	if p.ctrl.Mode() == pid.OnError {
		p.ctrl.SetMode(pid.OnRate)
	} else {
		p.ctrl.SetMode(pid.OnError)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
