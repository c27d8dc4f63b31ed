package plant

import (
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
)

const (
	DefaultInertia     = 0.5
	DefaultFriction    = 1.2
	DefaultTorqueConst = 0.05
)

// Motor is a position servo: state is [angle, angular velocity],
// d²θ/dt² = (TorqueConst*u - Friction*dθ/dt) / Inertia.
type Motor struct {
	Inertia     float64
	Friction    float64
	TorqueConst float64
}

func NewMotor() *Motor {
	return &Motor{
		Inertia:     DefaultInertia,
		Friction:    DefaultFriction,
		TorqueConst: DefaultTorqueConst,
	}
}

func (p *Motor) StateDim() int   { return 2 }
func (p *Motor) ControlDim() int { return 1 }

func (p *Motor) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	drive := 0.0
	if len(u) > 0 {
		drive = u[0]
	}
	omega := x[1]
	return dynamo.State{omega, (p.TorqueConst*drive - p.Friction*omega) / p.Inertia}
}

func (p *Motor) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia":  p.Inertia,
		"friction": p.Friction,
		"torque":   p.TorqueConst,
	}
}

func (p *Motor) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		if value <= 0 {
			return fmt.Errorf("%w: inertia must be positive", dynamo.ErrParameterBounds)
		}
		p.Inertia = value
	case "friction":
		p.Friction = value
	case "torque":
		p.TorqueConst = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
