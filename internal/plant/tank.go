package plant

import (
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
)

const (
	DefaultTankArea    = 2.0
	DefaultInflowGain  = 0.02
	DefaultOutflowRate = 1.5
)

// Tank integrates inflow minus a constant drain:
// dh/dt = (InflowGain*u - Outflow) / Area. The level never goes negative.
type Tank struct {
	Area       float64
	InflowGain float64
	Outflow    float64
}

func NewTank() *Tank {
	return &Tank{
		Area:       DefaultTankArea,
		InflowGain: DefaultInflowGain,
		Outflow:    DefaultOutflowRate,
	}
}

func (p *Tank) StateDim() int   { return 1 }
func (p *Tank) ControlDim() int { return 1 }

func (p *Tank) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	valve := 0.0
	if len(u) > 0 {
		valve = u[0]
	}
	dh := (p.InflowGain*valve - p.Outflow) / p.Area
	if x[0] <= 0 && dh < 0 {
		dh = 0
	}
	return dynamo.State{dh}
}

func (p *Tank) Constrain(x dynamo.State) dynamo.State {
	if x[0] < 0 {
		x[0] = 0
	}
	return x
}

// BalancingInput is the valve opening that holds the level constant.
func (p *Tank) BalancingInput() float64 {
	return p.Outflow / p.InflowGain
}

func (p *Tank) GetParams() map[string]float64 {
	return map[string]float64{
		"area":    p.Area,
		"inflow":  p.InflowGain,
		"outflow": p.Outflow,
	}
}

func (p *Tank) SetParam(name string, value float64) error {
	switch name {
	case "area":
		if value <= 0 {
			return fmt.Errorf("%w: area must be positive", dynamo.ErrParameterBounds)
		}
		p.Area = value
	case "inflow":
		p.InflowGain = value
	case "outflow":
		p.Outflow = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
