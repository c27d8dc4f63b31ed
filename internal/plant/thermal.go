package plant

import (
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
)

const (
	DefaultAmbient      = 20.0
	DefaultTimeConstant = 30.0
	DefaultHeaterGain   = 0.5
)

// Thermal is a first-order lag: dT/dt = (Gain*u - (T - Ambient)) / Tau.
// A negative Gain turns it into a cooler, which needs a Reverse controller.
type Thermal struct {
	Ambient float64
	Tau     float64
	Gain    float64
}

func NewThermal() *Thermal {
	return &Thermal{
		Ambient: DefaultAmbient,
		Tau:     DefaultTimeConstant,
		Gain:    DefaultHeaterGain,
	}
}

func NewCooler() *Thermal {
	t := NewThermal()
	t.Ambient = 35
	t.Gain = -DefaultHeaterGain / 2
	return t
}

func (p *Thermal) StateDim() int   { return 1 }
func (p *Thermal) ControlDim() int { return 1 }

func (p *Thermal) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	power := 0.0
	if len(u) > 0 {
		power = u[0]
	}
	return dynamo.State{(p.Gain*power - (x[0] - p.Ambient)) / p.Tau}
}

// SteadyState is the temperature reached with constant input u.
func (p *Thermal) SteadyState(u float64) float64 {
	return p.Ambient + p.Gain*u
}

func (p *Thermal) GetParams() map[string]float64 {
	return map[string]float64{
		"ambient": p.Ambient,
		"tau":     p.Tau,
		"gain":    p.Gain,
	}
}

func (p *Thermal) SetParam(name string, value float64) error {
	switch name {
	case "ambient":
		p.Ambient = value
	case "tau":
		if value <= 0 {
			return fmt.Errorf("%w: tau must be positive", dynamo.ErrParameterBounds)
		}
		p.Tau = value
	case "gain":
		p.Gain = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
