package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/pidsim/internal/dynamo"
)

type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

// lag is dx/dt = u - x, the shape of the thermal plant.
type lag struct{}

func (l *lag) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{u[0] - x[0]}
}

func (l *lag) StateDim() int   { return 1 }
func (l *lag) ControlDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	dt := 0.01
	steps := 100

	x := dynamo.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(&oscillator{}, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestStepResponse(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 5e-3},
		{"rk4", NewRK4(), 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := 0.01
			x := dynamo.State{0}
			u := dynamo.Control{1}
			for i := 0; i < 200; i++ {
				x = tt.integ.Step(&lag{}, x, u, float64(i)*dt, dt)
			}
			expected := 1 - math.Exp(-2.0)
			if math.Abs(x[0]-expected) > tt.tol {
				t.Errorf("got %.8f, expected %.8f", x[0], expected)
			}
		})
	}
}

func TestStepDoesNotAlias(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{1.0, 0.0}
	next := integ.Step(&oscillator{}, x, nil, 0, 0.1)
	if x[0] != 1.0 || x[1] != 0.0 {
		t.Errorf("input state modified: %v", x)
	}
	next[0] = 42
	again := integ.Step(&oscillator{}, x, nil, 0, 0.1)
	if again[0] == 42 {
		t.Error("step result shares memory with a previous result")
	}
}
