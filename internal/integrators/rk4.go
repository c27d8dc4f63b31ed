package integrators

import "github.com/san-kum/pidsim/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta method. The control input is
// held constant across the step (zero-order hold), as an actuator would.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

// stage evaluates the derivative at x + h*prev into r.k[idx].
func (r *RK4) stage(idx int, dyn dynamo.System, x dynamo.State, prev dynamo.State, u dynamo.Control, t, h float64) {
	in := x
	if prev != nil {
		for i := range x {
			r.scratch[i] = x[i] + h*prev[i]
		}
		in = r.scratch
	}
	copy(r.k[idx], dyn.Derive(in, u, t+h))
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	r.stage(0, dyn, x, nil, u, t, 0)
	r.stage(1, dyn, x, r.k[0], u, t, dt/2)
	r.stage(2, dyn, x, r.k[1], u, t, dt/2)
	r.stage(3, dyn, x, r.k[2], u, t, dt)

	next := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		next[i] = x[i] + dt6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
