package control

import (
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// OpenLoop applies a constant output regardless of the measurement. Used as
// the baseline a closed loop is compared against.
type OpenLoop struct {
	Output float64
	dim    int
}

func NewOpenLoop(output float64, dim int) *OpenLoop {
	if dim < 1 {
		dim = 1
	}
	return &OpenLoop{Output: output, dim: dim}
}

func (o *OpenLoop) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, o.dim)
	u[0] = o.Output
	return u
}

func (o *OpenLoop) GetParams() map[string]float64 {
	return map[string]float64{"output": o.Output}
}

func (o *OpenLoop) SetParam(name string, value float64) error {
	if name != "output" {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	o.Output = value
	return nil
}
