package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Saturation is the fraction of steps where the output sat on a limit.
type Saturation struct {
	min, max  float64
	saturated int
	samples   int
}

func NewSaturation(min, max float64) *Saturation {
	return &Saturation{min: min, max: max}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if len(u) > 0 && (u[0] <= s.min || u[0] >= s.max) {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
