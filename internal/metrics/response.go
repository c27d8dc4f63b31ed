package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Overshoot is the largest excursion past the setpoint, in percent of the
// initial distance to it.
type Overshoot struct {
	sp      dynamo.Tracker
	start   float64
	peak    float64
	started bool
}

func NewOvershoot(sp dynamo.Tracker) *Overshoot {
	return &Overshoot{sp: sp}
}

func (m *Overshoot) Name() string { return "overshoot_pct" }

func (m *Overshoot) Observe(x dynamo.State, u dynamo.Control, t float64) {
	y := x.Measurement()
	if !m.started {
		m.start = y
		m.started = true
	}
	target := m.sp.Setpoint()
	past := y - target
	if target < m.start {
		past = target - y
	}
	if past > m.peak {
		m.peak = past
	}
}

func (m *Overshoot) Value() float64 {
	span := math.Abs(m.sp.Setpoint() - m.start)
	if span == 0 {
		return 0
	}
	return 100 * m.peak / span
}

func (m *Overshoot) Reset() {
	m.started = false
	m.peak = 0
}

// SettlingTime is the time after which the measurement stays within Band
// (a fraction of the initial distance) of the setpoint. Runs that never
// settle report the last observed time.
type SettlingTime struct {
	Band float64

	sp      dynamo.Tracker
	start   float64
	started bool
	settled float64
	last    float64
	inside  bool
}

func NewSettlingTime(sp dynamo.Tracker, band float64) *SettlingTime {
	return &SettlingTime{sp: sp, Band: band}
}

func (m *SettlingTime) Name() string { return "settling_time" }

func (m *SettlingTime) Observe(x dynamo.State, u dynamo.Control, t float64) {
	y := x.Measurement()
	target := m.sp.Setpoint()
	if !m.started {
		m.start = y
		m.started = true
	}
	tol := m.Band * math.Abs(target-m.start)
	if tol == 0 {
		tol = m.Band
	}

	within := math.Abs(y-target) <= tol
	if within && !m.inside {
		m.settled = t
	}
	m.inside = within
	m.last = t
}

func (m *SettlingTime) Value() float64 {
	if !m.inside {
		return m.last
	}
	return m.settled
}

func (m *SettlingTime) Reset() {
	m.started = false
	m.inside = false
	m.settled = 0
	m.last = 0
}
