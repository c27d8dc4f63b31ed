package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// errorSeries records setpoint - measurement at every step.
type errorSeries struct {
	sp    dynamo.Tracker
	errs  []float64
	times []float64
}

func (e *errorSeries) observe(x dynamo.State, t float64) {
	e.errs = append(e.errs, e.sp.Setpoint()-x.Measurement())
	e.times = append(e.times, t)
}

func (e *errorSeries) reset() {
	e.errs = e.errs[:0]
	e.times = e.times[:0]
}

// IAE is the integral of absolute tracking error over time.
type IAE struct{ errorSeries }

func NewIAE(sp dynamo.Tracker) *IAE {
	return &IAE{errorSeries{sp: sp}}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(x dynamo.State, u dynamo.Control, t float64) { m.observe(x, t) }

func (m *IAE) Value() float64 {
	total := 0.0
	for i := 1; i < len(m.errs); i++ {
		total += math.Abs(m.errs[i-1]) * (m.times[i] - m.times[i-1])
	}
	return total
}

func (m *IAE) Reset() { m.reset() }

// RMSError is the root mean square tracking error.
type RMSError struct{ errorSeries }

func NewRMSError(sp dynamo.Tracker) *RMSError {
	return &RMSError{errorSeries{sp: sp}}
}

func (m *RMSError) Name() string { return "rms_error" }

func (m *RMSError) Observe(x dynamo.State, u dynamo.Control, t float64) { m.observe(x, t) }

func (m *RMSError) Value() float64 {
	if len(m.errs) == 0 {
		return 0
	}
	sq := make([]float64, len(m.errs))
	for i, e := range m.errs {
		sq[i] = e * e
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

func (m *RMSError) Reset() { m.reset() }

// ErrorStdDev is the spread of the tracking error; a low value with a
// non-zero RMS error points at a steady offset rather than oscillation.
type ErrorStdDev struct{ errorSeries }

func NewErrorStdDev(sp dynamo.Tracker) *ErrorStdDev {
	return &ErrorStdDev{errorSeries{sp: sp}}
}

func (m *ErrorStdDev) Name() string { return "error_stddev" }

func (m *ErrorStdDev) Observe(x dynamo.State, u dynamo.Control, t float64) { m.observe(x, t) }

func (m *ErrorStdDev) Value() float64 {
	if len(m.errs) < 2 {
		return 0
	}
	_, std := stat.MeanStdDev(m.errs, nil)
	return std
}

func (m *ErrorStdDev) Reset() { m.reset() }
