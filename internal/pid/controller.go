package pid

import (
	"math"
	"time"
)

const (
	DefaultSampleInterval = 100 * time.Millisecond
	DefaultMinOutput      = 0
	DefaultMaxOutput      = 255
)

type settings struct {
	interval  time.Duration
	minOut    float64
	maxOut    float64
	direction Direction
	mode      Mode
	window    int
	optimized bool
	clock     Clock
}

// Option configures a Controller at construction.
type Option func(*settings)

func WithSampleInterval(d time.Duration) Option {
	return func(s *settings) { s.interval = d }
}

// WithLimits sets the output (and integral) clamp bounds. Bounds outside
// the range of T are pulled in to it; integer types round them inward.
func WithLimits(min, max float64) Option {
	return func(s *settings) { s.minOut, s.maxOut = min, max }
}

func WithDirection(d Direction) Option {
	return func(s *settings) { s.direction = d }
}

func WithMode(m Mode) Option {
	return func(s *settings) { s.mode = m }
}

// WithIntegralWindow bounds the integral to a moving sum over the last n
// ticks. n <= 0 keeps the unbounded running sum.
func WithIntegralWindow(n int) Option {
	return func(s *settings) { s.window = n }
}

// WithOptimizedIntegral clamps P+D to the output limits before the integral
// is added, then bounds the integral by the headroom that clamped P+D leaves,
// scaled by Ki*dt. Skipped on ticks where Ki is zero.
func WithOptimizedIntegral() Option {
	return func(s *settings) { s.optimized = true }
}

func WithClock(c Clock) Option {
	return func(s *settings) { s.clock = c }
}

// Controller is a discrete-time PID controller. Setpoint, Input, gains and
// Integral are read and written directly by the owning loop.
type Controller[T Signal] struct {
	Setpoint T
	Input    T
	Output   T

	Kp float64
	Ki float64
	Kd float64

	// Integral is clamped to the output limits after every update. Callers
	// may zero it (e.g. on setpoint change); prefer ResetIntegral when a
	// window is configured so the buffer is cleared too.
	Integral float64

	direction Direction
	mode      Mode
	minOut    float64
	maxOut    float64
	interval  time.Duration
	dtSeconds float64
	optimized bool
	integer   bool
	lo, hi    float64

	prevInput T
	lastTick  time.Duration
	ticks     uint64
	clock     Clock
	acc       accumulator
}

// New returns a controller with the given gains. Unless overridden the
// interval is 100ms, limits are [0, 255], direction Normal and mode OnError.
func New[T Signal](kp, ki, kd float64, opts ...Option) *Controller[T] {
	s := settings{
		interval: DefaultSampleInterval,
		minOut:   DefaultMinOutput,
		maxOut:   DefaultMaxOutput,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.clock == nil {
		s.clock = NewSystemClock()
	}

	c := &Controller[T]{
		Kp:        kp,
		Ki:        ki,
		Kd:        kd,
		direction: s.direction,
		mode:      s.mode,
		optimized: s.optimized,
		clock:     s.clock,
		acc:       runningSum{},
	}
	c.lo, c.hi, c.integer = signalRange[T]()
	c.setLimits(s.minOut, s.maxOut)
	if s.window > 0 {
		c.acc = newWindow(s.window)
	}
	c.SetSampleInterval(s.interval)
	c.Arm()
	return c
}

func (c *Controller[T]) SetDirection(d Direction) { c.direction = d }
func (c *Controller[T]) Direction() Direction     { return c.direction }

func (c *Controller[T]) SetMode(m Mode) { c.mode = m }
func (c *Controller[T]) Mode() Mode     { return c.mode }

// SetLimits sets the clamp bounds used for both output and integral.
// min > max is not corrected; clamping then yields min for values below min
// and max otherwise.
func (c *Controller[T]) SetLimits(min, max T) {
	c.setLimits(float64(min), float64(max))
}

// setLimits keeps the bounds inside the range of T, and on whole numbers
// for integer types, so the clamped output always converts exactly.
func (c *Controller[T]) setLimits(min, max float64) {
	min, max = clamp(min, c.lo, c.hi), clamp(max, c.lo, c.hi)
	if c.integer {
		min, max = math.Ceil(min), math.Floor(max)
	}
	c.minOut, c.maxOut = min, max
}

func (c *Controller[T]) Limits() (min, max T) {
	return T(c.minOut), T(c.maxOut)
}

// SetSampleInterval sets the nominal period used by Update and
// UpdateOnSchedule. The interval must be positive.
func (c *Controller[T]) SetSampleInterval(d time.Duration) {
	c.interval = d
	c.dtSeconds = d.Seconds()
}

func (c *Controller[T]) SampleInterval() time.Duration { return c.interval }

// Window returns the integral window size, 0 when the sum is unbounded.
func (c *Controller[T]) Window() int { return c.acc.size() }

func (c *Controller[T]) OptimizedIntegral() bool { return c.optimized }

// Ticks counts the updates actually computed, whichever entry point ran them.
func (c *Controller[T]) Ticks() uint64 { return c.ticks }

// PreviousInput is the input seen by the most recent update.
func (c *Controller[T]) PreviousInput() T { return c.prevInput }

// SeedInput sets both Input and the previous input to v, so the next update
// sees no rate of change. Use it when a loop restarts from a new state.
func (c *Controller[T]) SeedInput(v T) {
	c.Input = v
	c.prevInput = v
}

// ResetIntegral zeroes the integral and any buffered window contributions.
func (c *Controller[T]) ResetIntegral() {
	c.Integral = 0
	c.acc.reset()
}

// Arm restarts the invocation timer from the current clock reading.
func (c *Controller[T]) Arm() {
	c.lastTick = c.clock.Now()
}

// Update computes one tick with the nominal interval and returns the new,
// clamped output.
func (c *Controller[T]) Update() T {
	err := float64(c.Setpoint) - float64(c.Input)
	rate := float64(c.prevInput) - float64(c.Input)
	if c.direction == Reverse {
		err = -err
		rate = -rate
	}
	c.prevInput = c.Input
	c.ticks++

	// integer signals hold each partial sum in T, truncating as they go
	out := 0.0
	if c.mode == OnError {
		out = c.quantize(err * c.Kp)
	}
	out = c.quantize(out + rate*c.Kd/c.dtSeconds)

	c.Integral = c.acc.add(c.Integral, err*c.Ki*c.dtSeconds)

	if c.optimized {
		out = clamp(out, c.minOut, c.maxOut)
		if c.Ki != 0 {
			scale := c.Ki * c.dtSeconds
			c.Integral = clamp(c.Integral, (c.minOut-out)/scale, (c.maxOut-out)/scale)
		}
	}

	if c.mode == OnRate {
		c.Integral += rate * c.Kp
	}
	c.Integral = clamp(c.Integral, c.minOut, c.maxOut)

	c.Output = T(clamp(c.quantize(out+c.Integral), c.minOut, c.maxOut))
	return c.Output
}

func (c *Controller[T]) quantize(v float64) float64 {
	if c.integer {
		return math.Trunc(v)
	}
	return v
}

// UpdateOnSchedule runs Update only if at least one sample interval has
// passed since the last scheduled tick. It always returns the current
// output, fresh or cached, so it can be polled from a tight loop.
func (c *Controller[T]) UpdateOnSchedule() T {
	now := c.clock.Now()
	if now-c.lastTick >= c.interval {
		c.lastTick = now
		c.Update()
	}
	return c.Output
}

// UpdateWithElapsedTime measures the time since the previous timed update,
// adopts it as the sample interval and runs Update. A zero elapsed time is a
// no-op returning the cached output.
func (c *Controller[T]) UpdateWithElapsedTime() T {
	now := c.clock.Now()
	elapsed := now - c.lastTick
	if elapsed <= 0 {
		return c.Output
	}
	c.SetSampleInterval(elapsed)
	c.lastTick = now
	return c.Update()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
