package pid

import (
	"math"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	c := New[float64](1, 2, 3, WithClock(NewManualClock(0)))

	if c.SampleInterval() != 100*time.Millisecond {
		t.Errorf("expected 100ms interval, got %v", c.SampleInterval())
	}
	min, max := c.Limits()
	if min != 0 || max != 255 {
		t.Errorf("expected limits [0, 255], got [%v, %v]", min, max)
	}
	if c.Direction() != Normal || c.Mode() != OnError {
		t.Errorf("expected normal/on_error, got %v/%v", c.Direction(), c.Mode())
	}
	if c.Window() != 0 || c.OptimizedIntegral() {
		t.Error("window and optimized integral should be off by default")
	}
}

func TestWindowSumMatchesIntegral(t *testing.T) {
	c := New[float64](0, 2.5, 0,
		WithClock(NewManualClock(0)),
		WithLimits(-1e6, 1e6),
		WithIntegralWindow(5),
	)
	w, ok := c.acc.(*window)
	if !ok {
		t.Fatalf("expected window accumulator, got %T", c.acc)
	}

	for i := 0; i < 23; i++ {
		c.Setpoint = float64((i*37)%19) - 9
		c.Update()
		if math.Abs(w.sum()-c.Integral) > 1e-9 {
			t.Fatalf("tick %d: window sum %v != integral %v", i, w.sum(), c.Integral)
		}
	}
}

func TestResetIntegralClearsWindow(t *testing.T) {
	c := New[float64](0, 1, 0, WithClock(NewManualClock(0)), WithIntegralWindow(3))
	c.Setpoint = 50
	c.Update()
	c.Update()

	c.ResetIntegral()
	if c.Integral != 0 {
		t.Errorf("expected zero integral, got %v", c.Integral)
	}
	if s := c.acc.(*window).sum(); s != 0 {
		t.Errorf("expected empty window, got sum %v", s)
	}

	c.Setpoint = 0
	for i := 0; i < 3; i++ {
		c.Update()
	}
	if c.Integral != 0 {
		t.Errorf("stale contributions leaked back: %v", c.Integral)
	}
}

func TestOnRateAccumulates(t *testing.T) {
	c := New[float64](1, 0, 0, WithClock(NewManualClock(0)), WithMode(OnRate))

	c.Update()
	c.Input = -5
	if out := c.Update(); out != 5 {
		t.Errorf("expected rate action 5, got %v", out)
	}
	// input steady: rate is 0 but the accumulated action stays
	if out := c.Update(); out != 5 {
		t.Errorf("expected held output 5, got %v", out)
	}
	c.Input = -2
	if out := c.Update(); out != 2 {
		t.Errorf("expected output 2 after rise, got %v", out)
	}
}

func TestOnErrorIgnoresRateInProportional(t *testing.T) {
	c := New[float64](2, 0, 0, WithClock(NewManualClock(0)), WithLimits(-100, 100))
	c.Setpoint = 10
	c.Input = 4

	if out := c.Update(); out != 12 {
		t.Errorf("expected 12, got %v", out)
	}
	if c.Integral != 0 {
		t.Errorf("integral should stay 0 with Ki=0, got %v", c.Integral)
	}
}

func TestOptimizedIntegral(t *testing.T) {
	tests := []struct {
		name         string
		ki           float64
		optimized    bool
		wantIntegral float64
		wantOutput   float64
	}{
		{"plain", 1, false, 10, 100},
		{"optimized binds at headroom", 1, true, 0, 100},
		{"optimized skipped for zero ki", 0, true, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{WithClock(NewManualClock(0)), WithLimits(0, 100)}
			if tt.optimized {
				opts = append(opts, WithOptimizedIntegral())
			}
			c := New[float64](2, tt.ki, 0, opts...)
			c.Setpoint = 100

			out := c.Update()
			if math.Abs(c.Integral-tt.wantIntegral) > 1e-9 {
				t.Errorf("integral = %v, want %v", c.Integral, tt.wantIntegral)
			}
			if out != tt.wantOutput {
				t.Errorf("output = %v, want %v", out, tt.wantOutput)
			}
		})
	}
}

func TestOptimizedIntegralTinyKi(t *testing.T) {
	clock := NewManualClock(0)
	plain := New[float64](0.3, 1e-12, 0, WithClock(clock), WithLimits(-50, 50))
	opt := New[float64](0.3, 1e-12, 0, WithClock(clock), WithLimits(-50, 50), WithOptimizedIntegral())

	for i := 0; i < 100; i++ {
		sp := float64(i%7)*40 - 120
		plain.Setpoint, opt.Setpoint = sp, sp
		plain.Update()
		out := opt.Update()

		if math.IsNaN(opt.Integral) || math.IsInf(opt.Integral, 0) {
			t.Fatalf("tick %d: integral not finite: %v", i, opt.Integral)
		}
		if out < -50 || out > 50 {
			t.Fatalf("tick %d: output %v outside limits", i, out)
		}
		// bounds of ~1e13 never bind, so the integral tracks the plain one
		if opt.Integral != plain.Integral {
			t.Fatalf("tick %d: integral %v, plain %v", i, opt.Integral, plain.Integral)
		}
	}
}

func TestIntegerSignal(t *testing.T) {
	c := New[int16](0.5, 0, 0, WithClock(NewManualClock(0)))
	c.SetLimits(-100, 100)
	c.Setpoint = 7

	if out := c.Update(); out != 3 {
		t.Errorf("expected truncated 3, got %d", out)
	}

	c.Setpoint = 1000
	if out := c.Update(); out != 100 {
		t.Errorf("expected clamp at 100, got %d", out)
	}
	min, max := c.Limits()
	if min != -100 || max != 100 {
		t.Errorf("limits = [%d, %d]", min, max)
	}
}

func TestIntegerPartialsTruncate(t *testing.T) {
	c := New[int16](0.5, 1, 0, WithClock(NewManualClock(0)))
	c.Setpoint = 7

	// P = 3.5 is held as 3 before the 0.7 integral is added
	if out := c.Update(); out != 3 {
		t.Errorf("expected 3, got %d", out)
	}
	if math.Abs(c.Integral-0.7) > 1e-9 {
		t.Errorf("integral should stay fractional, got %v", c.Integral)
	}
}

func TestLimitsFitSignalType(t *testing.T) {
	c := New[int8](2, 0, 0, WithClock(NewManualClock(0)))
	min, max := c.Limits()
	if min != 0 || max != 127 {
		t.Errorf("default limits should shrink to [0, 127], got [%d, %d]", min, max)
	}
	c.Setpoint = 100
	if out := c.Update(); out != 127 {
		t.Errorf("expected 127, got %d", out)
	}

	wide := New[int8](2, 0, 0, WithClock(NewManualClock(0)), WithLimits(-1000, 1000))
	wide.Setpoint = -100
	if out := wide.Update(); out != -128 {
		t.Errorf("expected -128, got %d", out)
	}

	frac := New[int16](1, 0, 0, WithClock(NewManualClock(0)), WithLimits(-2.5, 2.5))
	if min, max := frac.Limits(); min != -2 || max != 2 {
		t.Errorf("fractional limits should round inward, got [%d, %d]", min, max)
	}

	big := New[int64](1, 0, 0, WithClock(NewManualClock(0)), WithLimits(-1e30, 1e30))
	big.Setpoint = math.MaxInt64
	if out := big.Update(); out <= 0 {
		t.Errorf("expected a large positive output, got %d", out)
	}
}

func TestFromFloat(t *testing.T) {
	if v := FromFloat[int16](40000); v != math.MaxInt16 {
		t.Errorf("expected %d, got %d", math.MaxInt16, v)
	}
	if v := FromFloat[int16](-1e9); v != math.MinInt16 {
		t.Errorf("expected %d, got %d", math.MinInt16, v)
	}
	if v := FromFloat[int16](20.9); v != 20 {
		t.Errorf("expected 20, got %d", v)
	}
	if v := FromFloat[int8](math.NaN()); v != 0 {
		t.Errorf("expected 0 for NaN, got %d", v)
	}
	if v := FromFloat[float64](1.5); v != 1.5 {
		t.Errorf("expected 1.5, got %v", v)
	}
	if v := FromFloat[float32](1e300); v != math.MaxFloat32 {
		t.Errorf("expected max float32, got %v", v)
	}
}

func TestSeedInputSuppressesKick(t *testing.T) {
	c := New[float64](0, 0, 1, WithClock(NewManualClock(0)), WithLimits(-1000, 1000))
	c.Input = 80
	c.Update()

	c.SeedInput(20)
	if out := c.Update(); out != 0 {
		t.Errorf("expected no derivative after seeding, got %v", out)
	}
	if c.PreviousInput() != 20 {
		t.Errorf("expected previous input 20, got %v", c.PreviousInput())
	}
}

func TestPreviousInputTracksLastUpdate(t *testing.T) {
	clock := NewManualClock(0)
	c := New[float64](1, 0, 1, WithClock(clock))

	c.Input = 3
	c.Update()
	c.Input = 9
	if c.PreviousInput() != 3 {
		t.Errorf("expected previous input 3 before update, got %v", c.PreviousInput())
	}
	c.Update()
	if c.PreviousInput() != 9 {
		t.Errorf("expected previous input 9, got %v", c.PreviousInput())
	}
}

func TestArmRestartsSchedule(t *testing.T) {
	clock := NewManualClock(0)
	c := New[float64](1, 0, 0, WithClock(clock), WithLimits(-10, 10))
	c.Setpoint = 5

	clock.Set(time.Second)
	c.Arm()
	clock.Advance(50 * time.Millisecond)
	if out := c.UpdateOnSchedule(); out != 0 {
		t.Errorf("schedule fired early after Arm, got %v", out)
	}
	clock.Advance(50 * time.Millisecond)
	if out := c.UpdateOnSchedule(); out != 5 {
		t.Errorf("expected 5, got %v", out)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"normal", Normal, false},
		{"REVERSE", Reverse, false},
		{"", Normal, false},
		{"sideways", Normal, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"on_error", OnError, false},
		{"rate", OnRate, false},
		{"On_Rate", OnRate, false},
		{"velocity", OnError, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkUpdate(b *testing.B) {
	c := New[float64](2, 0.5, 0.1, WithClock(NewManualClock(0)))
	c.Setpoint = 100

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Input = float64(i % 100)
		c.Update()
	}
}

func BenchmarkUpdateWindowInt16(b *testing.B) {
	c := New[int16](2, 0.5, 0.1, WithClock(NewManualClock(0)), WithIntegralWindow(32))
	c.Setpoint = 100

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Input = int16(i % 100)
		c.Update()
	}
}
