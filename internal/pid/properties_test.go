package pid_test

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidsim/internal/pid"
)

var _ = Describe("Controller", func() {
	var clock *pid.ManualClock

	BeforeEach(func() {
		clock = pid.NewManualClock(0)
	})

	Describe("clamping", func() {
		It("keeps output and integral inside the limits for random sequences", func() {
			rng := rand.New(rand.NewSource(7))

			for run := 0; run < 200; run++ {
				lo := rng.Float64()*200 - 100
				hi := lo + rng.Float64()*200

				opts := []pid.Option{
					pid.WithClock(clock),
					pid.WithLimits(lo, hi),
					pid.WithSampleInterval(time.Duration(1+rng.Intn(200)) * time.Millisecond),
					pid.WithDirection(pid.Direction(rng.Intn(2))),
					pid.WithMode(pid.Mode(rng.Intn(2))),
					pid.WithIntegralWindow(rng.Intn(5)),
				}
				if rng.Intn(2) == 0 {
					opts = append(opts, pid.WithOptimizedIntegral())
				}
				c := pid.New[float64](rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*2-1, opts...)

				for tick := 0; tick < 50; tick++ {
					c.Setpoint = rng.Float64()*400 - 200
					c.Input = rng.Float64()*400 - 200
					clock.Advance(time.Duration(1+rng.Intn(150)) * time.Millisecond)

					switch tick % 3 {
					case 0:
						c.Update()
					case 1:
						c.UpdateOnSchedule()
					default:
						c.UpdateWithElapsedTime()
					}

					Expect(c.Output).To(BeNumerically(">=", lo))
					Expect(c.Output).To(BeNumerically("<=", hi))
					Expect(c.Integral).To(BeNumerically(">=", lo))
					Expect(c.Integral).To(BeNumerically("<=", hi))
				}
			}
		})
	})

	Describe("steady state", func() {
		It("outputs the integral alone once error and rate vanish", func() {
			c := pid.New[float64](5, 2, 3, pid.WithClock(clock))
			c.Setpoint, c.Input = 50, 50
			c.Update()

			c.Integral = 40
			for i := 0; i < 10; i++ {
				Expect(c.Update()).To(Equal(40.0))
			}
			Expect(c.Integral).To(Equal(40.0))
		})

		It("saturates at the limit when the held integral exceeds it", func() {
			c := pid.New[float64](5, 2, 3, pid.WithClock(clock), pid.WithLimits(0, 30))
			c.Setpoint, c.Input = 50, 50
			c.Update()

			c.Integral = 40
			Expect(c.Update()).To(Equal(30.0))
			Expect(c.Integral).To(Equal(30.0))
		})
	})

	Describe("direction", func() {
		DescribeTable("reverse mirrors normal under symmetric limits",
			func(mode pid.Mode, window int) {
				rng := rand.New(rand.NewSource(11))
				opts := []pid.Option{
					pid.WithClock(clock),
					pid.WithLimits(-100, 100),
					pid.WithMode(mode),
					pid.WithIntegralWindow(window),
				}
				normal := pid.New[float64](1.5, 0.8, 0.05, opts...)
				reverse := pid.New[float64](1.5, 0.8, 0.05, append(opts, pid.WithDirection(pid.Reverse))...)

				for i := 0; i < 100; i++ {
					sp, in := rng.Float64()*120-60, rng.Float64()*120-60
					normal.Setpoint, normal.Input = sp, in
					reverse.Setpoint, reverse.Input = sp, in

					Expect(reverse.Update()).To(Equal(-normal.Update()))
					Expect(reverse.Integral).To(Equal(-normal.Integral))
				}
			},
			Entry("on error", pid.OnError, 0),
			Entry("on rate", pid.OnRate, 0),
			Entry("windowed", pid.OnError, 6),
		)
	})

	Describe("integral window", func() {
		It("holds exactly the last N contributions", func() {
			const n = 4
			c := pid.New[float64](0, 1, 0,
				pid.WithClock(clock),
				pid.WithLimits(-1e6, 1e6),
				pid.WithIntegralWindow(n),
			)
			Expect(c.Window()).To(Equal(n))

			errs := []float64{10, -3, 7, 22, 5, -14, 9, 1, 30}
			var contributions []float64
			for _, e := range errs {
				c.Setpoint = e
				c.Input = 0
				c.Update()
				// the derivative is off, only the setpoint moves
				contributions = append(contributions, e*0.1)

				start := len(contributions) - n
				if start < 0 {
					start = 0
				}
				want := 0.0
				for _, v := range contributions[start:] {
					want += v
				}
				Expect(c.Integral).To(BeNumerically("~", want, 1e-9))
			}
		})

		It("forgets contributions older than the window", func() {
			c := pid.New[float64](0, 1, 0,
				pid.WithClock(clock),
				pid.WithLimits(-1e6, 1e6),
				pid.WithIntegralWindow(3),
			)
			c.Setpoint = 1000
			c.Update()
			Expect(c.Integral).To(BeNumerically("~", 100, 1e-9))

			c.Setpoint = 0
			for i := 0; i < 3; i++ {
				c.Update()
			}
			Expect(c.Integral).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("derivative", func() {
		It("reacts to a step and decays once the input settles", func() {
			c := pid.New[float64](0, 0, 1, pid.WithClock(clock), pid.WithLimits(-1000, 1000))

			c.Input = 10
			Expect(c.Update()).To(BeNumerically("~", -100, 1e-9))

			Expect(c.Update()).To(Equal(0.0))
		})

		It("is clamped to the limits", func() {
			c := pid.New[float64](0, 0, 1, pid.WithClock(clock), pid.WithLimits(-50, 50))

			c.Input = -10
			Expect(c.Update()).To(Equal(50.0))
		})
	})

	Describe("UpdateOnSchedule", func() {
		It("recomputes only once per interval", func() {
			c := pid.New[float64](1, 0, 0, pid.WithClock(clock), pid.WithLimits(-1000, 1000))
			c.Setpoint = 10

			clock.Set(50 * time.Millisecond)
			Expect(c.UpdateOnSchedule()).To(Equal(0.0))

			clock.Set(100 * time.Millisecond)
			first := c.UpdateOnSchedule()
			Expect(first).To(Equal(10.0))

			c.Input = 4
			clock.Set(130 * time.Millisecond)
			Expect(c.UpdateOnSchedule()).To(Equal(first))
			Expect(c.PreviousInput()).To(Equal(0.0))

			clock.Set(200 * time.Millisecond)
			Expect(c.UpdateOnSchedule()).To(Equal(6.0))
			Expect(c.PreviousInput()).To(Equal(4.0))

			clock.Set(299 * time.Millisecond)
			c.Input = 0
			Expect(c.UpdateOnSchedule()).To(Equal(6.0))
		})
	})

	Describe("UpdateWithElapsedTime", func() {
		It("adopts the measured interval", func() {
			c := pid.New[float64](0, 1, 0, pid.WithClock(clock), pid.WithLimits(-1000, 1000))
			c.Setpoint = 10

			clock.Set(250 * time.Millisecond)
			Expect(c.UpdateWithElapsedTime()).To(BeNumerically("~", 2.5, 1e-9))
			Expect(c.SampleInterval()).To(Equal(250 * time.Millisecond))

			clock.Advance(50 * time.Millisecond)
			Expect(c.UpdateWithElapsedTime()).To(BeNumerically("~", 3.0, 1e-9))
			Expect(c.SampleInterval()).To(Equal(50 * time.Millisecond))
		})

		It("does nothing when no time has passed", func() {
			c := pid.New[float64](1, 1, 1, pid.WithClock(clock), pid.WithLimits(-1000, 1000))
			c.Setpoint = 10

			clock.Set(100 * time.Millisecond)
			out := c.UpdateWithElapsedTime()
			integral := c.Integral

			c.Input = 3
			Expect(c.UpdateWithElapsedTime()).To(Equal(out))
			Expect(c.Integral).To(Equal(integral))
			Expect(c.PreviousInput()).To(Equal(0.0))
			Expect(c.SampleInterval()).To(Equal(100 * time.Millisecond))
		})

		It("measures the first call from construction", func() {
			clock.Set(time.Hour)
			c := pid.New[float64](0, 1, 0, pid.WithClock(clock), pid.WithLimits(-1000, 1000))
			c.Setpoint = 10

			clock.Advance(100 * time.Millisecond)
			Expect(c.UpdateWithElapsedTime()).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Describe("end to end", func() {
		It("drives a converging input without leaving the limits", func() {
			c := pid.New[float64](2, 0.5, 0,
				pid.WithClock(clock),
				pid.WithSampleInterval(100*time.Millisecond),
				pid.WithLimits(0, 255),
			)
			c.Setpoint = 100
			c.Input = 0

			Expect(c.Update()).To(BeNumerically("~", 2*100+0.5*100*0.1, 1e-9))

			prevIntegral := c.Integral
			prevOutput := c.Output
			for input := 10.0; input <= 100; input += 10 {
				c.Input = input
				out := c.Update()

				Expect(out).To(BeNumerically("<=", 255))
				Expect(out).To(BeNumerically("<", prevOutput))
				Expect(c.Integral).To(BeNumerically(">=", prevIntegral))
				prevIntegral, prevOutput = c.Integral, out
			}
			Expect(c.Output).To(BeNumerically("~", c.Integral, 1e-9))
		})
	})
})
