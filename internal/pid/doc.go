// Package pid implements a discrete-time PID controller for embedded style
// control loops.
//
// A [Controller] holds gains, the current setpoint/input/output, timing
// configuration and the integral accumulator. A new output can be requested
// three ways:
//
//   - [Controller.Update]: one tick, unconditionally, using the nominal interval
//   - [Controller.UpdateOnSchedule]: one tick only if the interval has elapsed
//   - [Controller.UpdateWithElapsedTime]: one tick scaled by the measured interval
//
// # Usage
//
//	c := pid.New[float64](2, 0.5, 0, pid.WithSampleInterval(100*time.Millisecond))
//	c.Setpoint = 100
//	for {
//		c.Input = readSensor()
//		drive(c.UpdateOnSchedule())
//	}
//
// The signal type is chosen at build time by instantiation: Controller[int16]
// mirrors fixed-point firmware, Controller[float64] floating point.
//
// # Thread Safety
//
// Controller is NOT thread-safe. It is meant to be owned by a single control
// loop; callers sharing it between goroutines must serialize access.
package pid
