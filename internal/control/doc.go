// Package control adapts controllers to the [dynamo.Controller] interface so
// the simulator can close the loop around a plant:
//
//   - [PID]: wraps a pid.Controller, driving its clock from simulation time
//   - [OpenLoop]: constant output baseline
//
// # Usage
//
//	clock := pid.NewManualClock(0)
//	c := pid.New[float64](2, 0.5, 0, pid.WithClock(clock))
//	ctrl := control.NewPID(c, clock, control.Schedule)
//	s := sim.New(plant.NewThermal(), integrators.NewRK4(), ctrl)
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
