// Package plant provides processes for the controller to drive.
//
// Each plant implements [dynamo.System] with the controlled variable in
// x[0] and a single actuator input u[0]:
//
//   - [Thermal]: first-order heater or cooler (self-regulating)
//   - [Tank]: liquid level with constant drain (integrating, no natural equilibrium)
//   - [Motor]: second-order position servo
//
// All plants implement [dynamo.Configurable] for live parameter adjustment.
package plant
