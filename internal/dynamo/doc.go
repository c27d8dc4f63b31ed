// Package dynamo provides the shared primitives of the closed-loop lab.
//
// A simulation couples three pieces:
//
//   - [System]: the plant, dX/dt = f(X, u, t); its measurement is x[0]
//   - [Integrator]: numerical stepper for the plant ODE
//   - [Controller]: computes u from the measured state each step
//
// [Metric] and [Observer] receive every step; [Configurable] components
// expose named parameters for live tuning.
package dynamo
