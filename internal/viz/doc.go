// Package viz provides the terminal view of a running control loop.
//
// [Model] steps a simulator in simulated real time and draws the process
// variable against the setpoint, plus the controller output, with
// asciigraph. Gains and setpoint can be tuned while the loop runs.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	Tab   - Select kp, ki, kd or setpoint
//	↑/↓   - Adjust the selected parameter
//	D / M - Toggle direction / mode
//	I     - Clear the integral
//	R     - Reset plant, controller and gains
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
