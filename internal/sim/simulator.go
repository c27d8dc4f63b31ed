package sim

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Simulator closes the loop: each step the controller sees the current plant
// state, its output is held while the integrator advances the plant by dt.
type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer

	x dynamo.State
	t float64
}

func New(dyn dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Controller() dynamo.Controller { return s.controller }
func (s *Simulator) System() dynamo.System         { return s.dyn }

// Reset rewinds the incremental state used by Step and the controller.
func (s *Simulator) Reset(x0 dynamo.State) {
	s.x = x0.Clone()
	s.t = 0
	if r, ok := s.controller.(dynamo.Resettable); ok {
		r.Reset()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
}

// State returns the current incremental state and time.
func (s *Simulator) State() (dynamo.State, float64) { return s.x, s.t }

// Step computes one control action, advances the plant by dt and returns
// the action applied.
func (s *Simulator) Step(dt float64) dynamo.Control {
	u := s.controller.Compute(s.x, s.t)

	for _, m := range s.metrics {
		m.Observe(s.x, u, s.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.x, u, s.t)
	}

	next := s.integrator.Step(s.dyn, s.x, u, s.t, dt)
	if b, ok := s.dyn.(dynamo.Bounded); ok {
		next = b.Constrain(next)
	}
	if glog.V(2) {
		glog.Infof("sim: t=%.4f y=%.4f u=%v", s.t, s.x.Measurement(), u)
	}
	s.x = next
	s.t += dt
	return u
}

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}
	tracker, tracking := s.controller.(dynamo.Tracker)
	if tracking {
		result.Setpoints = make([]float64, 0, steps)
	}

	s.Reset(x0)
	result.States = append(result.States, s.x.Clone())
	result.Times = append(result.Times, s.t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := s.t
		u := s.Step(cfg.Dt)

		if cfg.ValidateState && !s.x.IsValid() {
			err := &dynamo.SimulationError{Step: i, Time: t, State: s.x.Clone(), Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			glog.Warningf("sim: %v", err)
			break
		}

		result.StepsTaken++
		result.States = append(result.States, s.x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, s.t)
		if tracking {
			result.Setpoints = append(result.Setpoints, tracker.Setpoint())
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(x0 dynamo.State, cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: state has %d values, system expects %d", dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	return nil
}

func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, dynamo.Control, float64) bool) error {
	if err := s.validateConfig(x0, cfg); err != nil {
		return err
	}

	s.Reset(x0)
	for s.t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		x, t := s.x.Clone(), s.t
		u := s.Step(cfg.Dt)
		if !callback(x, u, t) {
			return nil
		}

		if cfg.ValidateState && !s.x.IsValid() {
			return fmt.Errorf("invalid state at t=%.4f: %w", s.t, dynamo.ErrInvalidState)
		}
	}

	return nil
}
