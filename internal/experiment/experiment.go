package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/golang/glog"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Build validates cfg and wires plant, integrator, controller and the
// default metrics from the registry.
func Build(r *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dyn, err := r.GetPlant(cfg.Plant)
	if err != nil {
		return nil, err
	}
	if c, ok := dyn.(dynamo.Configurable); ok {
		for name, v := range cfg.PlantParams {
			if err := c.SetParam(name, v); err != nil {
				return nil, fmt.Errorf("plant %s: %w", cfg.Plant, err)
			}
		}
	}
	integrator, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := r.GetController(cfg.Controller)
	if err != nil {
		return nil, err
	}

	if cfg.Controller.Invocation == "manual" {
		dt := time.Duration(math.Round(cfg.Dt * float64(time.Second)))
		if dt != cfg.Controller.SampleInterval() {
			glog.Warningf("manual invocation updates every %v but the controller assumes %v", dt, cfg.Controller.SampleInterval())
		}
	}

	e := New(cfg)
	if err := e.Setup(dyn, integrator, ctrl, r.DefaultMetrics(cfg.Controller, ctrl)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) Setup(dyn dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller, metrics []dynamo.Metric) error {
	e.simulator = sim.New(dyn, integrator, controller)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) InitState() dynamo.State {
	return dynamo.State(e.cfg.GetInitState())
}

func (e *Experiment) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		ValidateState: true,
	}
}

// Job packages the experiment for sim.RunAll.
func (e *Experiment) Job(name string) sim.Job {
	return sim.Job{Name: name, Simulator: e.simulator, X0: e.InitState(), Config: e.SimConfig()}
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.InitState(), e.SimConfig())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
