package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/sim"
)

// Scenario defines a scripted run: a base configuration plus timed changes
// to the controller or the plant (setpoint steps, load disturbances).
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Plant       string  `yaml:"plant"`
	Preset      string  `yaml:"preset"`
	Duration    float64 `yaml:"duration"`
	Events      []Event `yaml:"events"`
}

// Event sets Param on Target ("controller" or "plant") once simulated time
// reaches At.
type Event struct {
	At     float64 `yaml:"at"`
	Target string  `yaml:"target"`
	Param  string  `yaml:"param"`
	Value  float64 `yaml:"value"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// Config resolves the base configuration of the scenario.
func (s *Scenario) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Plant != "" {
		cfg.Plant = s.Plant
	}
	if s.Preset != "" {
		p := config.GetPreset(cfg.Plant, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s/%s", cfg.Plant, s.Preset)
		}
		cfg = p
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	return cfg, nil
}

// Script applies scenario events during a run. It runs as a simulator
// observer, after the controller has computed the step that reaches an
// event's time, so the change is seen from the following step on.
type Script struct {
	events []Event
	next   int
	ctrl   dynamo.Configurable
	plant  dynamo.Configurable
	err    error
}

// NewScript orders events by time. Either target may be nil, in which case
// events addressed to it fail.
func NewScript(events []Event, ctrl, plant dynamo.Configurable) *Script {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Script{events: sorted, ctrl: ctrl, plant: plant}
}

func (s *Script) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	for s.next < len(s.events) && s.events[s.next].At <= t {
		e := s.events[s.next]
		s.next++
		if err := s.apply(e); err != nil {
			glog.Warningf("scenario: t=%.3f: %v", t, err)
			if s.err == nil {
				s.err = err
			}
			continue
		}
		glog.V(1).Infof("scenario: t=%.3f %s.%s = %g", t, e.Target, e.Param, e.Value)
	}
}

func (s *Script) apply(e Event) error {
	var target dynamo.Configurable
	switch e.Target {
	case "controller", "":
		target = s.ctrl
	case "plant":
		target = s.plant
	default:
		return fmt.Errorf("unknown event target: %s", e.Target)
	}
	if target == nil {
		return fmt.Errorf("%s has no tunable parameters", e.Target)
	}
	return target.SetParam(e.Param, e.Value)
}

// Err returns the first event that could not be applied.
func (s *Script) Err() error { return s.err }

// Pending is the number of events not yet reached.
func (s *Script) Pending() int { return len(s.events) - s.next }

// RunScenario builds the scenario's experiment, attaches its script and
// runs it once.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) (*dynamo.Result, error) {
	cfg, err := scenario.Config()
	if err != nil {
		return nil, err
	}
	exp, err := experiment.Build(registry, cfg)
	if err != nil {
		return nil, err
	}

	s := exp.GetSimulator()
	ctrl, _ := s.Controller().(dynamo.Configurable)
	plant, _ := s.System().(dynamo.Configurable)
	script := NewScript(scenario.Events, ctrl, plant)
	s.AddObserver(script)

	result, err := exp.Run(ctx)
	if err != nil {
		return result, err
	}
	if err := script.Err(); err != nil {
		return result, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return result, nil
}

// SweepResult holds the outcome of one value of a parameter sweep.
type SweepResult struct {
	Value   float64
	Final   float64
	Metrics map[string]float64
	Errors  []error
}

// RunSweep runs base once per value of param, concurrently. Controller
// parameters (kp, ki, kd, setpoint) go to the controller config, anything
// else is treated as a plant parameter.
func RunSweep(ctx context.Context, base *config.Config, param string, values []float64, registry *experiment.Registry) ([]SweepResult, error) {
	jobs := make([]sim.Job, 0, len(values))
	for _, v := range values {
		cfg := *base
		switch param {
		case "kp":
			cfg.Controller.Kp = v
		case "ki":
			cfg.Controller.Ki = v
		case "kd":
			cfg.Controller.Kd = v
		case "setpoint":
			cfg.Controller.Setpoint = v
		default:
			params := make(map[string]float64, len(base.PlantParams)+1)
			for k, pv := range base.PlantParams {
				params[k] = pv
			}
			params[param] = v
			cfg.PlantParams = params
		}

		exp, err := experiment.Build(registry, &cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", param, v, err)
		}
		jobs = append(jobs, exp.Job(fmt.Sprintf("%s=%g", param, v)))
	}

	results, err := sim.RunAll(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, res := range results {
		out[i] = SweepResult{
			Value:   values[i],
			Final:   final(res),
			Metrics: res.Metrics,
			Errors:  res.Errors,
		}
	}
	return out, nil
}

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	step := (max - min) / float64(n-1)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = min + float64(i)*step
	}
	return vals
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
}

// MonteCarloResult holds the outcome of one perturbed trial.
type MonteCarloResult struct {
	TrialID   int
	InitState dynamo.State
	Final     float64
	IAE       float64
	Stable    bool
}

// MonteCarloSummary aggregates the trials.
type MonteCarloSummary struct {
	Stable   int
	Unstable int
	MeanIAE  float64
	StdIAE   float64
}

// RunMonteCarlo runs trials with the initial state shifted uniformly by up
// to ±Perturbation. The base seed makes the perturbations reproducible; a
// zero seed draws a fresh one.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	seed := cfg.Base.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	baseState := cfg.Base.GetInitState()

	jobs := make([]sim.Job, 0, cfg.NumTrials)
	inits := make([]dynamo.State, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		init := make([]float64, len(baseState))
		for i, v := range baseState {
			init[i] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		trialCfg := *cfg.Base
		trialCfg.InitState = init
		exp, err := experiment.Build(registry, &trialCfg)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, exp.Job(fmt.Sprintf("trial-%d", trial)))
		inits = append(inits, init)
	}

	results, err := sim.RunAll(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(results))
	for i, res := range results {
		f := final(res)
		out[i] = MonteCarloResult{
			TrialID:   i,
			InitState: inits[i],
			Final:     f,
			IAE:       res.Metrics["iae"],
			Stable:    len(res.Errors) == 0 && math.Abs(f) < 1e6,
		}
	}
	return out, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results.
// The IAE spread only covers stable trials.
func MonteCarloStats(results []MonteCarloResult) MonteCarloSummary {
	var sum MonteCarloSummary
	iae := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Stable {
			sum.Stable++
			iae = append(iae, r.IAE)
		} else {
			sum.Unstable++
		}
	}
	switch len(iae) {
	case 0:
	case 1:
		sum.MeanIAE = iae[0]
	default:
		sum.MeanIAE, sum.StdIAE = stat.MeanStdDev(iae, nil)
	}
	return sum
}

func final(res *dynamo.Result) float64 {
	if len(res.States) == 0 {
		return 0
	}
	return res.States[len(res.States)-1].Measurement()
}
