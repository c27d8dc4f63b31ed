package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/sim"
	"github.com/san-kum/pidsim/internal/storage"
)

// buildConfig resolves the run configuration. Later sources win: defaults,
// preset, config file, then flags set on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	plant := ""
	if len(args) > 0 {
		plant = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		if plant == "" {
			return nil, fmt.Errorf("--preset needs a plant")
		}
		p := config.GetPreset(plant, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(plant))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if plant != "" {
		cfg.Plant = plant
	}

	f := cmd.Flags()
	cc := &cfg.Controller
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("init") {
		cfg.InitState = initState
	}
	if f.Changed("controller") {
		cc.Type = ctrlType
	}
	if f.Changed("kp") {
		cc.Kp = kp
	}
	if f.Changed("ki") {
		cc.Ki = ki
	}
	if f.Changed("kd") {
		cc.Kd = kd
	}
	if f.Changed("setpoint") {
		cc.Setpoint = setpoint
	}
	if f.Changed("interval") {
		cc.SampleIntervalMs = intervalMs
	}
	if f.Changed("direction") {
		cc.Direction = direction
	}
	if f.Changed("mode") {
		cc.Mode = mode
	}
	if f.Changed("min") {
		cc.MinOutput = minOutput
	}
	if f.Changed("max") {
		cc.MaxOutput = maxOutput
	}
	if f.Changed("window") {
		cc.IntegralWindow = window
	}
	if f.Changed("optimized") {
		cc.OptimizedIntegral = optimized
	}
	if f.Changed("signal") {
		cc.Signal = signal
	}
	if f.Changed("invocation") {
		cc.Invocation = invocation
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.Build(experiment.NewRegistry(), cfg)
	if err != nil {
		return err
	}

	glog.Infof("running %s: %s controller, %s signal, %s invocation", cfg.Plant, cfg.Controller.Type, cfg.Controller.Signal, cfg.Controller.Invocation)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	glog.Infof("finished %d steps in %v", result.StepsTaken, elapsed)
	for _, e := range result.Errors {
		glog.Errorf("run stopped early: %v", e)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if len(result.States) > 0 {
		fmt.Printf("final: %.4f (setpoint %.4f)\n", result.States[len(result.States)-1].Measurement(), cfg.Controller.Setpoint)
	}
	fmt.Println("\nmetrics:")
	return printMetrics(result.Metrics)
}

func printMetrics(metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, metrics[name])
	}
	return w.Flush()
}

// compareLoops runs the same loop under each invocation mode and both signal
// types concurrently and prints the metrics side by side.
func compareLoops(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if base.Controller.Type == "openloop" {
		return fmt.Errorf("compare needs a pid controller")
	}

	registry := experiment.NewRegistry()
	var jobs []sim.Job
	for _, sig := range []string{"float", "int"} {
		for _, inv := range []string{"manual", "schedule", "elapsed"} {
			cfg := *base
			cfg.Controller.Signal = sig
			cfg.Controller.Invocation = inv

			exp, err := experiment.Build(registry, &cfg)
			if err != nil {
				return err
			}
			jobs = append(jobs, exp.Job(sig+"/"+inv))
		}
	}

	start := time.Now()
	results, err := sim.RunAll(context.Background(), jobs)
	if err != nil {
		return err
	}
	glog.V(1).Infof("compared %d loops in %v", len(jobs), time.Since(start))

	fmt.Printf("comparing %s (dt=%.4f, interval=%dms, duration=%.1fs)\n\n", base.Plant, base.Dt, base.Controller.SampleIntervalMs, base.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOOP\tFINAL\tIAE\tRMS\tOVERSHOOT%\tSETTLING\tSATURATION")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.2f\t%.2fs\t%.2f\n",
			jobs[i].Name,
			finalMeasurement(res),
			res.Metrics["iae"],
			res.Metrics["rms_error"],
			res.Metrics["overshoot_pct"],
			res.Metrics["settling_time"],
			res.Metrics["saturation"],
		)
	}
	return w.Flush()
}

func finalMeasurement(res *dynamo.Result) float64 {
	if len(res.States) == 0 {
		return 0
	}
	return res.States[len(res.States)-1].Measurement()
}

func benchPlant(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	durations := []float64{10.0, 60.0, 300.0}
	dts := []float64{0.001, 0.01, 0.1}

	fmt.Printf("benchmarking %s (%s signal)\n\n", base.Plant, base.Controller.Signal)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := *base
			cfg.Dt = step
			cfg.Duration = dur

			exp, err := experiment.Build(registry, &cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
