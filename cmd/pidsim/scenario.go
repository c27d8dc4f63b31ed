package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/san-kum/pidsim/internal/automation"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/storage"
)

var (
	sweepParam   string
	sweepFrom    float64
	sweepTo      float64
	sweepSteps   int
	trials       int
	perturbation float64
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := sc.Config()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	glog.Infof("scenario %q: %d events on %s", sc.Name, len(sc.Events), cfg.Plant)
	result, err := automation.RunScenario(context.Background(), sc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final: %.4f\n", finalMeasurement(result))
	fmt.Println("\nmetrics:")
	return printMetrics(result.Metrics)
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if sweepSteps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}

	values := automation.Linspace(sweepFrom, sweepTo, sweepSteps)
	results, err := automation.RunSweep(context.Background(), base, sweepParam, values, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s on %s\n\n", sweepParam, base.Plant)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tIAE\tOVERSHOOT%%\tSETTLING\tSATURATION\n", sweepParam)
	for _, r := range results {
		status := ""
		if len(r.Errors) > 0 {
			status = "\tunstable"
		}
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.2f\t%.2fs\t%.2f%s\n",
			r.Value, r.Final, r.Metrics["iae"], r.Metrics["overshoot_pct"],
			r.Metrics["settling_time"], r.Metrics["saturation"], status)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{Base: base, Perturbation: perturbation, NumTrials: trials}
	results, err := automation.RunMonteCarlo(context.Background(), mc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	sum := automation.MonteCarloStats(results)
	fmt.Printf("monte carlo on %s: %d trials, initial state ±%g\n", base.Plant, trials, perturbation)
	fmt.Printf("  stable:   %d\n", sum.Stable)
	fmt.Printf("  unstable: %d\n", sum.Unstable)
	fmt.Printf("  iae:      %.4f ± %.4f\n", sum.MeanIAE, sum.StdIAE)
	return nil
}
