package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	outPath    string

	dt         float64
	duration   float64
	seed       int64
	integrator string
	initState  []float64

	ctrlType   string
	kp         float64
	ki         float64
	kd         float64
	setpoint   float64
	intervalMs int
	direction  string
	mode       string
	minOutput  float64
	maxOutput  float64
	window     int
	optimized  bool
	signal     string
	invocation string
)

// main registers the pidsim commands and runs the root command. It exits
// with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pidsim",
		Short:         "discrete PID controller lab",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog reads its flags from the Go flag set
			_ = flag.CommandLine.Parse(nil)
		},
	}

	_ = flag.Set("logtostderr", "true")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pidsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [plant]",
		Short: "run a closed-loop simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addLoopFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the run trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render response and output plots (.png or .svg)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.png)")

	presetsCmd := &cobra.Command{
		Use:   "presets [plant]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [plant]",
		Short: "run the loop live in the terminal and tune it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [plant]",
		Short: "compare invocation modes and signal types on the same loop",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareLoops,
	}
	addLoopFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [plant]",
		Short: "benchmark simulation throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchPlant,
	}
	addLoopFlags(benchCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario of setpoint and plant changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [plant]",
		Short: "run the loop across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addLoopFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "kp", "kp, ki, kd, setpoint or a plant parameter")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 8, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [plant]",
		Short: "run the loop from randomly perturbed initial states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addLoopFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 5, "maximum initial state offset")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportPNGCmd, presetsCmd, liveCmd, compareCmd, benchCmd, scenarioCmd, sweepCmd, monteCarloCmd)

	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func addLoopFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&dt, "dt", 0.01, "simulation timestep (s)")
	f.Float64Var(&duration, "time", 30.0, "duration (s)")
	f.Int64Var(&seed, "seed", 0, "random seed recorded with the run")
	f.StringVar(&integrator, "integrator", "rk4", "integrator: euler, rk4")
	f.Float64SliceVar(&initState, "init", nil, "initial plant state")

	f.StringVar(&ctrlType, "controller", "pid", "controller: pid, openloop")
	f.Float64Var(&kp, "kp", 2.0, "proportional gain")
	f.Float64Var(&ki, "ki", 0.5, "integral gain")
	f.Float64Var(&kd, "kd", 0.0, "derivative gain")
	f.Float64Var(&setpoint, "setpoint", 60, "setpoint")
	f.IntVar(&intervalMs, "interval", 100, "controller sample interval (ms)")
	f.StringVar(&direction, "direction", "normal", "normal or reverse")
	f.StringVar(&mode, "mode", "on_error", "on_error or on_rate")
	f.Float64Var(&minOutput, "min", 0, "minimum output")
	f.Float64Var(&maxOutput, "max", 255, "maximum output")
	f.IntVar(&window, "window", 0, "integral window in ticks, 0 for unbounded")
	f.BoolVar(&optimized, "optimized", false, "optimized integral anti-windup")
	f.StringVar(&signal, "signal", "float", "signal type: float or int (int16)")
	f.StringVar(&invocation, "invocation", "schedule", "manual, schedule or elapsed")
}
