package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/export"
	"github.com/san-kum/pidsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLANT\tTIME\tDURATION\tDT\tINTEG\tSIGNAL\tINVOCATION\tIAE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s\t%.3f\n",
			run.ID,
			run.Plant,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller.Signal,
			run.Controller.Invocation,
			run.Metrics["iae"],
		)
	}

	return w.Flush()
}

// loadRun reads a stored run back as a result plus the config it ran with.
func loadRun(runID string) (*config.Config, *dynamo.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(tr.Times) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta.Config(), tr.Result(meta.Metrics), nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(tr.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s\n", meta.Plant)
	fmt.Printf("samples: %d\n\n", len(tr.Times))

	graph := asciigraph.PlotMany([][]float64{tr.Measurements(), tr.Setpoints},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.SeriesLegends("input", "setpoint"),
		asciigraph.Caption("process variable"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(tr.Outputs,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("controller output"),
	)
	fmt.Println(graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(tr.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range tr.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	header = append(header, "setpoint", "output")
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range tr.Times {
		row := []string{strconv.FormatFloat(tr.Times[i], 'f', 6, 64)}
		for _, val := range tr.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		row = append(row,
			strconv.FormatFloat(tr.Setpoints[i], 'f', 6, 64),
			strconv.FormatFloat(tr.Outputs[i], 'f', 6, 64),
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return export.ExportJSON(outPath, cfg, result)
}

func exportPNG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	cfg, result, err := loadRun(runID)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".png"
	}
	title := fmt.Sprintf("%s: kp=%g ki=%g kd=%g", cfg.Plant, cfg.Controller.Kp, cfg.Controller.Ki, cfg.Controller.Kd)
	written, err := export.SaveRunPlots(result, title, path)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	plants := make([]string, 0, len(config.Presets))
	if len(args) > 0 {
		plants = append(plants, args[0])
	} else {
		for plant := range config.Presets {
			plants = append(plants, plant)
		}
		sort.Strings(plants)
	}

	for _, plant := range plants {
		presets := config.ListPresets(plant)
		if len(presets) == 0 {
			fmt.Printf("no presets for plant: %s\n", plant)
			continue
		}
		sort.Strings(presets)
		fmt.Printf("presets for %s:\n", plant)
		for _, p := range presets {
			cc := config.GetPreset(plant, p).Controller
			fmt.Printf("  %-12s %s kp=%g ki=%g kd=%g sp=%g\n", p, cc.Type, cc.Kp, cc.Ki, cc.Kd, cc.Setpoint)
		}
	}
	return nil
}
