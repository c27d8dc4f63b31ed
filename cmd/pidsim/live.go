package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	// no plant, preset or config file: let the user pick a preset
	if len(args) == 0 && preset == "" && configFile == "" {
		return viz.RunPicker(presetEntries(), func(e viz.Entry) (viz.Model, error) {
			return liveModel(registry, config.GetPreset(e.Plant, e.Preset), e.Name())
		})
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := liveModel(registry, cfg, cfg.Plant)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func liveModel(registry *experiment.Registry, cfg *config.Config, title string) (viz.Model, error) {
	if cfg == nil {
		return viz.Model{}, fmt.Errorf("no such preset")
	}
	exp, err := experiment.Build(registry, cfg)
	if err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(exp.GetSimulator(), exp.InitState(), cfg.Dt, title)
}

func presetEntries() []viz.Entry {
	var entries []viz.Entry
	for plant := range config.Presets {
		for _, name := range config.ListPresets(plant) {
			cc := config.GetPreset(plant, name).Controller
			if cc.Type == "openloop" {
				continue
			}
			entries = append(entries, viz.Entry{
				Plant:  plant,
				Preset: name,
				Info:   fmt.Sprintf("%s %s, sp=%g", cc.Signal, cc.Mode, cc.Setpoint),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}
