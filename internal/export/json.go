package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
)

type ExportData struct {
	Plant      string                  `json:"plant"`
	Integrator string                  `json:"integrator"`
	Controller config.ControllerConfig `json:"controller"`
	Dt         float64                 `json:"dt"`
	Duration   float64                 `json:"duration"`
	Steps      int                     `json:"steps"`
	Times      []float64               `json:"times"`
	States     [][]float64             `json:"states"`
	Setpoints  []float64               `json:"setpoints,omitempty"`
	Outputs    []float64               `json:"outputs"`
	Metrics    map[string]float64      `json:"metrics"`
}

func newExportData(cfg *config.Config, result *dynamo.Result) ExportData {
	data := ExportData{
		Plant:      cfg.Plant,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Setpoints:  result.Setpoints,
		Outputs:    result.Outputs(),
		Metrics:    result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func WriteJSON(w io.Writer, cfg *config.Config, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(cfg, result))
}

// ExportJSON writes the run to path, or to stdout when path is empty or "-".
func ExportJSON(path string, cfg *config.Config, result *dynamo.Result) error {
	if path == "" || path == "-" {
		return WriteJSON(os.Stdout, cfg, result)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, cfg, result)
}
