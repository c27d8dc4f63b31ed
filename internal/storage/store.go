package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                  `json:"id"`
	Plant      string                  `json:"plant"`
	Timestamp  time.Time               `json:"timestamp"`
	Seed       int64                   `json:"seed"`
	Dt         float64                 `json:"dt"`
	Duration   float64                 `json:"duration"`
	Integrator string                  `json:"integrator"`
	Controller config.ControllerConfig `json:"controller"`
	Steps      int                     `json:"steps"`
	Metrics    map[string]float64      `json:"metrics"`
	Errors     []string                `json:"errors,omitempty"`
}

// Config rebuilds the configuration a run was started with.
func (m *RunMetadata) Config() *config.Config {
	return &config.Config{
		Plant:      m.Plant,
		Integrator: m.Integrator,
		Dt:         m.Dt,
		Duration:   m.Duration,
		Seed:       m.Seed,
		Controller: m.Controller,
	}
}

// Trace is the per-step record of a run as stored in trace.csv. Setpoints
// and Outputs have one entry per state; the final state repeats the last
// applied action.
type Trace struct {
	Times     []float64
	States    [][]float64
	Setpoints []float64
	Outputs   []float64
}

func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(cfg.Plant, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Plant:      cfg.Plant,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Steps:      result.StepsTaken,
		Metrics:    result.Metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(plant string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%s", plant, now.Format("20060102_150405"))
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	for i := range result.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	header = append(header, "setpoint", "output")
	if err := w.Write(header); err != nil {
		return err
	}

	outputs := result.Outputs()
	for i := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, val := range result.States[i] {
			row = append(row, formatFloat(val))
		}
		row = append(row, formatFloat(holdLast(result.Setpoints, i)), formatFloat(holdLast(outputs, i)))

		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func holdLast(vals []float64, i int) float64 {
	if len(vals) == 0 {
		return 0
	}
	if i >= len(vals) {
		return vals[len(vals)-1]
	}
	return vals[i]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	tr := &Trace{}
	if len(records) < 2 {
		return tr, nil
	}

	// time, x0..xn, setpoint, output
	width := len(records[0])
	if width < 4 {
		return nil, fmt.Errorf("run %s: trace has %d columns", runID, width)
	}
	dim := width - 3

	for line, record := range records[1:] {
		vals := make([]float64, width)
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: line %d: %w", runID, line+2, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, vals[1:1+dim])
		tr.Setpoints = append(tr.Setpoints, vals[1+dim])
		tr.Outputs = append(tr.Outputs, vals[2+dim])
	}
	return tr, nil
}

// Measurements returns x0 of every row.
func (t *Trace) Measurements() []float64 {
	out := make([]float64, len(t.States))
	for i, x := range t.States {
		if len(x) > 0 {
			out[i] = x[0]
		}
	}
	return out
}

// Result rebuilds a simulation result from the trace so stored runs can be
// exported or plotted like fresh ones.
func (t *Trace) Result(metrics map[string]float64) *dynamo.Result {
	res := &dynamo.Result{
		Times:      t.Times,
		Setpoints:  t.Setpoints,
		Metrics:    metrics,
		StepsTaken: len(t.Times) - 1,
	}
	for i, x := range t.States {
		res.States = append(res.States, dynamo.State(x))
		if i < len(t.States)-1 {
			res.Controls = append(res.Controls, dynamo.Control{t.Outputs[i]})
		}
	}
	if res.StepsTaken < 0 {
		res.StepsTaken = 0
	}
	return res
}
