package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States:     []dynamo.State{{20}, {25}, {31}, {36}},
		Controls:   []dynamo.Control{{255}, {200}, {120}},
		Setpoints:  []float64{60, 60, 60},
		Times:      []float64{0, 0.1, 0.2, 0.3},
		StepsTaken: 3,
		Metrics:    map[string]float64{"iae": 12.5},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, config.DefaultConfig(), sampleResult()))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "thermal", data.Plant)
	assert.Equal(t, 3, data.Steps)
	assert.Equal(t, []float64{255, 200, 120}, data.Outputs)
	assert.Equal(t, [][]float64{{20}, {25}, {31}, {36}}, data.States)
	assert.Equal(t, 12.5, data.Metrics["iae"])
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, config.DefaultConfig(), sampleResult()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSaveRunPlots(t *testing.T) {
	for _, ext := range []string{".png", ".svg"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plots", "response"+ext)

			written, err := SaveRunPlots(sampleResult(), "thermal", path)
			require.NoError(t, err)
			require.Len(t, written, 2)

			for _, p := range written {
				info, err := os.Stat(p)
				require.NoError(t, err)
				assert.Positive(t, info.Size(), p)
			}
		})
	}
}

func TestResponsePlotEmpty(t *testing.T) {
	_, err := ResponsePlot(&dynamo.Result{}, "empty")
	assert.Error(t, err)

	_, err = OutputPlot(&dynamo.Result{}, "empty")
	assert.Error(t, err)
}
