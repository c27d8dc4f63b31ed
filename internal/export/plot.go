package export

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/pidsim/internal/dynamo"
)

var (
	measurementColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	setpointColor    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	outputColor      = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
}

func series(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, c color.Color, dashed bool) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	}
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// ResponsePlot draws the measurement against the setpoint.
func ResponsePlot(result *dynamo.Result, title string) (*plot.Plot, error) {
	if len(result.States) == 0 {
		return nil, fmt.Errorf("no states to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "measurement"
	stylePlot(p)

	if err := addLine(p, "measurement", series(result.Times, result.Measurements()), measurementColor, false); err != nil {
		return nil, err
	}
	if len(result.Setpoints) > 0 {
		// setpoints are recorded per step, the first state precedes them
		if err := addLine(p, "setpoint", series(result.Times[1:], result.Setpoints), setpointColor, true); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// OutputPlot draws the control output applied at each step.
func OutputPlot(result *dynamo.Result, title string) (*plot.Plot, error) {
	if len(result.Controls) == 0 {
		return nil, fmt.Errorf("no controls to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "output"
	stylePlot(p)

	if err := addLine(p, "output", series(result.Times, result.Outputs()), outputColor, false); err != nil {
		return nil, err
	}
	return p, nil
}

// SavePlot writes p to path; the extension picks the format. PNG output is
// rendered at a fixed DPI, other formats go through plot.Save.
func SavePlot(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	w, h := 8*vg.Inch, 5*vg.Inch

	if strings.ToLower(filepath.Ext(path)) != ".png" {
		return p.Save(w, h, path)
	}

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(150))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SaveRunPlots writes the response plot to path and the output plot next to
// it with an "_output" suffix. It returns the paths written.
func SaveRunPlots(result *dynamo.Result, title, path string) ([]string, error) {
	resp, err := ResponsePlot(result, title)
	if err != nil {
		return nil, err
	}
	if err := SavePlot(resp, path); err != nil {
		return nil, err
	}
	written := []string{path}

	if len(result.Controls) == 0 {
		return written, nil
	}
	out, err := OutputPlot(result, title+" output")
	if err != nil {
		return written, err
	}
	ext := filepath.Ext(path)
	outPath := strings.TrimSuffix(path, ext) + "_output" + ext
	if err := SavePlot(out, outPath); err != nil {
		return written, err
	}
	return append(written, outPath), nil
}
