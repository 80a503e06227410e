// Package export renders recorded runs as images, JSON documents and
// terminal charts.
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

	"github.com/san-kum/maglev/internal/dynamo"
)

var (
	positionColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	measuredColor = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	setpointColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	outputColor   = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	driveColor    = color.RGBA{R: 148, G: 103, B: 189, A: 255}
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
	pngDPI     = 150
)

func series(samples []dynamo.Sample, value func(dynamo.Sample) float64) plotter.XYs {
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = s.Time
		pts[i].Y = value(s)
	}
	return pts
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color, width vg.Length, dashed bool) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = width
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// PositionPlot charts true position, measured position and setpoint.
func PositionPlot(samples []dynamo.Sample, title string) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples to plot", dynamo.ErrInvalidInput)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "position (m)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if err := addLine(p, "measured", series(samples, func(s dynamo.Sample) float64 { return s.Measured }), measuredColor, vg.Points(1), false); err != nil {
		return nil, err
	}
	if err := addLine(p, "position", series(samples, func(s dynamo.Sample) float64 { return s.Position }), positionColor, vg.Points(2), false); err != nil {
		return nil, err
	}
	if err := addLine(p, "setpoint", series(samples, func(s dynamo.Sample) float64 { return s.Setpoint }), setpointColor, vg.Points(1.5), true); err != nil {
		return nil, err
	}
	return p, nil
}

// ControlPlot charts the controller output and the rate- and
// magnitude-limited drive that reached the attractor.
func ControlPlot(samples []dynamo.Sample, title string) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples to plot", dynamo.ErrInvalidInput)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "control (N)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if err := addLine(p, "output", series(samples, func(s dynamo.Sample) float64 { return s.Output }), outputColor, vg.Points(1), false); err != nil {
		return nil, err
	}
	if err := addLine(p, "drive", series(samples, func(s dynamo.Sample) float64 { return s.Drive }), driveColor, vg.Points(2), false); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p to path. PNG goes through an explicit-DPI canvas; other
// extensions (svg, pdf, eps) use plot's own encoders.
func Save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return p.Save(plotWidth, plotHeight, path)
	}

	c := vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(pngDPI))
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

// SaveRun writes <prefix>_position<ext> and <prefix>_control<ext> and
// returns their paths.
func SaveRun(samples []dynamo.Sample, title, prefix, ext string) ([]string, error) {
	pos, err := PositionPlot(samples, title)
	if err != nil {
		return nil, err
	}
	ctl, err := ControlPlot(samples, title)
	if err != nil {
		return nil, err
	}

	paths := []string{prefix + "_position" + ext, prefix + "_control" + ext}
	for i, p := range []*plot.Plot{pos, ctl} {
		if err := Save(p, paths[i]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
