// Package report produces charts summarising tracking histories.
package report

import (
	"fmt"
	"strconv"

	cvtrack "github.com/swdee/go-cvtrack"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// DefaultWidth and DefaultHeight are the trajectory plot dimensions
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// PlotTrajectories saves a plot of the box center path of every object
// over the frames it was successfully tracked.  The image format follows
// the file extension.
func PlotTrajectories(path string, objects []cvtrack.TrackedObject, width, height vg.Length) error {

	p := plot.New()
	p.Title.Text = "Object Trajectories"
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"

	// image rows grow downwards so y is plotted negated and relabelled
	p.Y.Tick.Marker = flippedTicks{}

	for i, obj := range objects {

		pts := make(plotter.XYs, 0, len(obj.Track))

		for _, rec := range obj.Track {
			if !rec.Success {
				continue
			}

			c := rec.Box.Center()
			pts = append(pts, plotter.XY{X: float64(c.X), Y: -float64(c.Y)})
		}

		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)

		if err != nil {
			return fmt.Errorf("create trajectory line for %s_%d: %w", obj.Label, obj.ID, err)
		}

		line.Width = vg.Points(1.5)
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s_%d", obj.Label, obj.ID), line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}

	return nil
}

// flippedTicks labels a negated axis with the original values
type flippedTicks struct{}

func (flippedTicks) Ticks(min, max float64) []plot.Tick {

	ticks := plot.DefaultTicks{}.Ticks(min, max)

	for i, t := range ticks {
		if t.Label != "" {
			ticks[i].Label = strconv.FormatFloat(-t.Value, 'g', -1, 64)
		}
	}

	return ticks
}
