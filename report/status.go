package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	cvtrack "github.com/swdee/go-cvtrack"
)

// WriteStatusChart writes an HTML page charting the per frame track status
// of every object, 1 when tracked and 0 when lost
func WriteStatusChart(w io.Writer, objects []cvtrack.TrackedObject) error {

	frames := 0

	for _, obj := range objects {
		frames = max(frames, len(obj.Track))
	}

	x := make([]int, frames)

	for i := range x {
		x[i] = i
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Status", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track Status", Subtitle: fmt.Sprintf("objects=%d frames=%d", len(objects), frames)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Tracked", Min: 0, Max: 1}),
	)

	line.SetXAxis(x)

	for _, obj := range objects {

		data := make([]opts.LineData, len(obj.Track))

		for i, rec := range obj.Track {
			v := 0
			if rec.Success {
				v = 1
			}
			data[i] = opts.LineData{Value: v}
		}

		line.AddSeries(fmt.Sprintf("%s_%d", obj.Label, obj.ID), data)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render status chart: %w", err)
	}

	return nil
}
