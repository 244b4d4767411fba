// opentrack-plot renders a recorded tick trace as an HTML page of
// per-axis charts, raw wire values against conditioned output. Record
// a trace with the -record flag of opentrack-mouse or opentrack-stick.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/browser"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
	"github.com/digitaltrails/opentrack-opal/internal/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "opentrack-trace.jsonl", "trace file to plot")
	out := flag.String("out", "opentrack-trace.html", "output HTML file")
	open := flag.Bool("open", false, "open the rendered page in a browser")
	flag.Parse()

	ticks, err := trace.Load(*in)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("trace %s holds no ticks", *in)
	}

	page := components.NewPage()
	for axis := 0; axis < protocol.NumAxes; axis++ {
		page.AddCharts(axisChart(protocol.Axis(axis), ticks))
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render charts: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d ticks)\n", *out, len(ticks))

	if *open {
		return browser.OpenFile(*out)
	}
	return nil
}

// axisChart draws one axis over time. Raw samples are absent on coast
// ticks, which echarts renders as gaps.
func axisChart(axis protocol.Axis, ticks []trace.Tick) *charts.Line {
	times := make([]string, len(ticks))
	rawData := make([]opts.LineData, len(ticks))
	condData := make([]opts.LineData, len(ticks))
	for i, t := range ticks {
		times[i] = strconv.FormatInt(t.Time, 10)
		if len(t.Raw) > int(axis) {
			rawData[i] = opts.LineData{Value: t.Raw[axis]}
		} else {
			rawData[i] = opts.LineData{Value: nil}
		}
		condData[i] = opts.LineData{Value: t.Cond[axis]}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "opentrack trace", Width: "1200px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: axis.String()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ms"}),
	)
	line.SetXAxis(times).
		AddSeries("raw", rawData).
		AddSeries("conditioned", condData)
	return line
}
