package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/gdpboard/engine"
)

// RankingPNG draws a horizontal bar chart config as a PNG. The first point of
// the first series is drawn at the top.
func RankingPNG(w io.Writer, cfg *engine.ChartConfig, size Size) error {
	if cfg == nil || len(cfg.Series) == 0 || len(cfg.Series[0].Data) == 0 {
		return ErrNoData
	}
	size = size.orDefault()
	data := cfg.Series[0].Data

	// gonum stacks bars bottom-up, so reverse to keep the leader on top.
	n := len(data)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, p := range data {
		values[n-1-i] = p.Value
		names[n-1-i] = p.Label
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XAxis
	p.X.Tick.Marker = gdpTicks{}
	p.X.Min = 0

	barWidth := vg.Points(float64(size.Height) * 0.6 / float64(n))
	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return fmt.Errorf("render: ranking chart: %w", err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	if len(cfg.Colors) > 0 {
		bars.Color = hexColor(cfg.Colors[0])
	}

	if cfg.ShowGrid {
		grid := plotter.NewGrid()
		grid.Horizontal.Width = 0
		p.Add(grid)
	}
	p.Add(bars)
	p.NominalY(names...)

	wt, err := p.WriterTo(vg.Points(float64(size.Width)), vg.Points(float64(size.Height)), "png")
	if err != nil {
		return fmt.Errorf("render: ranking chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render: ranking chart: %w", err)
	}
	return nil
}

// gdpTicks labels the default tick positions with SI-prefixed values.
type gdpTicks struct{}

func (gdpTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = axisLabel(ticks[i].Value)
		}
	}
	return ticks
}
