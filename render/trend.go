package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/spektr-org/gdpboard/engine"
)

// TrendPNG draws a line chart config (one series per country, year labels on
// the X axis) as a PNG.
func TrendPNG(w io.Writer, cfg *engine.ChartConfig, size Size) error {
	if cfg == nil || len(cfg.Series) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	var xr, yr bounds
	series := make([]chart.Series, 0, len(cfg.Series))
	for i, s := range cfg.Series {
		xs := make([]float64, 0, len(s.Data))
		ys := make([]float64, 0, len(s.Data))
		for _, p := range s.Data {
			year, err := strconv.Atoi(p.Label)
			if err != nil {
				return fmt.Errorf("render: series %q: year label %q: %w", s.Name, p.Label, err)
			}
			xs = append(xs, float64(year))
			ys = append(ys, p.Value)
			xr.add(float64(year))
			yr.add(p.Value)
		}
		if len(xs) == 0 {
			continue
		}

		color := s.Color
		if color == "" && i < len(cfg.Colors) {
			color = cfg.Colors[i]
		}
		style := chart.Style{StrokeWidth: 2, DotWidth: 3}
		if color != "" {
			style.StrokeColor = hexColor(color)
			style.DotColor = hexColor(color)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	xmin, xmax := xr.padded(0.5)
	ymin, ymax := yr.padded(0.05 * yr.span())

	graph := chart.Chart{
		Title:  cfg.Title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           cfg.XAxis,
			Range:          &chart.ContinuousRange{Min: xmin, Max: xmax},
			Ticks:          yearTicks(xr),
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		YAxis: chart.YAxis{
			Name:  cfg.YAxis,
			Range: &chart.ContinuousRange{Min: ymin, Max: ymax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return axisLabel(f)
				}
				return ""
			},
		},
		Series: series,
	}
	if cfg.ShowLegend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render: trend chart: %w", err)
	}
	return nil
}

func yearTicks(b bounds) []chart.Tick {
	var ticks []chart.Tick
	for y := int(b.min); y <= int(b.max); y++ {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}

// bounds tracks the min and max of a value stream.
type bounds struct {
	min, max float64
	set      bool
}

func (b *bounds) add(v float64) {
	if !b.set {
		b.min, b.max, b.set = v, v, true
		return
	}
	if v < b.min {
		b.min = v
	}
	if v > b.max {
		b.max = v
	}
}

func (b bounds) span() float64 { return b.max - b.min }

// padded widens the bounds by pad on each side. A zero-width range is widened
// by at least 1 so the axis can be drawn.
func (b bounds) padded(pad float64) (float64, float64) {
	if pad <= 0 {
		pad = 1
		if b.max != 0 {
			pad = 0.05 * abs(b.max)
		}
	}
	return b.min - pad, b.max + pad
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
