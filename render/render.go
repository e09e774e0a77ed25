// Package render draws engine.ChartConfig values as PNG images for the CLI
// and the HTTP server.
package render

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a chart has nothing to plot.
var ErrNoData = errors.New("render: chart has no data")

// Size is an image size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when a dimension is zero.
var DefaultSize = Size{Width: 1024, Height: 576}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = DefaultSize.Width
	}
	if s.Height <= 0 {
		s.Height = DefaultSize.Height
	}
	return s
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// axisLabel formats large GDP values with SI prefixes ("27 T").
func axisLabel(v float64) string {
	return strings.TrimSpace(humanize.SIWithDigits(v, 1, ""))
}
