// Package plotting renders aggregated benchmark series as charts.
package plotting

import (
	"strconv"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//go:generate mockgen -destination=../internal/mocks/renderer_mock.go -package=mocks . Renderer

// Renderer writes one chart to the given path.
// The file format follows the path's extension.
type Renderer interface {
	Lines(path string, chart LineChart) error
	Bars(path string, chart BarChart) error
	StackedBars(path string, chart StackedBarChart) error
}

// Size is the size of a chart. The zero value selects DefaultSize.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize is used for charts that do not specify a size.
var DefaultSize = Size{Width: 9 * vg.Inch, Height: 5 * vg.Inch}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// Series is one named line in a line chart.
type Series struct {
	Name string
	plotter.XYer
}

// LineChart plots one line per series against a swept parameter.
type LineChart struct {
	Title  string
	XLabel string
	YLabel string
	// LogX selects a logarithmic X axis, used for power-of-two sweeps.
	LogX bool
	// XTicks places labelled ticks at exactly these values; if empty,
	// the ticks are chosen automatically.
	XTicks []float64
	Series []Series
	Size   Size
}

// BarChart plots one bar per category. Bars are coloured by class, and
// every class gets a legend entry.
type BarChart struct {
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Values     []float64
	// Classes names the legend entries; Class holds, for every bar, the
	// index of its class. A nil Class puts every bar in class 0.
	Classes []string
	Class   []int
	// FirstColor is the Palette index of the colour of class 0.
	FirstColor int
	// YMax fixes the upper limit of the Y axis when positive.
	YMax float64
	// ValueFormat is the strconv format byte and precision of the value
	// labels drawn on top of each bar. Precision < 0 disables labels.
	ValueFormat byte
	Precision   int
	Size        Size
}

func (c BarChart) class(i int) int {
	if i < len(c.Class) {
		return c.Class[i]
	}
	return 0
}

func (c BarChart) label(v float64) string {
	format := c.ValueFormat
	if format == 0 {
		format = 'f'
	}
	return strconv.FormatFloat(v, format, c.Precision, 64)
}

// BarGroup is one implementation in a stacked bar chart. Segments holds one
// slice of per-category values for every component of the chart.
type BarGroup struct {
	Name     string
	Segments [][]float64
}

// Baseline is a single bar drawn centred on the first category.
type Baseline struct {
	Name  string
	Value float64
	// Component is the index of the component whose colour the bar takes.
	Component int
}

// StackedBarChart plots, for every category, one bar per group placed side
// by side, each bar stacked from its components.
type StackedBarChart struct {
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Components []string
	Groups     []BarGroup
	Baseline   *Baseline
	Size       Size
}
