package plotting

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	sequentialColor = color.RGBA{R: 0x4c, G: 0x78, B: 0xa8, A: 0xff}
	mpiColor        = color.RGBA{R: 0xf5, G: 0x85, B: 0x18, A: 0xff}
	greenColor      = color.RGBA{R: 0x54, G: 0xa2, B: 0x4b, A: 0xff}
	redColor        = color.RGBA{R: 0xe4, G: 0x57, B: 0x56, A: 0xff}
	purpleColor     = color.RGBA{R: 0xb2, G: 0x79, B: 0xa2, A: 0xff}
)

// Palette is the sequence of fill colours used for bar classes and stack
// components.
var Palette = []color.Color{sequentialColor, mpiColor, greenColor, redColor, purpleColor}

func paletteColor(i int) color.Color {
	return Palette[i%len(Palette)]
}

// Gonum renders charts with gonum/plot. Raster images are drawn at DPI dots
// per inch; ".csv" paths receive the chart data as a table instead.
type Gonum struct {
	DPI int
}

var _ Renderer = Gonum{}

// Lines renders a line chart.
func (g Gonum) Lines(path string, c LineChart) error {
	if isCSV(path) {
		header, rows := c.table()
		return CSVPlot(path, header, rows)
	}
	return GonumPlot(path, c.Size, g.DPI, func(plt *plot.Plot) error {
		setup(plt, c.Title, c.XLabel, c.YLabel)
		if c.LogX && len(c.Series) > 0 {
			plt.X.Scale = plot.LogScale{}
		}
		if len(c.XTicks) > 0 {
			plt.X.Tick.Marker = constantTicks(c.XTicks)
		}
		for i, s := range c.Series {
			line, points, err := plotter.NewLinePoints(s.XYer)
			if err != nil {
				return fmt.Errorf("failed to add line %q: %w", s.Name, err)
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(2)
			points.Color = plotutil.Color(i)
			points.Shape = plotutil.Shape(i)
			plt.Add(line, points)
			plt.Legend.Add(s.Name, line, points)
		}
		plt.Legend.Top = true
		plt.Legend.Left = true
		return nil
	})
}

// Bars renders a bar chart.
func (g Gonum) Bars(path string, c BarChart) error {
	if isCSV(path) {
		header, rows := c.table()
		return CSVPlot(path, header, rows)
	}
	if len(c.Values) != len(c.Categories) {
		return fmt.Errorf("bar chart %q: %d values for %d categories", c.Title, len(c.Values), len(c.Categories))
	}
	size := c.Size.orDefault()
	return GonumPlot(path, size, g.DPI, func(plt *plot.Plot) error {
		setupBars(plt, c.Title, c.XLabel, c.YLabel, c.Categories)
		width := barWidth(size, len(c.Categories), 1)

		legend := make(map[int]bool)
		xys := make(plotter.XYs, len(c.Values))
		labels := make([]string, len(c.Values))
		for i, v := range c.Values {
			bar, err := plotter.NewBarChart(plotter.Values{v}, width)
			if err != nil {
				return fmt.Errorf("failed to add bar %q: %w", c.Categories[i], err)
			}
			class := c.class(i)
			bar.XMin = float64(i)
			bar.Color = paletteColor(c.FirstColor + class)
			bar.LineStyle.Width = vg.Points(0.5)
			plt.Add(bar)
			if class < len(c.Classes) && !legend[class] {
				plt.Legend.Add(c.Classes[class], bar)
				legend[class] = true
			}
			xys[i] = plotter.XY{X: float64(i), Y: v}
			labels[i] = c.label(v)
		}
		if c.Precision >= 0 {
			if err := addValueLabels(plt, xys, labels); err != nil {
				return err
			}
		}
		plt.Y.Min = 0
		if c.YMax > 0 {
			plt.Y.Max = c.YMax
		}
		plt.Legend.Top = true
		return nil
	})
}

// StackedBars renders a grouped, stacked bar chart.
func (g Gonum) StackedBars(path string, c StackedBarChart) error {
	if isCSV(path) {
		header, rows := c.table()
		return CSVPlot(path, header, rows)
	}
	for _, grp := range c.Groups {
		if len(grp.Segments) != len(c.Components) {
			return fmt.Errorf("stacked bar chart %q: group %q has %d segments for %d components",
				c.Title, grp.Name, len(grp.Segments), len(c.Components))
		}
	}
	size := c.Size.orDefault()
	return GonumPlot(path, size, g.DPI, func(plt *plot.Plot) error {
		setupBars(plt, c.Title, c.XLabel, c.YLabel, c.Categories)
		n := len(c.Groups)
		if n == 0 {
			n = 1
		}
		width := barWidth(size, len(c.Categories), n)

		if b := c.Baseline; b != nil {
			base, err := plotter.NewBarChart(plotter.Values{b.Value}, width)
			if err != nil {
				return fmt.Errorf("failed to add baseline bar: %w", err)
			}
			base.Color = paletteColor(b.Component)
			base.LineStyle.Width = vg.Points(0.5)
			base.LineStyle.Dashes = plotutil.Dashes(1)
			plt.Add(base)
			plt.Legend.Add(b.Name, base)
		}

		for i, grp := range c.Groups {
			offset := (vg.Length(i) - vg.Length(n-1)/2) * width
			var below *plotter.BarChart
			for j, seg := range grp.Segments {
				bar, err := plotter.NewBarChart(plotter.Values(seg), width)
				if err != nil {
					return fmt.Errorf("failed to add %s bars for %q: %w", c.Components[j], grp.Name, err)
				}
				bar.Offset = offset
				bar.Color = paletteColor(j)
				bar.LineStyle.Width = vg.Points(0.5 + float64(i)*0.5)
				if below != nil {
					bar.StackOn(below)
				}
				plt.Add(bar)
				if i == 0 {
					plt.Legend.Add(c.Components[j], bar)
				}
				below = bar
			}
			if below != nil {
				plt.Legend.Add(grp.Name, below)
			}
		}
		plt.Y.Min = 0
		plt.Legend.Top = true
		plt.Legend.Left = true
		return nil
	})
}

func setup(plt *plot.Plot, title, xlabel, ylabel string) {
	grid := plotter.NewGrid()
	grid.Horizontal.Color = color.Gray{Y: 200}
	grid.Horizontal.Dashes = plotutil.Dashes(2)
	grid.Vertical.Color = color.Gray{Y: 200}
	grid.Vertical.Dashes = plotutil.Dashes(2)
	plt.Add(grid)

	plt.Title.Text = title
	plt.X.Label.Text = xlabel
	plt.Y.Label.Text = ylabel
	plt.Y.Tick.Marker = hplot.Ticks{N: 10}
}

func setupBars(plt *plot.Plot, title, xlabel, ylabel string, categories []string) {
	grid := plotter.NewGrid()
	grid.Horizontal.Color = color.Gray{Y: 200}
	grid.Horizontal.Dashes = plotutil.Dashes(2)
	grid.Vertical = draw.LineStyle{}
	plt.Add(grid)

	plt.Title.Text = title
	plt.X.Label.Text = xlabel
	plt.Y.Label.Text = ylabel
	plt.Y.Tick.Marker = hplot.Ticks{N: 10}
	plt.NominalX(categories...)
}

// barWidth spreads the bars of n groups over roughly 70% of the space of
// each category.
func barWidth(size Size, categories, n int) vg.Length {
	if categories < 1 {
		categories = 1
	}
	area := size.Width * 0.8
	return area * 0.7 / vg.Length(categories) / vg.Length(n)
}

func addValueLabels(plt *plot.Plot, xys plotter.XYs, labels []string) error {
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("failed to add value labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = draw.XCenter
		lbl.TextStyle[i].Font.Size = vg.Points(8)
	}
	lbl.Offset = vg.Point{Y: vg.Points(2)}
	plt.Add(lbl)
	return nil
}

func constantTicks(values []float64) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return plot.ConstantTicks(ticks)
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
