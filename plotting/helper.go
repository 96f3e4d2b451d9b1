package plotting

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// GonumPlot creates a plot, lets addPlots populate it and saves it to
// filename. PNG, JPEG and TIFF files are rasterised at dpi; other
// extensions are handled by plot.Save.
func GonumPlot(filename string, size Size, dpi int, addPlots func(plt *plot.Plot) error) error {
	plt := plot.New()
	if err := addPlots(plt); err != nil {
		return err
	}
	size = size.orDefault()

	var raster func(*vgimg.Canvas) io.WriterTo
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		raster = func(c *vgimg.Canvas) io.WriterTo { return vgimg.PngCanvas{Canvas: c} }
	case ".jpg", ".jpeg":
		raster = func(c *vgimg.Canvas) io.WriterTo { return vgimg.JpegCanvas{Canvas: c} }
	case ".tif", ".tiff":
		raster = func(c *vgimg.Canvas) io.WriterTo { return vgimg.TiffCanvas{Canvas: c} }
	default:
		if err := plt.Save(size.Width, size.Height, filename); err != nil {
			return fmt.Errorf("failed to save plot %s: %w", filename, err)
		}
		return nil
	}

	if dpi <= 0 {
		dpi = vgimg.DefaultDPI
	}
	c := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(dpi))
	plt.Draw(draw.New(c))
	if err := writeFile(filename, raster(c)); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", filename, err)
	}
	return nil
}

func writeFile(filename string, wt io.WriterTo) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	_, err = wt.WriteTo(f)
	return err
}

// CSVPlot writes a chart's data as a CSV table.
func CSVPlot(filename string, header []string, rows [][]string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	wr := csv.NewWriter(f)
	if err := wr.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := wr.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// table returns one row per X value and one column per series; cells for
// series without a point at that X are empty.
func (c LineChart) table() (header []string, rows [][]string) {
	header = []string{c.XLabel}
	cols := make([]map[float64]float64, len(c.Series))
	seen := make(map[float64]bool)
	var xs []float64
	for i, s := range c.Series {
		header = append(header, s.Name)
		cols[i] = make(map[float64]float64)
		for j := 0; j < s.Len(); j++ {
			x, y := s.XY(j)
			cols[i][x] = y
			if !seen[x] {
				seen[x] = true
				xs = append(xs, x)
			}
		}
	}
	sort.Float64s(xs)
	for _, x := range xs {
		row := []string{formatFloat(x)}
		for _, col := range cols {
			cell := ""
			if y, ok := col[x]; ok {
				cell = formatFloat(y)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return header, rows
}

func (c BarChart) table() (header []string, rows [][]string) {
	header = []string{c.XLabel, c.YLabel}
	for i, v := range c.Values {
		cat := ""
		if i < len(c.Categories) {
			cat = c.Categories[i]
		}
		rows = append(rows, []string{cat, formatFloat(v)})
	}
	return header, rows
}

func (c StackedBarChart) table() (header []string, rows [][]string) {
	header = append([]string{"group", c.XLabel}, c.Components...)
	if b := c.Baseline; b != nil && len(c.Categories) > 0 {
		row := []string{b.Name, c.Categories[0]}
		for j := range c.Components {
			cell := "0"
			if j == b.Component {
				cell = formatFloat(b.Value)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	for _, grp := range c.Groups {
		for k, cat := range c.Categories {
			row := []string{grp.Name, cat}
			for _, seg := range grp.Segments {
				cell := ""
				if k < len(seg) {
					cell = formatFloat(seg[k])
				}
				row = append(row, cell)
			}
			rows = append(rows, row)
		}
	}
	return header, rows
}
