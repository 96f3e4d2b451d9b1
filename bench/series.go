package bench

import "sort"

// Point is one aggregated value at a swept parameter value.
type Point struct {
	X float64
	Y float64
}

// Series is a labelled list of points ordered by X ascending.
// It satisfies gonum's plotter.XYer.
type Series struct {
	Label  string
	Points []Point
}

// NewSeries returns a series holding a sorted copy of points.
func NewSeries(label string, points []Point) Series {
	ps := make([]Point, len(points))
	copy(ps, points)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].X < ps[j].X })
	return Series{Label: label, Points: ps}
}

// Len returns the number of x, y pairs.
func (s Series) Len() int {
	return len(s.Points)
}

// XY returns an x, y pair.
func (s Series) XY(i int) (x, y float64) {
	p := s.Points[i]
	return p.X, p.Y
}

// Xs returns the X values of the series.
func (s Series) Xs() []float64 {
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
	}
	return xs
}

// At returns the Y value at x.
func (s Series) At(x float64) (y float64, ok bool) {
	for _, p := range s.Points {
		if p.X == x {
			return p.Y, true
		}
	}
	return 0, false
}

// Speedup divides every Y by the Y at baselineX, as for throughput.
// ok is false if the series has no point at baselineX.
func (s Series) Speedup(baselineX float64) (sp Series, ok bool) {
	base, ok := s.At(baselineX)
	if !ok {
		return Series{}, false
	}
	return s.scale(func(y float64) float64 { return y / base }), true
}

// TimeSpeedup divides baseline by every Y, as for execution times.
func (s Series) TimeSpeedup(baseline float64) Series {
	return s.scale(func(y float64) float64 { return baseline / y })
}

func (s Series) scale(fn func(float64) float64) Series {
	out := Series{Label: s.Label, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = Point{X: p.X, Y: fn(p.Y)}
	}
	return out
}

// MeanSeries averages the values in g per X and returns them as a series.
func MeanSeries(label string, g *Groups[float64, float64]) (Series, error) {
	points := make([]Point, 0, g.Len())
	for _, x := range g.Keys() {
		values, _ := g.Get(x)
		mean, err := Mean(values)
		if err != nil {
			return Series{}, err
		}
		points = append(points, Point{X: x, Y: mean})
	}
	return NewSeries(label, points), nil
}
