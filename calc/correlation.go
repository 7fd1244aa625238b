package calc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/TFMV/tenlab/mathx"
)

// Point is one observation of the correlation explorer
type Point struct {
	ID string  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// CorrelationParams is the point set plus axis labels
type CorrelationParams struct {
	XLabel string  `json:"x_label" yaml:"x_label"`
	YLabel string  `json:"y_label" yaml:"y_label"`
	Points []Point `json:"points" yaml:"data" validate:"dive"`
}

// CorrelationResult summarizes the linear relation between X and Y
type CorrelationResult struct {
	R         float64 `json:"r"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	N         int     `json:"n"`
}

// Direction describes the sign of r
func (r CorrelationResult) Direction() string {
	switch {
	case r.R > 0:
		return "positive"
	case r.R < 0:
		return "negative"
	default:
		return "none"
	}
}

// Correlation computes Pearson's r and the least-squares line.
// Non-finite points are dropped. Fewer than two points, or no spread on
// either axis, gives r = 0.
func Correlation(p CorrelationParams) CorrelationResult {
	xs := make([]float64, 0, len(p.Points))
	ys := make([]float64, 0, len(p.Points))
	for _, pt := range p.Points {
		if !mathx.Finite(pt.X) || !mathx.Finite(pt.Y) {
			continue
		}
		xs = append(xs, pt.X)
		ys = append(ys, pt.Y)
	}

	res := CorrelationResult{N: len(xs)}
	if len(xs) < 2 {
		return res
	}
	if stat.Variance(xs, nil) == 0 {
		return res
	}

	res.Intercept, res.Slope = stat.LinearRegression(xs, ys, nil, false)
	if stat.Variance(ys, nil) == 0 {
		return res
	}
	res.R = mathx.OrZero(stat.Correlation(xs, ys, nil))
	// rounding can push |r| a hair past 1
	res.R = math.Max(-1, math.Min(1, res.R))
	return res
}

// SortedByX returns a copy of the points ordered by X for line plots
func SortedByX(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}
