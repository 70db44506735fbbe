// Package plots renders run artifacts as PNG charts: input series, residual
// paths, recursive CUSUM bands and bootstrap IRFs.
package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tkusuma/macrovar/internal/stattest"
	"github.com/tkusuma/macrovar/internal/timeseries"
	"github.com/tkusuma/macrovar/internal/varm"
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
}

const (
	plotWidth  = 7 * vg.Inch
	plotHeight = 4 * vg.Inch
)

func line(xs, ys []float64, c color.Color) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = c
	return l, nil
}

func indexed(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// Series plots one or more series against their observation index.
func Series(path, title string, series ...*timeseries.Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"

	for i, s := range series {
		l, err := line(indexed(s.Len()), s.Values, palette[i%len(palette)])
		if err != nil {
			return fmt.Errorf("plots: %s: %w", s.Name, err)
		}
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	p.Legend.Top = true
	return p.Save(plotWidth, plotHeight, path)
}

// Residuals plots each equation's residual path on one chart.
func Residuals(path string, m *varm.Model) error {
	p := plot.New()
	p.Title.Text = "Residuals"
	p.X.Label.Text = "t"

	T, K := m.Residuals.Dims()
	xs := indexed(T)
	for j := 0; j < K; j++ {
		ys := make([]float64, T)
		for t := 0; t < T; t++ {
			ys[t] = m.Residuals.At(t, j)
		}
		l, err := line(xs, ys, palette[j%len(palette)])
		if err != nil {
			return fmt.Errorf("plots: residuals %s: %w", m.VarNames[j], err)
		}
		p.Add(l)
		p.Legend.Add(m.VarNames[j], l)
	}
	p.Legend.Top = true
	return p.Save(plotWidth, plotHeight, path)
}

// CUSUM plots the recursive CUSUM path for one equation with its 5% bands.
func CUSUM(path, equation string, cs *stattest.CUSUMResult) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Recursive CUSUM: %s", equation)
	p.X.Label.Text = "t"

	xs := indexed(len(cs.W))
	w, err := line(xs, cs.W, palette[0])
	if err != nil {
		return fmt.Errorf("plots: cusum %s: %w", equation, err)
	}
	upper, err := line(xs, cs.Upper, palette[3])
	if err != nil {
		return fmt.Errorf("plots: cusum %s: %w", equation, err)
	}
	lower, err := line(xs, cs.Lower, palette[3])
	if err != nil {
		return fmt.Errorf("plots: cusum %s: %w", equation, err)
	}
	upper.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	lower.Dashes = upper.Dashes
	p.Add(w, upper, lower)
	p.Legend.Add("W_t", w)
	p.Legend.Add("5% bands", upper)
	p.Legend.Top = true
	return p.Save(plotWidth, plotHeight, path)
}

// IRF plots the point IRF of one response variable to one shock, with the
// bootstrap percentile bands.
func IRF(path string, bands *varm.IRFBands, varNames []string, response int) error {
	H, K := bands.Point.Dims()
	if response < 0 || response >= K {
		return fmt.Errorf("plots: response index %d out of range", response)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Response of %s to a %s shock",
		varNames[response], varNames[bands.ShockIndex])
	p.X.Label.Text = "horizon"

	xs := indexed(H)
	col := func(m interface{ At(int, int) float64 }) []float64 {
		ys := make([]float64, H)
		for h := 0; h < H; h++ {
			ys[h] = m.At(h, response)
		}
		return ys
	}
	point, err := line(xs, col(bands.Point), palette[0])
	if err != nil {
		return fmt.Errorf("plots: irf: %w", err)
	}
	lower, err := line(xs, col(bands.Lower), palette[1])
	if err != nil {
		return fmt.Errorf("plots: irf: %w", err)
	}
	upper, err := line(xs, col(bands.Upper), palette[1])
	if err != nil {
		return fmt.Errorf("plots: irf: %w", err)
	}
	lower.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	upper.Dashes = lower.Dashes

	zero, err := line(xs, make([]float64, H), color.Gray{Y: 128})
	if err != nil {
		return fmt.Errorf("plots: irf: %w", err)
	}

	p.Add(point, lower, upper, zero)
	p.Legend.Add("point", point)
	p.Legend.Add(fmt.Sprintf("%.0f%% band", 100*(1-bands.Alpha)), lower)
	p.Legend.Top = true
	return p.Save(plotWidth, plotHeight, path)
}
