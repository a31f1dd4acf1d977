package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/njchilds90/graphcalc"
)

// Default export size.
const (
	ExportWidth  = 6 * vg.Inch
	ExportHeight = 6 * vg.Inch
)

// NewPlot builds a gonum plot of frame over its window, one legend entry
// per relation.
func NewPlot(frame graphcalc.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = float64(frame.Window.Domain.Min), float64(frame.Window.Domain.Max)
	p.Y.Min, p.Y.Max = float64(frame.Window.Range.Min), float64(frame.Window.Range.Max)
	p.Add(plotter.NewGrid())

	for i, fc := range frame.Curves {
		var col color.Color = plotutil.Color(i)
		name := fc.Curve.Text
		if fc.Relation != nil {
			name = fc.Relation.DisplayName()
			if fc.Relation.Color != nil {
				col = fc.Relation.Color
			}
		}
		labelled := false
		for _, line := range fc.Curve.Polylines {
			l, err := plotter.NewLine(toXYs(line))
			if err != nil {
				return nil, fmt.Errorf("render: %s: %w", name, err)
			}
			l.LineStyle.Width = vg.Points(1)
			l.LineStyle.Color = col
			p.Add(l)
			if !labelled {
				p.Legend.Add(name, l)
				labelled = true
			}
		}
		if len(fc.Curve.Points) > 0 {
			s, err := plotter.NewScatter(toXYs(fc.Curve.Points))
			if err != nil {
				return nil, fmt.Errorf("render: %s: %w", name, err)
			}
			s.GlyphStyle.Color = col
			s.GlyphStyle.Radius = vg.Points(0.5)
			p.Add(s)
			if !labelled {
				p.Legend.Add(name+" (low resolution)", s)
			}
		}
	}
	return p, nil
}

func toXYs(pts []graphcalc.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X, xys[i].Y = p.X, p.Y
	}
	return xys
}

// Export saves frame to path. The format follows the extension: svg, png,
// pdf, eps, jpg or tiff.
func Export(frame graphcalc.Frame, path string, width, height vg.Length) error {
	p, err := NewPlot(frame)
	if err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// WriteTo encodes frame in the named format to w.
func WriteTo(w io.Writer, frame graphcalc.Frame, width, height vg.Length, format string) error {
	p, err := NewPlot(frame)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
