package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/njchilds90/graphcalc"
)

// Style controls the look of a raster.
type Style struct {
	Background color.Color
	Axis       color.Color
	Label      color.Color
	// Curve is used for relations without a colour.
	Curve       color.Color
	LineWidth   float64
	PointRadius float64
	TickRadius  float64
	Labels      bool
}

func DefaultStyle() Style {
	return Style{
		Background:  color.RGBA{239, 239, 239, 255},
		Axis:        color.Black,
		Label:       color.RGBA{100, 100, 100, 255},
		Curve:       color.Black,
		LineWidth:   2,
		PointRadius: 1,
		TickRadius:  3,
		Labels:      true,
	}
}

// Raster draws frames into images through a viewport.
type Raster struct {
	Viewport Viewport
	Style    Style
}

func NewRaster(v Viewport) *Raster {
	return &Raster{Viewport: v, Style: DefaultStyle()}
}

// Draw renders the axes, ticks and every curve of frame.
func (r *Raster) Draw(frame graphcalc.Frame) (image.Image, error) {
	v := r.Viewport
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("render: bad surface %dx%d", v.Width, v.Height)
	}
	dc := gg.NewContext(v.Width, v.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.FromColor(r.Style.Background))

	ox, oy := v.Project(graphcalc.Point{})
	ticks := v.Ticks()
	dc.SetColor(r.Style.Axis)
	dc.SetLineWidth(1)
	dc.DrawLine(0, oy, float64(v.Width), oy)
	dc.DrawLine(ox, 0, ox, float64(v.Height))
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("render: axes: %w", err)
	}
	dc.DrawCircle(ox, oy, r.Style.TickRadius)
	for _, t := range ticks {
		dc.DrawCircle(t.PX, t.PY, r.Style.TickRadius)
	}
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("render: ticks: %w", err)
	}

	for _, fc := range frame.Curves {
		if err := r.drawCurve(dc, fc); err != nil {
			return nil, err
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	draw.Draw(dst, dst.Bounds(), dc.Image(), image.Point{}, draw.Src)
	if r.Style.Labels {
		r.drawLabels(dst, ox, oy, ticks)
	}
	return dst, nil
}

func (r *Raster) drawCurve(dc *gg.Context, fc graphcalc.FrameCurve) error {
	v := r.Viewport
	col := r.Style.Curve
	if fc.Relation != nil && fc.Relation.Color != nil {
		col = fc.Relation.Color
	}
	dc.SetColor(col)
	if len(fc.Curve.Polylines) > 0 {
		dc.SetLineWidth(r.Style.LineWidth)
		for _, line := range fc.Curve.Polylines {
			for i, p := range line {
				px, py := v.Project(p)
				if i == 0 {
					dc.MoveTo(px, py)
				} else {
					dc.LineTo(px, py)
				}
			}
		}
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("render: %s: %w", fc.Curve.Text, err)
		}
	}
	if len(fc.Curve.Points) > 0 {
		for _, p := range fc.Curve.Points {
			if px, py := v.Project(p); v.Visible(px, py) {
				dc.DrawCircle(px, py, r.Style.PointRadius)
			}
		}
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("render: %s: %w", fc.Curve.Text, err)
		}
	}
	return nil
}

// drawLabels writes the tick numbers next to their marks.
func (r *Raster) drawLabels(dst draw.Image, ox, oy float64, ticks []Tick) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.Style.Label),
		Face: basicfont.Face7x13,
	}
	ascent := float64(basicfont.Face7x13.Ascent)
	put := func(s string, x, y float64) {
		d.Dot = fixed.P(int(x), int(y+ascent))
		d.DrawString(s)
	}
	put("0", ox-10, oy+4)
	for _, t := range ticks {
		s := strconv.Itoa(t.Value)
		switch {
		case t.Axis == graphcalc.AxisX && t.Value > 0:
			put(s, t.PX-2, t.PY+7)
		case t.Axis == graphcalc.AxisX:
			put(s, t.PX-6, t.PY+7)
		case t.Value > 0:
			put(s, t.PX-12-float64(d.MeasureString(s).Round()), t.PY-5)
		default:
			put(s, t.PX+8, t.PY-5)
		}
	}
}

// WritePNG draws frame and encodes it as PNG.
func (r *Raster) WritePNG(w io.Writer, frame graphcalc.Frame) error {
	img, err := r.Draw(frame)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG draws frame into the PNG file at path.
func (r *Raster) SavePNG(path string, frame graphcalc.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f, frame); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
