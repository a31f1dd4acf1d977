package render_test

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/colornames"

	"github.com/njchilds90/graphcalc"
	"github.com/njchilds90/graphcalc/render"
)

func lineFrame(col color.Color) graphcalc.Frame {
	w := graphcalc.DefaultWindow().WithScale(10, 10)
	return graphcalc.Frame{
		Window: w,
		Curves: []graphcalc.FrameCurve{{
			Relation: &graphcalc.Relation{Text: "y = 5", Color: col},
			Curve: graphcalc.SampledCurve{
				Text:      "y = 5",
				Bounds:    w.Bounds(),
				Polylines: []graphcalc.Polyline{{{X: -10, Y: 5}, {X: 10, Y: 5}}},
			},
			Ready: true,
		}},
	}
}

func rgb(c color.Color) (r, g, b uint32) {
	r, g, b, _ = c.RGBA()
	return r >> 8, g >> 8, b >> 8
}

// ============================================================
// Raster tests
// ============================================================

func TestRaster_DrawsCurve(t *testing.T) {
	frame := lineFrame(colornames.Red)
	rs := render.NewRaster(render.NewViewport(200, 200, frame.Window))
	img, err := rs.Draw(frame)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b := rgb(img.At(150, 50)); r < 200 || g > 80 || b > 80 {
		t.Errorf("want red on the line at y=5, got (%d, %d, %d)", r, g, b)
	}
	if r, g, b := rgb(img.At(5, 190)); r != 239 || g != 239 || b != 239 {
		t.Errorf("want background grey, got (%d, %d, %d)", r, g, b)
	}
	if r, _, _ := rgb(img.At(150, 100)); r > 120 {
		t.Errorf("want a dark tick mark at x=5, got r=%d", r)
	}
}

func TestRaster_Points(t *testing.T) {
	w := graphcalc.DefaultWindow().WithScale(10, 10)
	frame := graphcalc.Frame{
		Window: w,
		Curves: []graphcalc.FrameCurve{{
			Relation: &graphcalc.Relation{Text: "chaos", Color: colornames.Blue},
			Curve: graphcalc.SampledCurve{
				Points:        []graphcalc.Point{{X: 5, Y: 5}},
				LowResolution: true,
			},
		}},
	}
	rs := render.NewRaster(render.NewViewport(200, 200, w))
	rs.Style.PointRadius = 3
	img, err := rs.Draw(frame)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, b := rgb(img.At(150, 50)); b < 200 {
		t.Errorf("want a blue dot at (5, 5), got b=%d", b)
	}
}

func TestRaster_PNG(t *testing.T) {
	frame := lineFrame(nil)
	rs := render.NewRaster(render.NewViewport(120, 80, frame.Window))
	var buf bytes.Buffer
	if err := rs.WritePNG(&buf, frame); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("want 120x80, got %v", b)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := rs.SavePNG(path, frame); err != nil {
		t.Fatal(err)
	}
}

func TestRaster_BadSize(t *testing.T) {
	rs := render.NewRaster(render.NewViewport(0, 10, graphcalc.DefaultWindow()))
	if _, err := rs.Draw(graphcalc.Frame{}); err == nil || !strings.Contains(err.Error(), "surface") {
		t.Errorf("want surface error, got %v", err)
	}
}

// ============================================================
// Export tests
// ============================================================

func TestExport_SVG(t *testing.T) {
	var buf bytes.Buffer
	if err := render.WriteTo(&buf, lineFrame(colornames.Teal), render.ExportWidth, render.ExportHeight, "svg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("want SVG output")
	}
}

func TestExport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := render.Export(lineFrame(nil), path, render.ExportWidth, render.ExportHeight); err != nil {
		t.Fatal(err)
	}
}

func TestNewPlot_Window(t *testing.T) {
	p, err := render.NewPlot(lineFrame(nil))
	if err != nil {
		t.Fatal(err)
	}
	if p.X.Min != -10 || p.X.Max != 10 {
		t.Errorf("want x axis (-10, 10), got (%g, %g)", p.X.Min, p.X.Max)
	}
}

// ============================================================
// Colour tests
// ============================================================

func TestParseColor(t *testing.T) {
	c, err := render.ParseColor("Crimson")
	if err != nil || c != colornames.Crimson {
		t.Errorf("want crimson, got %v %v", c, err)
	}
	c, err = render.ParseColor("#00ff00")
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b := rgb(c); r != 0 || g != 255 || b != 0 {
		t.Errorf("want (0, 255, 0), got (%d, %d, %d)", r, g, b)
	}
	if _, err := render.ParseColor("#f00"); err != nil {
		t.Errorf("short hex: %v", err)
	}
	for _, bad := range []string{"#12", "#ggg", "notacolour", ""} {
		if _, err := render.ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q): want error", bad)
		}
	}
}

func TestPalette_Cycles(t *testing.T) {
	p := render.NewPalette(colornames.Red, colornames.Blue)
	got := []color.Color{p.Next(), p.Next(), p.Next()}
	if got[0] != colornames.Red || got[1] != colornames.Blue || got[2] != colornames.Red {
		t.Errorf("want red, blue, red, got %v", got)
	}
}
