package render_test

import (
	"math"
	"testing"

	"github.com/njchilds90/graphcalc"
	"github.com/njchilds90/graphcalc/render"
)

// ============================================================
// Viewport tests
// ============================================================

func TestViewport_Project(t *testing.T) {
	v := render.NewViewport(600, 400, graphcalc.DefaultWindow())
	px, py := v.Project(graphcalc.Point{})
	if px != 300 || py != 200 {
		t.Errorf("origin: want (300, 200), got (%g, %g)", px, py)
	}
	px, py = v.Project(graphcalc.Point{X: 2, Y: 2})
	if px != 350 || py != 150 {
		t.Errorf("(2, 2): want (350, 150), got (%g, %g)", px, py)
	}
	back := v.Unproject(px, py)
	if math.Abs(back.X-2) > 1e-12 || math.Abs(back.Y-2) > 1e-12 {
		t.Errorf("round trip: want (2, 2), got %+v", back)
	}
}

func TestViewport_PlottingSize(t *testing.T) {
	v := render.NewViewport(600, 400, graphcalc.DefaultWindow())
	w, h := v.PlottingSize()
	if w != 2625 || h != 2625 {
		t.Errorf("want 2625x2625, got %gx%g", w, h)
	}
}

func TestViewport_PanBounded(t *testing.T) {
	v := render.NewViewport(600, 400, graphcalc.DefaultWindow())
	if !v.Pan(1000, 0) {
		t.Fatal("pan within the surface should move")
	}
	if v.Pan(100, 0) {
		t.Error("pan past the edge should be ignored")
	}
	if v.OffsetX != 1000 {
		t.Errorf("want offset 1000, got %g", v.OffsetX)
	}
	if !v.Pan(-50, 30) || v.OffsetX != 950 || v.OffsetY != 30 {
		t.Errorf("want (950, 30), got (%g, %g)", v.OffsetX, v.OffsetY)
	}
	v.Reset()
	if v.OffsetX != 0 || v.OffsetY != 0 {
		t.Errorf("reset: want zero offset, got (%g, %g)", v.OffsetX, v.OffsetY)
	}
}

func TestViewport_Ticks(t *testing.T) {
	v := render.NewViewport(600, 400, graphcalc.DefaultWindow())
	var xs, ys int
	for _, tk := range v.Ticks() {
		if tk.Value == 0 {
			t.Error("zero must not get a tick")
		}
		if tk.Axis == graphcalc.AxisX {
			xs++
		} else {
			ys++
		}
	}
	if xs != 20 || ys != 16 {
		t.Errorf("want 20 x ticks and 16 y ticks, got %d and %d", xs, ys)
	}

	v.Pan(-300, 0)
	for _, tk := range v.Ticks() {
		if tk.Axis == graphcalc.AxisX && tk.Value < 0 {
			t.Fatalf("tick %d should be off-screen after panning left", tk.Value)
		}
	}
}

func TestViewport_TicksOnHugeWindow(t *testing.T) {
	w := graphcalc.DefaultWindow()
	w.Domain = graphcalc.Interval{Min: -graphcalc.MaxBound, Max: graphcalc.MaxBound}
	w.Range = graphcalc.Interval{Min: -graphcalc.MaxBound, Max: graphcalc.MaxBound}
	v := render.NewViewport(600, 400, w)
	ticks := v.Ticks()
	if len(ticks) != 40 {
		t.Errorf("want only the 24 + 16 on-screen ticks, got %d", len(ticks))
	}
}
