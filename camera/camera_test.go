package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 256, 256)

	if cam.X != 128 || cam.Y != 128 {
		t.Errorf("expected camera at (128, 128), got (%f, %f)", cam.X, cam.Y)
	}
	// max(1280/256, 720/256) = 5
	if cam.Zoom != 5 || cam.MinZoom != 5 {
		t.Errorf("expected fitted zoom 5, got zoom %f min %f", cam.Zoom, cam.MinZoom)
	}
	if cam.MaxZoom != 5*maxZoomFactor {
		t.Errorf("expected MaxZoom %d, got %f", 5*maxZoomFactor, cam.MaxZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 256, 256)

	sx, sy := cam.WorldToScreen(128, 128)
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.SetZoom(8)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestToroidalWrap(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.X = 4 // near left edge

	// A cell at the right edge is closer via the wrap, so it lands left of center
	sx, _ := cam.WorldToScreen(250, 128)
	if sx >= 640 {
		t.Errorf("expected cell on left of screen, got x=%f", sx)
	}
}

func TestCellAt(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.X, cam.Y = 0, 0

	// Screen center is cell (0,0); one cell left wraps to the far column
	if x, y := cam.CellAt(640, 360); x != 0 || y != 0 {
		t.Errorf("center cell = (%d,%d), want (0,0)", x, y)
	}
	if x, y := cam.CellAt(640-cam.Zoom, 360-cam.Zoom); x != 255 || y != 255 {
		t.Errorf("wrapped cell = (%d,%d), want (255,255)", x, y)
	}
}

func TestSourceRect(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.X, cam.Y = 10, 10

	x, y, w, h := cam.SourceRect()
	if w != 256 || h != 144 {
		t.Errorf("size = %fx%f, want 256x144", w, h)
	}
	// The view extends past the top-left edge; the texture repeats there
	if x != 10-128 || y != 10-72 {
		t.Errorf("origin = (%f,%f), want (%d,%d)", x, y, 10-128, 10-72)
	}
}

func TestPanWraps(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.X = 10

	// 100 px at zoom 5 is 20 cells
	cam.Pan(-100, 0)

	if math.Abs(float64(cam.X-246)) > 0.001 {
		t.Errorf("expected X to wrap to 246, got %f", cam.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 256, 256)

	cam.SetZoom(0.1)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(1000)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestMinZoomPreventsDeadSpace(t *testing.T) {
	cam := New(800, 600, 400, 200)

	// max(800/400, 600/200) = 3
	if math.Abs(float64(cam.MinZoom-3)) > 0.001 {
		t.Errorf("expected MinZoom 3, got %f", cam.MinZoom)
	}

	// At min zoom the visible area exactly fits the limiting dimension
	visibleH := cam.ViewportH / cam.Zoom
	if math.Abs(float64(visibleH-cam.WorldH)) > 0.01 {
		t.Errorf("at min zoom, visible height %f should equal world height %f", visibleH, cam.WorldH)
	}
}

func TestResizeKeepsZoomInRange(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.Resize(2560, 1440)
	if cam.MinZoom != 10 || cam.Zoom != 10 {
		t.Errorf("after resize min %f zoom %f, want 10", cam.MinZoom, cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 256, 256)
	cam.X = 50
	cam.Y = 50
	cam.Zoom = 25

	cam.Reset()

	if cam.X != 128 || cam.Y != 128 {
		t.Errorf("expected position (128, 128), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom %f, got %f", cam.MinZoom, cam.Zoom)
	}
}
