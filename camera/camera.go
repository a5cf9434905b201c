// Package camera provides the viewport over the toroidal cell grid.
package camera

import "math"

// Camera controls the viewport into the grid. World coordinates are cell
// units; Zoom is screen pixels per cell.
type Camera struct {
	// Position is the camera center in cell coordinates
	X, Y float32

	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid dimensions, for toroidal wrapping
	WorldW, WorldH float32

	MinZoom, MaxZoom float32
}

// maxZoomFactor bounds magnification relative to the fitted zoom.
const maxZoomFactor = 16

// New creates a camera centered on the grid, zoomed so the grid just
// covers the viewport.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.fitZoom()
	c.Zoom = c.MinZoom
	return c
}

// fitZoom recomputes the zoom limits. At zoom Z the visible area is
// (ViewportW/Z, ViewportH/Z), which must not exceed the grid in either
// dimension.
func (c *Camera) fitZoom() {
	c.MinZoom = max(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
	c.MaxZoom = c.MinZoom * maxZoomFactor
}

// WorldToScreen converts cell coordinates to screen coordinates, taking
// the shortest way round the torus.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)

	sx = c.ViewportW/2 + dx*c.Zoom
	sy = c.ViewportH/2 + dy*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to wrapped cell coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom

	wx = mod(c.X+dx, c.WorldW)
	wy = mod(c.Y+dy, c.WorldH)
	return wx, wy
}

// CellAt returns the grid cell under a screen position.
func (c *Camera) CellAt(sx, sy float32) (x, y int) {
	wx, wy := c.ScreenToWorld(sx, sy)
	x, y = int(wx), int(wy)
	// Guard the float edge where mod returns exactly the size
	if x >= int(c.WorldW) {
		x = 0
	}
	if y >= int(c.WorldH) {
		y = 0
	}
	return x, y
}

// SourceRect returns the visible area in cell coordinates as x, y, width,
// height. x and y may be negative or past the grid edge; the renderer
// samples the field texture with repeat wrapping.
func (c *Camera) SourceRect() (x, y, w, h float32) {
	w = c.ViewportW / c.Zoom
	h = c.ViewportH / c.Zoom
	return c.X - w/2, c.Y - h/2, w, h
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.fitZoom()
	c.Zoom = clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// Pan moves the camera by the given delta in screen pixels.
// Automatically wraps around world boundaries.
func (c *Camera) Pan(dx, dy float32) {
	c.X = mod(c.X+dx/c.Zoom, c.WorldW)
	c.Y = mod(c.Y+dy/c.Zoom, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the grid center at the fitted zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
