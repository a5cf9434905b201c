package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/evolenia/camera"
	"github.com/pthm-cable/evolenia/renderer"
)

// FieldTexture holds one texel per grid cell. It repeats at the edges so
// a camera view straddling the seam samples the opposite side.
type FieldTexture struct {
	tex    rl.Texture2D
	pixels []color.RGBA
	w, h   int

	initialized bool
}

// NewFieldTexture creates the texture (must be called after the raylib
// window is created).
func NewFieldTexture(w, h int) *FieldTexture {
	img := rl.GenImageColor(w, h, rl.Black)
	defer rl.UnloadImage(img)

	tex := rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(tex, rl.FilterPoint)
	rl.SetTextureWrap(tex, rl.WrapRepeat)

	return &FieldTexture{
		tex:         tex,
		pixels:      make([]color.RGBA, w*h),
		w:           w,
		h:           h,
		initialized: true,
	}
}

// Update recolours the texture from the committed grid state.
func (ft *FieldTexture) Update(v renderer.View, mode renderer.Mode) {
	if !ft.initialized || v.Width() != ft.w || v.Height() != ft.h {
		return
	}
	ft.pixels = renderer.Colorize(v, mode, ft.pixels)
	rl.UpdateTexture(ft.tex, ft.pixels)
}

// Draw fills the viewport with the part of the grid the camera sees.
func (ft *FieldTexture) Draw(cam *camera.Camera) {
	if !ft.initialized {
		return
	}
	x, y, w, h := cam.SourceRect()
	srcRect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	dstRect := rl.Rectangle{X: 0, Y: 0, Width: cam.ViewportW, Height: cam.ViewportH}
	rl.DrawTexturePro(ft.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (ft *FieldTexture) Unload() {
	if !ft.initialized {
		return
	}
	rl.UnloadTexture(ft.tex)
	ft.initialized = false
}
