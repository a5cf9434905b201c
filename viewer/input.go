package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/evolenia/ui"
)

// handleInput processes keyboard and mouse input.
func (a *App) handleInput() {
	a.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.game.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyN) && a.game.Paused() {
		a.game.Step()
	}

	if rl.IsKeyPressed(rl.KeyV) {
		a.mode = a.mode.Next()
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		a.game.SetStepsPerUpdate(a.game.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		a.game.SetStepsPerUpdate(a.game.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyS) {
		if _, err := a.game.SaveSnapshotToDir(); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.game.Reseed(a.rng.Int63())
		a.selector.Deselect()
	}

	a.overlays.HandleKeys()
	a.handleCameraInput()
	a.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == a.screenWidth && h == a.screenHeight {
		return
	}
	a.screenWidth = w
	a.screenHeight = h
	a.camera.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (a *App) handleCameraInput() {
	const panSpeed = 8 // screen pixels per frame

	if rl.IsKeyDown(rl.KeyRight) {
		a.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		a.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		a.camera.Pan(0, -panSpeed)
	}

	// Right-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		a.camera.Pan(-d.X, -d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.camera.ZoomBy(1 + wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		a.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		a.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		a.camera.Reset()
	}
}

// handleSelection picks the probed cell. Clicks over the parameter panel
// are left to raygui.
func (a *App) handleSelection() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		a.selector.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	m := rl.GetMousePosition()
	if a.overlays.IsEnabled(ui.OverlayParams) && m.X < panelWidth+20 {
		return
	}
	a.selector.Select(a.camera.CellAt(m.X, m.Y))
}
