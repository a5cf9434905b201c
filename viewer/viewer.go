// Package viewer is the interactive raylib front end: it draws the grid,
// handles input and hosts the UI panels around a game.Game.
package viewer

import (
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/evolenia/camera"
	"github.com/pthm-cable/evolenia/game"
	"github.com/pthm-cable/evolenia/inspector"
	"github.com/pthm-cable/evolenia/renderer"
	"github.com/pthm-cable/evolenia/ui"
)

const (
	panelWidth = 260
	controls   = "[Space] pause  [N] step  [V] view  [,/.] speed  [S] save  [R] reseed  [H] panel  [Arrows/RMB] pan  [Wheel] zoom  [LMB] probe"
)

// App renders a running game. Create it after rl.InitWindow.
type App struct {
	game *game.Game
	rng  *rand.Rand

	camera   *camera.Camera
	field    *FieldTexture
	mode     renderer.Mode
	selector *inspector.Inspector

	overlays    *ui.OverlayRegistry
	hud         *ui.HUD
	params      *ui.ParamPanel
	diagnostics *ui.DiagnosticsPanel
	probe       *ui.ProbePanel
	perf        *ui.PerfPanel

	screenWidth, screenHeight float32
}

// New creates a viewer for g sized to the current window.
func New(g *game.Game) *App {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	f := g.Sim().Field()

	a := &App{
		game:         g,
		rng:          rand.New(rand.NewSource(g.Sim().Seed())),
		camera:       camera.New(w, h, float32(f.W), float32(f.H)),
		field:        NewFieldTexture(f.W, f.H),
		selector:     inspector.NewInspector(),
		overlays:     ui.NewOverlayRegistry(),
		hud:          ui.NewHUD(),
		params:       ui.NewParamPanel(10, 100, panelWidth),
		diagnostics:  ui.NewDiagnosticsPanel(int32(w)-panelWidth-10, 10, panelWidth),
		probe:        ui.NewProbePanel(int32(w)-panelWidth-10, 10, panelWidth),
		perf:         ui.NewPerfPanel(10, int32(h)-200),
		screenWidth:  w,
		screenHeight: h,
	}
	a.field.Update(f, a.mode)
	return a
}

// Update handles input and advances the game.
func (a *App) Update() {
	a.handleInput()
	a.game.Update()
}

// Draw renders one frame.
func (a *App) Draw() {
	a.game.Perf().RecordFrame()

	sim := a.game.Sim()
	a.field.Update(sim.Field(), a.mode)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	a.field.Draw(a.camera)
	a.drawSelection()

	a.hud.Draw(ui.HUDData{
		Title:      "EvoLenia",
		Frame:      sim.Frame(),
		SimTime:    float64(sim.Frame()) * float64(sim.Params().DT),
		Mode:       a.mode.String(),
		Speed:      a.game.StepsPerUpdate(),
		FPS:        rl.GetFPS(),
		TPS:        a.game.Perf().Stats().TicksPerSecond,
		Paused:     a.game.Paused(),
		TotalMass:  sim.Field().TotalMass(),
		TargetMass: sim.TargetMass(),
		Zoom:       a.camera.Zoom / a.camera.MinZoom,
	})

	if a.overlays.IsEnabled(ui.OverlayParams) {
		values := a.paramValues()
		if a.params.Draw(&values, a.overlays) {
			a.applyParams(values)
		}
	}

	rightY := int32(10)
	if a.overlays.IsEnabled(ui.OverlayDiagnostics) {
		a.diagnostics.SetPosition(int32(a.screenWidth)-panelWidth-10, rightY)
		if d, frame, ok := a.game.Latest(); ok {
			rightY = a.diagnostics.Draw(&d, frame) + 10
		} else {
			rightY = a.diagnostics.Draw(nil, 0) + 10
		}
	}
	if a.overlays.IsEnabled(ui.OverlayProbe) {
		if p, ok := a.selector.Probe(sim.Field()); ok {
			a.probe.SetPosition(int32(a.screenWidth)-panelWidth-10, rightY)
			a.probe.Draw(p)
		}
	}
	if a.overlays.IsEnabled(ui.OverlayPerf) {
		a.perf.SetPosition(10, int32(a.screenHeight)-220)
		a.perf.Draw(a.game.Perf().Stats())
	}
	if a.overlays.IsEnabled(ui.OverlayHelp) {
		a.hud.DrawControls(int32(a.screenHeight), controls)
	}

	rl.EndDrawing()
}

// drawSelection outlines the probed cell.
func (a *App) drawSelection() {
	x, y, ok := a.selector.Selected()
	if !ok {
		return
	}
	sx, sy := a.camera.WorldToScreen(float32(x), float32(y))
	z := a.camera.Zoom
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx - 1, Y: sy - 1, Width: z + 2, Height: z + 2}, 1, rl.White)
}

func (a *App) paramValues() ui.ParamValues {
	p := a.game.Sim().Params()
	return ui.ParamValues{
		DT:                 p.DT,
		MutationMultiplier: p.MutationMultiplier,
		PredationFactor:    p.PredationFactor,
		Feed:               p.Feed,
		Damping:            float32(p.Damping),
		Normalize:          p.NormalizeEnabled,
	}
}

// applyParams writes panel edits into the live parameters and the config
// so a later save records them.
func (a *App) applyParams(v ui.ParamValues) {
	p := a.game.Sim().Params()
	p.DT = v.DT
	p.MutationMultiplier = v.MutationMultiplier
	p.PredationFactor = v.PredationFactor
	p.Feed = v.Feed
	p.Damping = float64(v.Damping)
	p.NormalizeEnabled = v.Normalize

	cfg := a.game.Config()
	cfg.Physics.DT = float64(v.DT)
	cfg.Genetics.MutationMultiplier = float64(v.MutationMultiplier)
	cfg.Metabolism.PredationFactor = float64(v.PredationFactor)
	cfg.Resource.Feed = float64(v.Feed)
	cfg.Normalization.Damping = float64(v.Damping)
	cfg.Normalization.Enabled = v.Normalize
	cfg.Refresh()
}

// Unload frees GPU resources. The game is left to its owner.
func (a *App) Unload() {
	a.field.Unload()
}
