// Landscape preview tool - interactive view of the initial resource field
// with sliders for every landscape parameter.
//
// Usage: go run ./cmd/landscapepreview [-config file.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/evolenia/config"
	"github.com/pthm-cable/evolenia/renderer"
	"github.com/pthm-cable/evolenia/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// slider binds one landscape parameter to a raygui slider.
type slider struct {
	label  string
	lo, hi float32
	format string
	get    func(*config.LandscapeConfig) float32
	set    func(*config.LandscapeConfig, float32)
}

var sliders = []slider{
	{"Base (resource level)", 0, 1, "%.2f",
		func(c *config.LandscapeConfig) float32 { return float32(c.Base) },
		func(c *config.LandscapeConfig, v float32) { c.Base = float64(v) }},
	{"Oases", 0, 40, "%.0f",
		func(c *config.LandscapeConfig) float32 { return float32(c.Oases) },
		func(c *config.LandscapeConfig, v float32) { c.Oases = int(v) }},
	{"Deserts", 0, 40, "%.0f",
		func(c *config.LandscapeConfig) float32 { return float32(c.Deserts) },
		func(c *config.LandscapeConfig, v float32) { c.Deserts = int(v) }},
	{"Band amplitude", 0, 0.5, "%.3f",
		func(c *config.LandscapeConfig) float32 { return float32(c.BandAmplitude) },
		func(c *config.LandscapeConfig, v float32) { c.BandAmplitude = float64(v) }},
	{"Noise amplitude", 0, 0.5, "%.3f",
		func(c *config.LandscapeConfig) float32 { return float32(c.NoiseAmplitude) },
		func(c *config.LandscapeConfig, v float32) { c.NoiseAmplitude = float64(v) }},
	{"Noise scale (cycles per cell)", 0.001, 0.1, "%.4f",
		func(c *config.LandscapeConfig) float32 { return float32(c.NoiseScale) },
		func(c *config.LandscapeConfig, v float32) { c.NoiseScale = float64(v) }},
	{"Noise octaves", 1, 6, "%.0f",
		func(c *config.LandscapeConfig) float32 { return float32(c.NoiseOctaves) },
		func(c *config.LandscapeConfig, v float32) { c.NoiseOctaves = int(v) }},
	{"Floor", 0, 0.5, "%.2f",
		func(c *config.LandscapeConfig) float32 { return float32(c.Floor) },
		func(c *config.LandscapeConfig, v float32) { c.Floor = float64(v) }},
}

// landscapeYAML renders params as a config fragment.
func landscapeYAML(params config.LandscapeConfig) (string, error) {
	out, err := yaml.Marshal(struct {
		Landscape config.LandscapeConfig `yaml:"landscape"`
	}{params})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	outPath := flag.String("out", "landscape.yaml", "File written by the Save button")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := cfg.Landscape
	params := defaults
	seed := cfg.World.Seed
	if seed == 0 {
		seed = 12345
	}
	w, h := cfg.World.Width, cfg.World.Height

	rl.InitWindow(windowWidth, windowHeight, "Landscape Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	res := make([]float32, w*h)
	pixels := make([]color.RGBA, w*h)
	img := rl.GenImageColor(w, h, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	needsRegen := true
	status := ""

	for !rl.WindowShouldClose() {
		if needsRegen {
			systems.Landscape(res, w, h, params, rand.New(rand.NewSource(seed)))
			for i, r := range res {
				pixels[i] = renderer.ResourceColor(r, 0)
			}
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(w), Height: float32(h)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		lo, hi, sum := float32(1), float32(0), float32(0)
		for _, v := range res {
			lo = min(lo, v)
			hi = max(hi, v)
			sum += v
		}
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Avg: %.3f", lo, hi, sum/float32(len(res))), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Grid: %dx%d  Seed: %d", w, h, seed), 15, statsY+20, 16, rl.DarkGray)
		if status != "" {
			rl.DrawText(status, 15, statsY+40, 16, rl.DarkGray)
		}

		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Landscape Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			cur := s.get(&params)
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, s.lo, s.hi,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != cur {
				s.set(&params, next)
				needsRegen = true
			}
			panelY += 35
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 260, Y: panelY, Width: 120, Height: 30}, "Save YAML") {
			status = save(*outPath, params)
		}
		panelY += 45

		text, err := landscapeYAML(params)
		if err != nil {
			text = err.Error()
		}
		rl.DrawText(text, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) && err == nil {
			rl.SetClipboardText(text)
			status = "copied to clipboard"
		}

		rl.EndDrawing()
	}
}

// save writes the landscape fragment and returns a status line.
func save(path string, params config.LandscapeConfig) string {
	text, err := landscapeYAML(params)
	if err == nil {
		err = os.WriteFile(path, []byte(text), 0644)
	}
	if err != nil {
		slog.Error("failed to save landscape", "path", path, "error", err)
		return "save failed: " + err.Error()
	}
	slog.Info("landscape saved", "path", path)
	return "saved " + path
}
