package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ParamValues are the runtime-tunable parameters shown on the panel.
type ParamValues struct {
	DT                 float32
	MutationMultiplier float32
	PredationFactor    float32
	Feed               float32
	Damping            float32
	Normalize          bool
}

// slider describes one parameter slider.
type slider struct {
	label    string
	format   string
	min, max float32
	value    func(*ParamValues) *float32
}

var paramSliders = []slider{
	{"Time step (dt)", "%.3f", 0.01, 0.5, func(p *ParamValues) *float32 { return &p.DT }},
	{"Mutation x", "%.2f", 0, 5, func(p *ParamValues) *float32 { return &p.MutationMultiplier }},
	{"Predation factor", "%.2f", 0, 3, func(p *ParamValues) *float32 { return &p.PredationFactor }},
	{"Resource feed", "%.4f", 0, 0.05, func(p *ParamValues) *float32 { return &p.Feed }},
	{"Norm damping", "%.2f", 0, 1, func(p *ParamValues) *float32 { return &p.Damping }},
}

// ParamPanel renders raygui sliders for the tunable parameters and the
// overlay toggle list.
type ParamPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewParamPanel creates a parameter panel.
func NewParamPanel(x, y, width int32) *ParamPanel {
	return &ParamPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ParamPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and applies slider edits to p. It returns true
// if any value changed.
func (c *ParamPanel) Draw(p *ParamValues, overlays *OverlayRegistry) bool {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	rowHeight := lineHeight + 24
	overlayRows := int32(len(overlays.All()) + len(overlays.Categories()))
	panelHeight := padding*3 + lineHeight + 4 +
		int32(len(paramSliders))*rowHeight + 28 +
		overlayRows*lineHeight + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	y := c.y + padding
	contentW := float32(c.width - padding*2)

	rl.DrawText("Parameters", x, y, 16, rl.White)
	y += lineHeight + 4

	changed := false
	for _, s := range paramSliders {
		v := s.value(p)
		rl.DrawText(s.label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		valText := fmt.Sprintf(s.format, *v)
		rl.DrawText(valText, x+int32(contentW)-rl.MeasureText(valText, r.Theme.FontSize), y, r.Theme.FontSize, r.Theme.ValueColor)
		y += lineHeight

		nv := gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y), Width: contentW, Height: 16},
			"", "",
			*v, s.min, s.max,
		)
		if nv != *v {
			*v = nv
			changed = true
		}
		y += 24
	}

	nn := gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 16, Height: 16}, "Normalize mass", p.Normalize)
	if nn != p.Normalize {
		p.Normalize = nn
		changed = true
	}
	y += 28

	for _, category := range overlays.Categories() {
		rl.DrawText(category, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), int32(contentW))
			y += lineHeight
		}
	}

	return changed
}

// drawToggle draws a single overlay toggle line.
func (c *ParamPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}
