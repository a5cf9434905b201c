package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/evolenia/inspector"
)

// ProbePanel renders the state of the selected cell.
type ProbePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewProbePanel creates a new probe panel.
func NewProbePanel(x, y, width int32) *ProbePanel {
	return &ProbePanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *ProbePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders probe, laid out from its inspect tags.
func (p *ProbePanel) Draw(probe inspector.CellProbe) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	fields := inspector.ExtractFields(probe)

	height := padding*2 + r.Theme.LineHeight + 4 + int32(len(fields))*(r.Theme.LineHeight+2)
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText(fmt.Sprintf("Cell (%d, %d)", probe.X, probe.Y), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	contentW := p.width - padding*2
	for _, f := range fields {
		text := inspector.FormatValue(f.Value, f.Options["fmt"])
		if f.Widget == inspector.WidgetBar {
			if v, ok := inspector.GetFloatValue(f.Value); ok {
				y = r.DrawBar(x, y, f.Name, text, v, 0, inspector.GetMax(f.Options), contentW)
				continue
			}
		}
		y = r.DrawLabelValue(x, y, f.Name, text) + 2
	}
	return p.y + height
}
