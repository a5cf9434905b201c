package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/evolenia/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Frame      uint32
	SimTime    float64
	Mode       string
	Speed      int
	FPS        int32
	TPS        float64
	Paused     bool
	TotalMass  float64
	TargetMass float64
	Zoom       float32
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | t = %.1f | Speed: %dx | FPS: %d | TPS: %.0f",
			data.Frame, data.SimTime, data.Speed, data.FPS, data.TPS),
		10, 35, 16, rl.LightGray,
	)

	pct := 0.0
	if data.TargetMass > 0 {
		pct = data.TotalMass / data.TargetMass * 100
	}
	rl.DrawText(
		fmt.Sprintf("View: %s | Mass: %.0f (%.1f%% of target) | Zoom: %.1fx",
			data.Mode, data.TotalMass, pct, data.Zoom),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-stage timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	const width = 300
	height := int32(telemetry.NumStages)*14 + 78
	p.renderer.DrawPanel(p.x, p.y, width, height)

	x := p.x + p.renderer.Theme.Padding
	y := p.y + p.renderer.Theme.Padding

	rl.DrawText("Stage Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s ± %s  (%.0f/s)",
		stats.TickMean.Round(time.Microsecond), stats.TickStdDev.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 18

	for st := telemetry.Stage(0); st < telemetry.NumStages; st++ {
		pct := stats.StageShare[st]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %8s %5.1f%%", st, stats.StageMean[st].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}

	y += 4
	rl.DrawText(fmt.Sprintf("mass/target %.4f  max |c-1| %.4f", stats.MassRatio, stats.CorrectionMaxDev),
		x, y, 12, rl.SkyBlue)
}

// diagnosticsSections lays out the diagnostics panel.
var diagnosticsSections = []SectionDescriptor{
	{
		Title: "Population",
		Fields: []FieldDescriptor{
			{Label: "Live", Widget: WidgetBar, Format: "%.3f", Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.LiveFrac })},
			{Label: "Max mass", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.MaxMass })},
			{Label: "Mass std", Widget: WidgetText, Format: "%.4f", Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.MassStdDev })},
		},
	},
	{
		Title: "Energy",
		Fields: []FieldDescriptor{
			{Label: "Avg", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.AvgEnergy })},
			{Label: "P10/P50/P90", Widget: WidgetText, TextGetter: func(v any) string {
				d := v.(*telemetry.Diagnostics)
				return fmt.Sprintf("%.2f / %.2f / %.2f", d.EnergyP10, d.EnergyP50, d.EnergyP90)
			}},
			{Label: "Starving", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.StarvingFrac })},
		},
	},
	{
		Title: "Resources",
		Fields: []FieldDescriptor{
			{Label: "Avg", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.AvgResource })},
			{Label: "Depleted", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.DepletedFrac })},
		},
	},
	{
		Title: "Genetics",
		Fields: []FieldDescriptor{
			{Label: "Entropy", Widget: WidgetText, Format: "%.2f bits", Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.Entropy })},
			{Label: "Species", Widget: WidgetText, TextGetter: func(v any) string {
				return fmt.Sprintf("%d", v.(*telemetry.Diagnostics).Species)
			}},
			{Label: "Avg r", Widget: WidgetBar, Format: "%.2f", Range: FieldRange{Min: 0, Max: 16}, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.Genome.AvgR })},
			{Label: "Avg mu", Widget: WidgetBar, Format: "%.3f", Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.Genome.AvgMu })},
			{Label: "Avg sigma", Widget: WidgetBar, Format: "%.3f", Range: FieldRange{Min: 0, Max: 0.3}, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.Genome.AvgSigma })},
			{Label: "Predators", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.Genome.PredatorFrac })},
			{Label: "Prey", Widget: WidgetBar, Getter: diag(func(d *telemetry.Diagnostics) float64 { return d.Genome.PreyFrac })},
		},
	},
}

func diag(fn func(*telemetry.Diagnostics) float64) func(any) float32 {
	return func(v any) float32 {
		return float32(fn(v.(*telemetry.Diagnostics)))
	}
}

// DiagnosticsPanel renders the latest diagnostics sample.
type DiagnosticsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewDiagnosticsPanel creates a diagnostics panel.
func NewDiagnosticsPanel(x, y, width int32) *DiagnosticsPanel {
	return &DiagnosticsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *DiagnosticsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders d, or a placeholder before the first sample. It returns
// the Y coordinate below the panel.
func (p *DiagnosticsPanel) Draw(d *telemetry.Diagnostics, frame uint32) int32 {
	r := p.renderer
	padding := r.Theme.Padding

	if d == nil {
		r.DrawPanel(p.x, p.y, p.width, r.Theme.LineHeight+padding*2)
		rl.DrawText("Diagnostics: waiting for first sample", p.x+padding, p.y+padding, r.Theme.FontSize, r.Theme.LabelColor)
		return p.y + r.Theme.LineHeight + padding*2
	}

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range diagnosticsSections {
		height += r.SectionHeight(sd, d)
	}
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText(fmt.Sprintf("Diagnostics @ %d", frame), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range diagnosticsSections {
		y = r.DrawSection(x, y, sd, d, p.width-padding*2)
	}
	return p.y + height
}
