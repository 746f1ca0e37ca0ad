// Wave preview tool - interactive side view of the surface and a few
// floating hulls, with sliders for the wave parameters.
//
// Usage: go run ./cmd/wavepreview
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swell/buoyancy"
	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/water"
)

const (
	windowWidth  = 1100
	windowHeight = 620
	panelWidth   = 300
	viewWidth    = windowWidth - panelWidth - 30

	// World units shown across the view, and pixels per unit vertically.
	worldSpan = 60.0
	pxPerUnit = float32(viewWidth) / worldSpan
	seaLevelY = windowHeight / 2
)

// previewHull is a standalone floating body for the preview; it implements
// the buoyancy handle directly, no ECS involved.
type previewHull struct {
	pos  buoyancy.Vec3
	half float32 // pontoon half-spacing
}

func (h *previewHull) Position() buoyancy.Vec3     { return h.pos }
func (h *previewHull) SetPosition(v buoyancy.Vec3) { h.pos = v }

// hullPoint samples at a fixed X offset from the hull.
type hullPoint struct {
	hull *previewHull
	dx   float32
}

func (p hullPoint) WorldPosition() buoyancy.Vec3 {
	v := p.hull.pos
	v.X += p.dx
	return v
}

// seaParams holds the slider-driven wave parameters.
type seaParams struct {
	Amplitude  float32
	Wavelength float32
	Steepness  float32
	Speed      float32
}

func buildWaves(p seaParams) []water.Wave {
	params := water.WaveParams{
		Count:         5,
		MinAmplitude:  p.Amplitude * 0.4,
		MaxAmplitude:  p.Amplitude,
		MinWavelength: p.Wavelength * 0.5,
		MaxWavelength: p.Wavelength,
		Steepness:     p.Steepness,
		MinSpeed:      p.Speed * 0.5,
		MaxSpeed:      p.Speed,
	}
	return water.NewSurface(params, 7).Waves()
}

func main() {
	config.MustInit("")
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Wave Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	params := seaParams{
		Amplitude:  0.6,
		Wavelength: 18.0,
		Steepness:  0.35,
		Speed:      2.5,
	}

	surface := water.NewSurfaceFromWaves(buildWaves(params))
	solver := water.NewSolver(surface)
	defer solver.Close()

	dispatcher, err := buoyancy.NewDispatcher(solver, buoyancy.Options{
		PoolCapacity:   64,
		MaxIterations:  cfg.Buoyancy.MaxIterations,
		ErrorThreshold: float32(cfg.Buoyancy.ErrorThreshold),
	})
	if err != nil {
		panic(err)
	}
	defer dispatcher.Close()

	hulls := []*previewHull{
		{pos: buoyancy.Vec3{X: -18}, half: 2.5},
		{pos: buoyancy.Vec3{X: 0}, half: 4},
		{pos: buoyancy.Vec3{X: 15}, half: 1.5},
	}
	for _, h := range hulls {
		points := []buoyancy.Point{
			hullPoint{hull: h, dx: -h.half},
			hullPoint{hull: h, dx: h.half},
		}
		if err := dispatcher.Registry().Register(h, points); err != nil {
			panic(err)
		}
	}

	for !rl.WindowShouldClose() {
		surface.Advance(rl.GetFrameTime())
		dispatcher.Tick()

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawWaterline(surface)
		drawHulls(hulls)
		drawSamples(dispatcher.Batch())

		if drawPanel(&params) {
			surface.SetWaves(buildWaves(params))
		}

		rl.EndDrawing()
	}
}

// worldToScreen maps world (x, y) to view pixels; y up becomes screen down.
func worldToScreen(x, y float32) rl.Vector2 {
	return rl.Vector2{
		X: float32(viewWidth)/2 + x*pxPerUnit,
		Y: seaLevelY - y*pxPerUnit,
	}
}

// drawWaterline plots the displaced surface along the z=0 line.
func drawWaterline(surface *water.Surface) {
	prev := rl.Vector2{}
	first := true
	for px := 0; px <= viewWidth; px += 4 {
		u := (float32(px) - float32(viewWidth)/2) / pxPerUnit
		dx, _, y := surface.Displace(u, 0)
		pt := worldToScreen(u+dx, y)
		if !first {
			rl.DrawLineEx(prev, pt, 2, rl.SkyBlue)
		}
		prev = pt
		first = false
	}
	// Sea level reference
	rl.DrawLine(0, seaLevelY, viewWidth, seaLevelY, rl.LightGray)
}

func drawHulls(hulls []*previewHull) {
	for _, h := range hulls {
		c := worldToScreen(h.pos.X, h.pos.Y)
		w := h.half * 2 * pxPerUnit
		rl.DrawRectangle(int32(c.X-w/2), int32(c.Y-6), int32(w), 12, rl.Brown)
	}
}

// drawSamples marks each solved sample at its queried position and height.
func drawSamples(batch buoyancy.BatchView) {
	positions := batch.Positions()
	heights := batch.Heights()
	for i := 0; i < batch.Count(); i++ {
		pt := worldToScreen(positions[i].X, heights[i])
		rl.DrawCircle(int32(pt.X), int32(pt.Y), 3, rl.Red)
	}
}

// drawPanel renders the sliders; reports true when a parameter changed.
func drawPanel(params *seaParams) bool {
	panelX := float32(viewWidth + 20)
	panelY := float32(20)
	changed := false

	rl.DrawText("Wave Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
	panelY += 35

	slider := func(label, minText, maxText string, value, minV, maxV float32) float32 {
		rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		v := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			minText, maxText,
			value, minV, maxV,
		)
		rl.DrawText(fmt.Sprintf("%.2f", value), int32(panelX+panelWidth-70), int32(panelY+2), 16, rl.DarkGray)
		panelY += 35
		return v
	}

	if v := slider("Amplitude", "0.1", "2.0", params.Amplitude, 0.1, 2.0); v != params.Amplitude {
		params.Amplitude = v
		changed = true
	}
	if v := slider("Wavelength", "4", "50", params.Wavelength, 4, 50); v != params.Wavelength {
		params.Wavelength = v
		changed = true
	}
	if v := slider("Steepness (chop)", "0.0", "0.8", params.Steepness, 0, 0.8); v != params.Steepness {
		params.Steepness = v
		changed = true
	}
	if v := slider("Speed", "0.5", "8.0", params.Speed, 0.5, 8.0); v != params.Speed {
		params.Speed = v
		changed = true
	}

	return changed
}
