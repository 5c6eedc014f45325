// Package sim provides an in-memory grid device. It backs headless tests
// and demo runs, and can mirror its committed frame onto any periph.io
// display.Drawer (a console screen, an SPI panel) without pretending to
// be real input hardware.
package sim

import (
	"image"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/gridmosaic/canvas"
)

// DefaultFloor approximates 6-bit hardware: one step above off.
const DefaultFloor = 1.0 / 63.0

// Options configures a simulated grid.
type Options struct {
	Width, Height int
	// Floor is the reported lowest visible brightness. Zero picks
	// DefaultFloor.
	Floor float64
	// Drawer, when set, receives the committed frame on every flush.
	Drawer display.Drawer
}

// Grid is a simulated grid device.
type Grid struct {
	width, height int
	floor         float64
	sink          canvas.Sink
	drawer        display.Drawer
	pending       []canvas.Color
	committed     []canvas.Color

	// Flushes counts completed Flush calls.
	Flushes int
	// FlushErr, when non-nil, is returned by every Flush until cleared.
	FlushErr error
}

// New creates a simulated grid delivering its button events to sink.
func New(sink canvas.Sink, opts Options) *Grid {
	if opts.Floor == 0 {
		opts.Floor = DefaultFloor
	}
	n := opts.Width * opts.Height
	return &Grid{
		width:     opts.Width,
		height:    opts.Height,
		floor:     opts.Floor,
		sink:      sink,
		drawer:    opts.Drawer,
		pending:   make([]canvas.Color, n),
		committed: make([]canvas.Color, n),
	}
}

// Builder adapts New to the factory shape Layout.Add expects.
func Builder(opts Options) func(canvas.Sink) (canvas.Canvas, error) {
	return func(sink canvas.Sink) (canvas.Canvas, error) {
		return New(sink, opts), nil
	}
}

func (g *Grid) index(p canvas.Pad) (int, bool) {
	if p.X < 0 || p.X >= g.width || p.Y < 0 || p.Y >= g.height {
		return 0, false
	}
	return p.Y*g.width + p.X, true
}

func (g *Grid) BoundingBox() (int, int)          { return g.width, g.height }
func (g *Grid) LowestVisibleBrightness() float64 { return g.floor }

func (g *Grid) Get(p canvas.Pad) (canvas.Color, bool) {
	i, ok := g.index(p)
	if !ok {
		return canvas.Color{}, false
	}
	return g.committed[i], true
}

func (g *Grid) GetPending(p canvas.Pad) (canvas.Color, bool) {
	i, ok := g.index(p)
	if !ok {
		return canvas.Color{}, false
	}
	return g.pending[i], true
}

func (g *Grid) SetPending(p canvas.Pad, c canvas.Color) {
	if i, ok := g.index(p); ok {
		g.pending[i] = c
	}
}

func (g *Grid) Pads() []canvas.Pad {
	pads := make([]canvas.Pad, 0, g.width*g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			pads = append(pads, canvas.Pad{X: x, Y: y})
		}
	}
	return pads
}

// Flush commits pending to committed and mirrors the frame to the drawer
// if one is configured.
func (g *Grid) Flush() error {
	if g.FlushErr != nil {
		return g.FlushErr
	}
	copy(g.committed, g.pending)
	g.Flushes++

	if g.drawer != nil {
		// Row-major 1xN strip image; matches one-row drawers like the
		// periph console screen.
		img := image.NewNRGBA(image.Rect(0, 0, len(g.committed), 1))
		for i, c := range g.committed {
			img.SetNRGBA(i, 0, c.NRGBA())
		}
		if err := g.drawer.Draw(g.drawer.Bounds(), img, image.Point{}); err != nil {
			return err
		}
	}
	return nil
}

// Press injects a press event at local coordinates, as the hardware
// would.
func (g *Grid) Press(x, y int) {
	if g.sink != nil {
		g.sink(canvas.Message{Kind: canvas.Press, X: x, Y: y})
	}
}

// Release injects a release event at local coordinates.
func (g *Grid) Release(x, y int) {
	if g.sink != nil {
		g.sink(canvas.Message{Kind: canvas.Release, X: x, Y: y})
	}
}
