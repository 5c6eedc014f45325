// Package nrz drives a rectangular matrix of WS2812-style LEDs as a grid
// device. The strip hangs off any periph.io display.Drawer, typically an
// nrzled device over SPI; rows may be wired serpentine (every odd row
// runs right-to-left).
//
// The matrix is output-only: it has no buttons, so the sink handed to its
// builder is never invoked.
package nrz

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/gridmosaic/canvas"
)

// refreshRate is the WS2812 signaling rate in kHz, same headroom the
// nrzled examples use.
const refreshRate physic.Frequency = 800

// DefaultFloor is one step above off on 8-bit strips.
const DefaultFloor = 1.0 / 255.0

// Options configures a matrix.
type Options struct {
	Width, Height int
	// Serpentine flips X on every odd row to follow zig-zag strip wiring.
	Serpentine bool
	// Floor is the reported lowest visible brightness. Zero picks
	// DefaultFloor.
	Floor float64
}

// Matrix is an LED matrix behind a display.Drawer.
type Matrix struct {
	width, height int
	serpentine    bool
	floor         float64
	drawer        display.Drawer
	pending       []canvas.Color
	committed     []canvas.Color
}

// New wraps an already-open drawer. Use NewSPI to open the usual
// spidev-backed strip.
func New(drawer display.Drawer, opts Options) *Matrix {
	if opts.Floor == 0 {
		opts.Floor = DefaultFloor
	}
	n := opts.Width * opts.Height
	return &Matrix{
		width:      opts.Width,
		height:     opts.Height,
		serpentine: opts.Serpentine,
		floor:      opts.Floor,
		drawer:     drawer,
		pending:    make([]canvas.Color, n),
		committed:  make([]canvas.Color, n),
	}
}

// NewSPI opens the named SPI port (e.g. "/dev/spidev0.0" or a spireg
// alias) and attaches an nrzled strip sized for the matrix.
func NewSPI(portName string, opts Options) (*Matrix, error) {
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("nrz: open spi port %q: %w", portName, err)
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: opts.Width * opts.Height,
		Channels:  3,
		Freq:      ((refreshRate * 3) + 100) * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("nrz: attach strip on %q: %w", portName, err)
	}
	return New(dev, opts), nil
}

// Builder adapts NewSPI to the factory shape Layout.Add expects. The sink
// is discarded: the matrix never emits events.
func Builder(portName string, opts Options) func(canvas.Sink) (canvas.Canvas, error) {
	return func(canvas.Sink) (canvas.Canvas, error) {
		return NewSPI(portName, opts)
	}
}

// stripIndex maps grid coordinates to the LED's position along the strip.
func (m *Matrix) stripIndex(x, y int) int {
	if m.serpentine && y%2 == 1 {
		x = m.width - 1 - x
	}
	return y*m.width + x
}

func (m *Matrix) index(p canvas.Pad) (int, bool) {
	if p.X < 0 || p.X >= m.width || p.Y < 0 || p.Y >= m.height {
		return 0, false
	}
	return p.Y*m.width + p.X, true
}

func (m *Matrix) BoundingBox() (int, int)          { return m.width, m.height }
func (m *Matrix) LowestVisibleBrightness() float64 { return m.floor }

func (m *Matrix) Get(p canvas.Pad) (canvas.Color, bool) {
	i, ok := m.index(p)
	if !ok {
		return canvas.Color{}, false
	}
	return m.committed[i], true
}

func (m *Matrix) GetPending(p canvas.Pad) (canvas.Color, bool) {
	i, ok := m.index(p)
	if !ok {
		return canvas.Color{}, false
	}
	return m.pending[i], true
}

func (m *Matrix) SetPending(p canvas.Pad, c canvas.Color) {
	if i, ok := m.index(p); ok {
		m.pending[i] = c
	}
}

func (m *Matrix) Pads() []canvas.Pad {
	pads := make([]canvas.Pad, 0, m.width*m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			pads = append(pads, canvas.Pad{X: x, Y: y})
		}
	}
	return pads
}

// Flush renders the pending frame as a 1×N strip image in wiring order
// and hands it to the drawer, then commits.
func (m *Matrix) Flush() error {
	img := image.NewNRGBA(image.Rect(0, 0, m.width*m.height, 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			img.SetNRGBA(m.stripIndex(x, y), 0, m.pending[y*m.width+x].NRGBA())
		}
	}
	if err := m.drawer.Draw(m.drawer.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("nrz: write frame: %w", err)
	}
	copy(m.committed, m.pending)
	return nil
}

// Halt blanks the strip and releases it.
func (m *Matrix) Halt() error {
	return m.drawer.Halt()
}
