package sim

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/gridmosaic/canvas"
)

// captureDrawer records the last frame handed to Draw.
type captureDrawer struct {
	last image.Image
}

func (d *captureDrawer) String() string          { return "capture" }
func (d *captureDrawer) Halt() error             { return nil }
func (d *captureDrawer) ColorModel() color.Model { return color.NRGBAModel }
func (d *captureDrawer) Bounds() image.Rectangle { return image.Rect(0, 0, 16, 1) }
func (d *captureDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.last = src
	return nil
}

func TestGridPendingCommittedCycle(t *testing.T) {
	g := New(nil, Options{Width: 4, Height: 4})
	p := canvas.Pad{X: 1, Y: 2}
	c := canvas.Color{R: 0.5}

	g.SetPending(p, c)
	pending, ok := g.GetPending(p)
	require.True(t, ok)
	assert.Equal(t, c, pending)

	committed, ok := g.Get(p)
	require.True(t, ok)
	assert.Equal(t, canvas.Color{}, committed, "nothing committed before flush")

	require.NoError(t, g.Flush())
	committed, _ = g.Get(p)
	assert.Equal(t, c, committed)
	assert.Equal(t, 1, g.Flushes)
}

func TestGridOutOfRange(t *testing.T) {
	g := New(nil, Options{Width: 4, Height: 4})
	_, ok := g.Get(canvas.Pad{X: 4, Y: 0})
	assert.False(t, ok)
	_, ok = g.GetPending(canvas.Pad{X: -1, Y: 0})
	assert.False(t, ok)
	g.SetPending(canvas.Pad{X: 0, Y: 9}, canvas.Color{R: 1}) // ignored
}

func TestGridPads(t *testing.T) {
	g := New(nil, Options{Width: 3, Height: 2})
	pads := g.Pads()
	require.Len(t, pads, 6)
	assert.Equal(t, canvas.Pad{X: 0, Y: 0}, pads[0])
	assert.Equal(t, canvas.Pad{X: 2, Y: 1}, pads[5])
	w, h := g.BoundingBox()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
}

func TestGridEmitsEvents(t *testing.T) {
	var got []canvas.Message
	g := New(func(m canvas.Message) { got = append(got, m) }, Options{Width: 4, Height: 4})
	g.Press(1, 2)
	g.Release(1, 2)
	require.Len(t, got, 2)
	assert.Equal(t, canvas.Message{Kind: canvas.Press, X: 1, Y: 2}, got[0])
	assert.Equal(t, canvas.Message{Kind: canvas.Release, X: 1, Y: 2}, got[1])
}

func TestGridFlushError(t *testing.T) {
	g := New(nil, Options{Width: 2, Height: 2})
	boom := errors.New("boom")
	g.FlushErr = boom
	assert.Same(t, boom, g.Flush())
	assert.Equal(t, 0, g.Flushes)

	g.FlushErr = nil
	require.NoError(t, g.Flush())
	assert.Equal(t, 1, g.Flushes)
}

func TestGridMirrorsToDrawer(t *testing.T) {
	d := &captureDrawer{}
	g := New(nil, Options{Width: 4, Height: 4, Drawer: d})
	g.SetPending(canvas.Pad{X: 1, Y: 0}, canvas.Color{R: 1})
	require.NoError(t, g.Flush())

	require.NotNil(t, d.last)
	assert.Equal(t, image.Rect(0, 0, 16, 1), d.last.Bounds(), "frame is a row-major strip")
	r, _, _, _ := d.last.At(1, 0).RGBA()
	assert.NotZero(t, r)
}

func TestGridDefaultFloor(t *testing.T) {
	g := New(nil, Options{Width: 1, Height: 1})
	assert.InDelta(t, DefaultFloor, g.LowestVisibleBrightness(), 1e-12)
	g = New(nil, Options{Width: 1, Height: 1, Floor: 0.2})
	assert.InDelta(t, 0.2, g.LowestVisibleBrightness(), 1e-12)
}
