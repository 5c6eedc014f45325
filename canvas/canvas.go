// Package canvas composes independently-addressable LED grid devices into
// one logical rectangular surface. Clients write pixels and receive
// press/release events in a single global coordinate space; the Layout
// fans work out to the right physical device, rotated and offset as
// configured.
package canvas

// Pad addresses a single button/LED cell. Coordinates are non-negative
// once a pad is part of a canvas; intermediate rotation math is signed.
type Pad struct {
	X, Y int
}

// Canvas is the device capability the composition layer consumes. A
// physical grid implements it over its transport; Layout implements it
// over its member devices, so layouts nest.
type Canvas interface {
	// BoundingBox returns the width and height of the local grid.
	BoundingBox() (width, height int)

	// LowestVisibleBrightness is the dimmest channel value, in [0,1),
	// that the device can still visibly distinguish from off.
	LowestVisibleBrightness() float64

	// Get returns the committed color at p, the value last actually sent
	// to hardware. ok is false when p is not part of the canvas; that is
	// a valid "no value" result, not an error.
	Get(p Pad) (Color, bool)

	// GetPending returns the color last written by the client but not yet
	// flushed.
	GetPending(p Pad) (Color, bool)

	// SetPending stages a color at p. Writes outside the canvas are
	// ignored.
	SetPending(p Pad, c Color)

	// Pads enumerates every addressable coordinate. It is consulted once,
	// when the canvas is registered into a layout.
	Pads() []Pad

	// Flush commits pending colors to hardware. A transport failure is
	// returned to the caller; this layer never retries.
	Flush() error
}

// Fill stages c on every pad of the canvas.
func Fill(cv Canvas, c Color) {
	for _, p := range cv.Pads() {
		cv.SetPending(p, c)
	}
}

// Clear stages black on every pad of the canvas.
func Clear(cv Canvas) {
	Fill(cv, Color{})
}
