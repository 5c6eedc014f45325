package canvas

import "fmt"

// layoutDevice is one registered member: the device capability plus its
// placement. Immutable once added; its position in the slice is its
// permanent index.
type layoutDevice struct {
	canvas   Canvas
	rotation Rotation
	xOffset  int
	yOffset  int
}

func (d *layoutDevice) toLocal(x, y int) (int, int) {
	return toLocal(x, y, d.rotation, d.xOffset, d.yOffset)
}

// pixel is the per-global-coordinate state of the layout.
type pixel struct {
	deviceIndex int
	pending     Color
	committed   Color
}

// OverlapError reports two devices claiming the same global coordinate at
// registration time. It signals a configuration bug, not a run-time
// condition: the layout never resolves overlap silently, and the Add that
// produced it must not be retried with the same placement.
type OverlapError struct {
	Pad      Pad
	Existing int // index of the device that already owns Pad
	Adding   int // index the rejected device would have received
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("canvas: overlap at (%d,%d): device %d already claims the pad while adding device %d",
		e.Pad.X, e.Pad.Y, e.Existing, e.Adding)
}

// DefaultLightThreshold is the brightness floor colors are authored
// against unless SetLightThreshold says otherwise.
const DefaultLightThreshold = 0.25

// Layout composes any number of Canvas devices into one logical grid.
//
// Writes and reads use global coordinates; Flush remaps colors per device
// brightness floor and fans them out through the inverse placement
// transform. Events emitted by member devices arrive at the layout's sink
// already translated to global coordinates.
//
// Add calls must happen before event delivery starts, and Flush must not
// run concurrently with itself or with Add. Those are the only mutation
// paths, so the layout takes no locks; the shared sink is the one piece
// that must tolerate concurrent calls.
type Layout struct {
	devices        []layoutDevice
	pixels         map[Pad]*pixel
	sink           Sink
	lightThreshold float64
}

// NewLayout creates an empty layout delivering events to sink. The sink
// may be invoked concurrently by any number of member devices.
func NewLayout(sink Sink) *Layout {
	return &Layout{
		pixels:         make(map[Pad]*pixel),
		sink:           sink,
		lightThreshold: DefaultLightThreshold,
	}
}

// NewPollingLayout creates a layout whose events are pulled from the
// returned Poller instead of pushed through a callback. buffer <= 0 picks
// a reasonable default.
func NewPollingLayout(buffer int) (*Layout, *Poller) {
	p := newPoller(buffer)
	return NewLayout(p.sink), p
}

// LightThreshold returns the brightness floor the layout's colors are
// authored against.
func (l *Layout) LightThreshold() float64 { return l.lightThreshold }

// SetLightThreshold changes the authored brightness floor used as the
// remap source at the next Flush.
func (l *Layout) SetLightThreshold(v float64) { l.lightThreshold = v }

// Add registers a device at the given offset and rotation. build is
// called exactly once with a sink that already translates the device's
// local coordinates to global ones; whatever it returns as an error is
// propagated verbatim.
//
// Every pad the new device advertises is transformed to global space and
// claimed. If any claimed coordinate is already owned, Add rolls back the
// partial claim and returns an *OverlapError naming the coordinate and
// both device indices. Overlapping placement is a configuration bug the
// host must fix; retrying the same placement cannot succeed.
func (l *Layout) Add(xOffset, yOffset int, rot Rotation, build func(Sink) (Canvas, error)) error {
	sink := l.sink
	routed := func(m Message) {
		m.X, m.Y = toGlobal(m.X, m.Y, rot, xOffset, yOffset)
		sink(m)
	}

	cv, err := build(routed)
	if err != nil {
		return err
	}

	index := len(l.devices)
	var claimed []Pad
	for _, p := range cv.Pads() {
		gx, gy := toGlobal(p.X, p.Y, rot, xOffset, yOffset)
		global := Pad{X: gx, Y: gy}
		if prev, ok := l.pixels[global]; ok {
			// Roll the partial claim back so the map never references a
			// device that was not appended.
			for _, q := range claimed {
				delete(l.pixels, q)
			}
			return &OverlapError{Pad: global, Existing: prev.deviceIndex, Adding: index}
		}
		claimed = append(claimed, global)
		px := &pixel{deviceIndex: index}
		if c, ok := cv.GetPending(p); ok {
			px.pending = c
		}
		if c, ok := cv.Get(p); ok {
			px.committed = c
		}
		l.pixels[global] = px
	}

	l.devices = append(l.devices, layoutDevice{
		canvas:   cv,
		rotation: rot,
		xOffset:  xOffset,
		yOffset:  yOffset,
	})
	return nil
}

// BoundingBox is the componentwise maximum of every member device's own
// bounding box. With non-zero offsets this underreports the true extent;
// kept that way deliberately, see DESIGN.md.
func (l *Layout) BoundingBox() (int, int) {
	var width, height int
	for i := range l.devices {
		w, h := l.devices[i].canvas.BoundingBox()
		width = max(width, w)
		height = max(height, h)
	}
	return width, height
}

// LowestVisibleBrightness reports the layout's own authored floor, not
// any member device's physical one. The decoupling is the point: Flush
// remaps between the two.
func (l *Layout) LowestVisibleBrightness() float64 {
	return l.lightThreshold
}

func (l *Layout) Get(p Pad) (Color, bool) {
	px, ok := l.pixels[p]
	if !ok {
		return Color{}, false
	}
	return px.committed, true
}

func (l *Layout) GetPending(p Pad) (Color, bool) {
	px, ok := l.pixels[p]
	if !ok {
		return Color{}, false
	}
	return px.pending, true
}

func (l *Layout) SetPending(p Pad, c Color) {
	if px, ok := l.pixels[p]; ok {
		px.pending = c
	}
}

func (l *Layout) Pads() []Pad {
	pads := make([]Pad, 0, len(l.pixels))
	for p := range l.pixels {
		pads = append(pads, p)
	}
	return pads
}

// Flush pushes every pending color down to its owning device and flushes
// the devices in ascending index order. The first device failure aborts
// the remaining flushes and propagates.
//
// Each color is remapped from the layout's light threshold onto the
// owning device's own brightness floor before it is written into the
// device's pending buffer at the backward-transformed local coordinate.
// The layout's committed state is synchronized from pending for every
// pixel during the rewrite pass, before any device is flushed; the remap
// affects only the outbound device buffers, never the layout's own stored
// colors.
func (l *Layout) Flush() error {
	for global, px := range l.pixels {
		dev := &l.devices[px.deviceIndex]

		c := px.pending.Remapped(l.lightThreshold, dev.canvas.LowestVisibleBrightness())
		lx, ly := dev.toLocal(global.X, global.Y)
		dev.canvas.SetPending(Pad{X: lx, Y: ly}, c)

		px.committed = px.pending
	}

	for i := range l.devices {
		if err := l.devices[i].canvas.Flush(); err != nil {
			return err
		}
	}
	return nil
}
