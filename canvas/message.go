package canvas

// MessageKind distinguishes the two button transitions a grid reports.
type MessageKind int

const (
	Press MessageKind = iota
	Release
)

func (k MessageKind) String() string {
	if k == Press {
		return "press"
	}
	return "release"
}

// Message is a single button event. Coordinates are device-local when the
// message is handed to a device's own sink, and layout-global once it has
// passed through a Layout's routing wrapper.
type Message struct {
	Kind MessageKind
	X, Y int
}

// Sink receives button events. Devices may invoke a sink from whatever
// goroutine their transport runs on, concurrently with other devices; a
// sink must be safe for concurrent use. The composition layer adds no
// locking of its own.
type Sink func(Message)
