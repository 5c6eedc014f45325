// Package preview exposes a grid device to browsers over a websocket:
// committed frames stream out, press/release events come back in. It is
// the interactive stand-in for hardware during bring-up.
package preview

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/gridmosaic/canvas"
)

// DefaultThrottle caps frame broadcasts at ~20 FPS per client.
const DefaultThrottle = 50 * time.Millisecond

// Options configures a preview grid.
type Options struct {
	Width, Height int
	// Floor is the reported lowest visible brightness. Zero picks the
	// 8-bit step 1/255.
	Floor float64
	// Throttle is the minimum interval between broadcast frames. Zero
	// picks DefaultThrottle.
	Throttle time.Duration
}

// frameMsg is what clients receive on every (throttled) flush.
type frameMsg struct {
	Type  string `json:"type"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	Frame uint64 `json:"frame"`
	RGB   string `json:"rgb"` // base64 of 3 bytes per pad, row-major
}

// inputMsg is what clients send back.
type inputMsg struct {
	Type string `json:"type"` // "press" | "release"
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Grid is a websocket-backed grid device.
type Grid struct {
	width, height int
	floor         float64
	throttle      time.Duration
	sink          canvas.Sink

	pending   []canvas.Color
	committed []canvas.Color

	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	frameID  uint64
	lastEmit time.Time
}

// New creates a preview grid delivering browser button events to sink.
func New(sink canvas.Sink, opts Options) *Grid {
	if opts.Floor == 0 {
		opts.Floor = 1.0 / 255.0
	}
	if opts.Throttle == 0 {
		opts.Throttle = DefaultThrottle
	}
	n := opts.Width * opts.Height
	return &Grid{
		width:     opts.Width,
		height:    opts.Height,
		floor:     opts.Floor,
		throttle:  opts.Throttle,
		sink:      sink,
		pending:   make([]canvas.Color, n),
		committed: make([]canvas.Color, n),
		clients:   map[*websocket.Conn]bool{},
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

// Flush commits the pending frame and broadcasts it to connected clients,
// throttled so a fast render loop does not swamp the browser.
func (g *Grid) Flush() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	copy(g.committed, g.pending)
	g.frameID++

	now := time.Now()
	if len(g.clients) == 0 || g.lastEmit.Add(g.throttle).After(now) {
		return nil
	}
	g.lastEmit = now
	g.broadcastLocked()
	return nil
}

// broadcastLocked sends the committed frame to every client. Callers hold
// g.mu.
func (g *Grid) broadcastLocked() {
	rgb := make([]byte, len(g.committed)*3)
	for i, c := range g.committed {
		n := c.NRGBA()
		rgb[i*3+0] = n.R
		rgb[i*3+1] = n.G
		rgb[i*3+2] = n.B
	}
	msg := frameMsg{
		Type:  "frame",
		W:     g.width,
		H:     g.height,
		Frame: g.frameID,
		RGB:   base64.StdEncoding.EncodeToString(rgb),
	}
	for conn := range g.clients {
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug().Err(err).Msg("preview: dropping client")
			delete(g.clients, conn)
			conn.Close()
		}
	}
}

// HandleWS upgrades the request and serves the client until it hangs up.
// Register it on whatever mux the host runs.
func (g *Grid) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("preview: client connected")

	g.mu.Lock()
	g.clients[conn] = true
	// Catch the newcomer up immediately, regardless of throttle.
	g.lastEmit = time.Now()
	g.broadcastLocked()
	g.mu.Unlock()

	go g.readLoop(conn)
}

func (g *Grid) readLoop(conn *websocket.Conn) {
	defer func() {
		g.mu.Lock()
		delete(g.clients, conn)
		g.mu.Unlock()
		conn.Close()
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("preview: client disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var in inputMsg
		if err := json.Unmarshal(data, &in); err != nil {
			log.Warn().Err(err).Msg("preview: bad client message")
			continue
		}
		if in.X < 0 || in.X >= g.width || in.Y < 0 || in.Y >= g.height {
			continue
		}
		switch in.Type {
		case "press":
			g.emit(canvas.Message{Kind: canvas.Press, X: in.X, Y: in.Y})
		case "release":
			g.emit(canvas.Message{Kind: canvas.Release, X: in.X, Y: in.Y})
		}
	}
}

func (g *Grid) emit(m canvas.Message) {
	if g.sink != nil {
		g.sink(m)
	}
}
