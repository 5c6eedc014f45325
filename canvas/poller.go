package canvas

import "sync"

// DefaultPollBuffer is the queue capacity NewPollingLayout uses when the
// caller does not pick one.
const DefaultPollBuffer = 50

// Poller buffers layout events behind a bounded queue for clients that
// would rather pull messages than handle a callback.
//
// The queue deliberately applies backpressure: once it is full, the
// producing device's delivery context blocks until the consumer drains a
// message or the poller is closed. Bounded memory in exchange for a
// possible stall is the intended trade-off, not an accident.
type Poller struct {
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func newPoller(buffer int) *Poller {
	if buffer <= 0 {
		buffer = DefaultPollBuffer
	}
	return &Poller{
		ch:   make(chan Message, buffer),
		done: make(chan struct{}),
	}
}

// sink is the Sink handed to the owning layout. Safe for concurrent use.
func (p *Poller) sink(m Message) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.ch <- m:
	case <-p.done:
	}
}

// Poll returns the oldest buffered message, or ok=false immediately when
// the queue is empty. It never blocks. Messages come out in the order
// they were enqueued.
func (p *Poller) Poll() (Message, bool) {
	select {
	case m := <-p.ch:
		return m, true
	default:
		return Message{}, false
	}
}

// Close ends delivery: blocked producers are released and later events
// are dropped. Messages already buffered remain pollable. Safe to call
// more than once.
func (p *Poller) Close() {
	p.once.Do(func() { close(p.done) })
}
