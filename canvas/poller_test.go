package canvas

import (
	"testing"
	"time"
)

func TestPollerFIFO(t *testing.T) {
	p := newPoller(8)
	for i := 0; i < 5; i++ {
		p.sink(Message{Kind: Press, X: i, Y: 0})
	}
	for i := 0; i < 5; i++ {
		m, ok := p.Poll()
		if !ok {
			t.Fatalf("expected message %d", i)
		}
		if m.X != i {
			t.Fatalf("out of order: got X=%d, want %d", m.X, i)
		}
	}
}

func TestPollEmptyNeverBlocks(t *testing.T) {
	p := newPoller(8)
	done := make(chan struct{})
	go func() {
		_, ok := p.Poll()
		if ok {
			t.Error("queue should be empty")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Poll blocked on an empty queue")
	}
}

func TestPollerBackpressure(t *testing.T) {
	p := newPoller(1)
	p.sink(Message{X: 1})

	delivered := make(chan struct{})
	go func() {
		p.sink(Message{X: 2}) // full queue: must block until drained
		close(delivered)
	}()

	select {
	case <-delivered:
		t.Fatal("sink returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	if m, ok := p.Poll(); !ok || m.X != 1 {
		t.Fatalf("got %+v %v, want X=1", m, ok)
	}
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("producer stayed blocked after a drain")
	}
	if m, ok := p.Poll(); !ok || m.X != 2 {
		t.Fatalf("got %+v %v, want X=2", m, ok)
	}
}

func TestPollerCloseReleasesProducer(t *testing.T) {
	p := newPoller(1)
	p.sink(Message{X: 1})

	released := make(chan struct{})
	go func() {
		p.sink(Message{X: 2})
		close(released)
	}()

	p.Close()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock the producer")
	}

	// Buffered messages stay pollable after Close.
	if m, ok := p.Poll(); !ok || m.X != 1 {
		t.Fatalf("got %+v %v, want X=1", m, ok)
	}
	p.Close() // idempotent
}
