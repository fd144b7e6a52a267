// Package events implements a Server-Sent Events broker that delivers note
// change notifications to the note owner's connected clients only.
package events

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Event kinds published by the API layer.
const (
	NoteCreated = "note.created"
	NoteUpdated = "note.updated"
	NoteDeleted = "note.deleted"
)

type subReq struct {
	owner int64
	ch    chan []byte
}

type pubReq struct {
	owner  int64
	kind   string
	noteID int64
}

// Broker manages SSE client connections keyed by owner id.
//
// Concurrency model: a single internal event loop (goroutine) owns the
// client map. Public methods communicate with this loop through channels,
// so no mutexes are required. Events for one owner are never delivered to
// another owner's clients.
type Broker struct {
	subscribeCh   chan subReq
	unsubscribeCh chan subReq
	publishCh     chan pubReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new broker and starts its event loop.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan subReq),
		unsubscribeCh: make(chan subReq),
		publishCh:     make(chan pubReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	// owner id -> set of client channels
	clients := make(map[int64]map[chan []byte]struct{})

	deliver := func(req pubReq) {
		subs := clients[req.owner]
		if len(subs) == 0 {
			return
		}
		payload, err := json.Marshal(map[string]int64{"id": req.noteID})
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", req.kind, payload))

		for ch := range subs {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for _, subs := range clients {
				for ch := range subs {
					close(ch)
				}
			}
			return

		case req := <-b.subscribeCh:
			if clients[req.owner] == nil {
				clients[req.owner] = make(map[chan []byte]struct{})
			}
			clients[req.owner][req.ch] = struct{}{}

		case req := <-b.unsubscribeCh:
			if subs, ok := clients[req.owner]; ok {
				if _, ok := subs[req.ch]; ok {
					delete(subs, req.ch)
					close(req.ch)
				}
				if len(subs) == 0 {
					delete(clients, req.owner)
				}
			}

		case req := <-b.publishCh:
			deliver(req)

		case resp := <-b.countReqCh:
			n := 0
			for _, subs := range clients {
				n += len(subs)
			}
			resp <- n
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new client for the given owner and returns its
// channel.
func (b *Broker) Subscribe(ownerID int64) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subReq{owner: ownerID, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ownerID int64, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- subReq{owner: ownerID, ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients across all owners.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends a note event to the owner's connected clients.
func (b *Broker) Publish(ownerID int64, kind string, noteID int64) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- pubReq{owner: ownerID, kind: kind, noteID: noteID}:
	case <-b.stopped:
	}
}
