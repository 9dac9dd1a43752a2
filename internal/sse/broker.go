// Package sse streams feed build notifications to preview clients as
// Server-Sent Events.
//
// Clients connect to GET /events. Each message is framed as
//
//	id: <seq>
//	event: <type>
//	data: <json>
//
// New clients first receive the latest state of every feed built so far.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/markdownfeeds/internal/generator"
)

// Message types.
const (
	TypePageExported = "page.exported"
	TypeFeedBuilt    = "feed.built"
	TypeFeedFailed   = "feed.failed"
	TypeReload       = "reload"
)

const (
	clientBuffer = 64
	queueSize    = 256

	// DefaultReloadInterval is the minimum gap between two reload messages.
	DefaultReloadInterval = 2 * time.Second
	// DefaultHeartbeat is how often an idle stream receives a comment line.
	DefaultHeartbeat = 15 * time.Second
)

// Message is a single notification for clients.
type Message struct {
	Type string `json:"type"`
	Feed string `json:"feed,omitempty"`
	Data any    `json:"data"`
}

// Broker fans build notifications out to connected clients.
//
// One goroutine owns the client set, the per-feed state and the reload
// clock. Every public method talks to it over channels.
type Broker struct {
	reloadEvery time.Duration
	heartbeat   time.Duration

	join  chan chan []byte
	leave chan chan []byte
	queue chan outgoing
	count chan chan int

	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type outgoing struct {
	msg    Message
	reload bool
}

var _ generator.Observer = (*Broker)(nil)

// NewBroker starts a broker. A reloadEvery of zero or less uses
// DefaultReloadInterval.
func NewBroker(reloadEvery time.Duration) *Broker {
	if reloadEvery <= 0 {
		reloadEvery = DefaultReloadInterval
	}
	b := &Broker{
		reloadEvery: reloadEvery,
		heartbeat:   DefaultHeartbeat,
		join:        make(chan chan []byte),
		leave:       make(chan chan []byte),
		queue:       make(chan outgoing, queueSize),
		count:       make(chan chan int),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	var (
		seq        uint64
		lastReload time.Time
		clients    = make(map[chan []byte]struct{})
		latest     = make(map[string][]byte)
		order      []string
	)

	frame := func(m Message) []byte {
		payload, err := json.Marshal(m.Data)
		if err != nil {
			return nil
		}
		seq++
		return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, m.Type, payload)
	}
	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// slow client, drop
		}
	}
	broadcast := func(raw []byte) {
		for ch := range clients {
			send(ch, raw)
		}
	}

	for {
		select {
		case <-b.done:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			for _, feed := range order {
				send(ch, latest[feed])
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case out := <-b.queue:
			raw := frame(out.msg)
			if raw == nil {
				continue
			}
			broadcast(raw)
			if out.msg.Type == TypeFeedBuilt || out.msg.Type == TypeFeedFailed {
				if _, seen := latest[out.msg.Feed]; !seen {
					order = append(order, out.msg.Feed)
				}
				latest[out.msg.Feed] = raw
			}
			if out.reload && time.Since(lastReload) >= b.reloadEvery {
				lastReload = time.Now()
				broadcast(frame(Message{Type: TypeReload, Data: struct{}{}}))
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

func (b *Broker) enqueue(out outgoing) {
	if b.closed.Load() {
		return
	}
	select {
	case b.queue <- out:
	case <-b.stopped:
	}
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
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

// Publish sends m to every client.
func (b *Broker) Publish(m Message) {
	b.enqueue(outgoing{msg: m})
}

// Observe forwards exported pages, finished feeds and failures. A finished
// feed also triggers a reload message, at most once per reload interval.
func (b *Broker) Observe(e generator.Event) {
	var out outgoing
	switch e.Kind {
	case generator.EventPageExported:
		out.msg = Message{Type: TypePageExported, Feed: e.Generator, Data: map[string]any{
			"feed": e.Generator, "page": e.Page, "items": e.Count,
		}}
	case generator.EventCompleted:
		out.msg = Message{Type: TypeFeedBuilt, Feed: e.Generator, Data: map[string]any{
			"feed": e.Generator, "pages": e.Count,
		}}
		out.reload = true
	case generator.EventFailed:
		reason := ""
		if e.Err != nil {
			reason = e.Err.Error()
		}
		out.msg = Message{Type: TypeFeedFailed, Feed: e.Generator, Data: map[string]any{
			"feed": e.Generator, "error": reason,
		}}
	default:
		return
	}
	b.enqueue(out)
}

// ServeHTTP streams messages until the client disconnects or the broker
// closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case raw, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(raw); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
