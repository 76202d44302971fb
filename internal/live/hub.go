// Package live implements the bidirectional client gateway: a websocket
// hub that fans event-bus events out to connected clients, scoped to the
// videos each client has subscribed to, plus an unfiltered global stream
// every client receives regardless of subscription state.
package live

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/abdul-hamid-achik/videopipeline/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// outboundMessage is the shape of every message the hub writes to a
// client socket; Type is "video-event" or "global-event".
type outboundMessage struct {
	Type  string         `json:"type"`
	Event eventbus.Event `json:"event"`
}

// client holds one connected socket's subscription set plus its send
// buffer; the hub never writes directly to conn, only through send, so
// a single writePump goroutine owns conn's write side.
type client struct {
	conn *websocket.Conn
	send chan outboundMessage

	mu   sync.Mutex
	subs map[string]bool
}

func (c *client) subscribed(videoID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[videoID]
}

func (c *client) subscribe(videoID string) {
	c.mu.Lock()
	c.subs[videoID] = true
	c.mu.Unlock()
}

func (c *client) unsubscribe(videoID string) {
	c.mu.Lock()
	delete(c.subs, videoID)
	c.mu.Unlock()
}

// Hub registers/unregisters connected clients and relays bus events to
// them over a register/unregister channel pair plus a dispatch loop
// driven by the event bus subscription.
type Hub struct {
	bus *eventbus.Bus

	register   chan *client
	unregister chan *client

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub(bus *eventbus.Bus) *Hub {
	return &Hub{
		bus:        bus,
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]bool),
	}
}

// Run drives registration bookkeeping and the subscriber feed from the
// bus until ctx is cancelled. Call it once, in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	sub := h.bus.Subscribe("live-hub")
	defer h.bus.Unsubscribe("live-hub")

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.LiveClientsConnected.Inc()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.LiveClientsConnected.Dec()
			}
			h.mu.Unlock()
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			h.dispatch(ev)
		}
	}
}

// dispatch delivers ev to every client subscribed to its VideoID as a
// video-event, and to every client unconditionally as a global-event.
func (h *Hub) dispatch(ev eventbus.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.subscribed(ev.VideoID) {
			h.trySend(c, outboundMessage{Type: "video-event", Event: ev})
		}
		h.trySend(c, outboundMessage{Type: "global-event", Event: ev})
	}
}

func (h *Hub) trySend(c *client, msg outboundMessage) {
	select {
	case c.send <- msg:
	default:
		// client buffer full, drop rather than block the dispatch loop
	}
}

// ServeHTTP upgrades the request to a websocket and runs the connection
// until the client disconnects or the hub shuts it down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan outboundMessage, 32),
		subs: make(map[string]bool),
	}

	h.register <- c

	go c.writePump()
	c.readPump(h)
}
