package live

import (
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// readPump reads subscribe/unsubscribe control messages until the
// socket closes, then unregisters the client. On reconnect the client
// is responsible for resubscribing: the hub keeps no subscription
// state across connections.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		handleControlMessage(c, string(msg))
	}
}

func handleControlMessage(c *client, raw string) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return
	}
	switch fields[0] {
	case "subscribe":
		c.subscribe(fields[1])
	case "unsubscribe":
		c.unsubscribe(fields[1])
	}
}

// writePump owns conn's write side: it drains send and emits periodic
// pings, exiting (and closing the socket) when send is closed by the hub.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
