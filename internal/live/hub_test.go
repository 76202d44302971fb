package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
)

func newTestClient(buf int) *client {
	return &client{send: make(chan outboundMessage, buf), subs: make(map[string]bool)}
}

func TestDispatchSendsGlobalEventToEveryClientRegardlessOfSubscription(t *testing.T) {
	hub := NewHub(eventbus.New(nil))
	a := newTestClient(4)
	b := newTestClient(4)
	hub.clients[a] = true
	hub.clients[b] = true

	hub.dispatch(eventbus.Event{Type: eventbus.TranscodingProgress, VideoID: "video-1"})

	select {
	case msg := <-a.send:
		require.Equal(t, "global-event", msg.Type)
	default:
		t.Fatal("client a did not receive global-event")
	}
	select {
	case msg := <-b.send:
		require.Equal(t, "global-event", msg.Type)
	default:
		t.Fatal("client b did not receive global-event")
	}
}

func TestDispatchSendsVideoEventOnlyToSubscribedClients(t *testing.T) {
	hub := NewHub(eventbus.New(nil))
	subscribed := newTestClient(4)
	subscribed.subscribe("video-1")
	unsubscribed := newTestClient(4)
	hub.clients[subscribed] = true
	hub.clients[unsubscribed] = true

	hub.dispatch(eventbus.Event{Type: eventbus.TranscodingProgress, VideoID: "video-1"})

	var gotVideoEvent, gotGlobalEvent bool
	for i := 0; i < 2; i++ {
		select {
		case msg := <-subscribed.send:
			if msg.Type == "video-event" {
				gotVideoEvent = true
			}
			if msg.Type == "global-event" {
				gotGlobalEvent = true
			}
		case <-time.After(time.Second):
		}
	}
	require.True(t, gotVideoEvent)
	require.True(t, gotGlobalEvent)

	select {
	case msg := <-unsubscribed.send:
		require.Equal(t, "global-event", msg.Type)
	default:
		t.Fatal("unsubscribed client should still receive the global-event")
	}
	require.Empty(t, unsubscribed.send)
}

func TestTrySendDropsWhenClientBufferFull(t *testing.T) {
	hub := NewHub(eventbus.New(nil))
	c := newTestClient(1)
	c.send <- outboundMessage{Type: "global-event"}

	require.NotPanics(t, func() {
		hub.trySend(c, outboundMessage{Type: "video-event"})
	})
	require.Len(t, c.send, 1)
}
