package live

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleControlMessageSubscribe(t *testing.T) {
	c := newTestClient(0)
	handleControlMessage(c, "subscribe video-1")
	require.True(t, c.subscribed("video-1"))
	require.False(t, c.subscribed("video-2"))
}

func TestHandleControlMessageUnsubscribe(t *testing.T) {
	c := newTestClient(0)
	c.subscribe("video-1")
	handleControlMessage(c, "unsubscribe video-1")
	require.False(t, c.subscribed("video-1"))
}

func TestHandleControlMessageIgnoresMalformed(t *testing.T) {
	c := newTestClient(0)
	handleControlMessage(c, "subscribe")
	handleControlMessage(c, "subscribe a b")
	handleControlMessage(c, "delete video-1")
	require.False(t, c.subscribed("video-1"))
	require.False(t, c.subscribed("a"))
}

func TestHandleControlMessageMultipleSubscriptions(t *testing.T) {
	c := newTestClient(0)
	handleControlMessage(c, "subscribe video-1")
	handleControlMessage(c, "subscribe video-2")
	require.True(t, c.subscribed("video-1"))
	require.True(t, c.subscribed("video-2"))
	handleControlMessage(c, "unsubscribe video-1")
	require.False(t, c.subscribed("video-1"))
	require.True(t, c.subscribed("video-2"))
}
