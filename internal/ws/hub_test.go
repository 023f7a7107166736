package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConn(hub *Hub, clientID string, buffer int) *Conn {
	return &Conn{
		send:     make(chan []byte, buffer),
		hub:      hub,
		clientID: clientID,
		subs:     make(map[string]bool),
		ctx:      hub.ctx,
	}
}

func TestHub_DropsSaturatedSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	conn := newTestConn(hub, "dashboard-1", 1)
	hub.Register(conn)
	hub.Subscribe(conn, "leads:inquiry")

	// Fill the send buffer so the next fan-out cannot be delivered.
	conn.send <- []byte(`{"type":"event"}`)

	hub.Publish("leads:inquiry", map[string]interface{}{"type": "lead.created"})
	hub.Publish("leads:inquiry", map[string]interface{}{"type": "lead.created"})

	// The saturated connection must be unregistered, with its send channel
	// closed exactly once; a second close would panic the Run goroutine and
	// take the process down with it.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return !hub.conns[conn]
	}, time.Second, 5*time.Millisecond)

	// Drain the buffered message; the channel must then report closed.
	<-conn.send
	select {
	case _, ok := <-conn.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed on unregister")
	}

	// A healthy subscriber still receives events after the drop.
	healthy := newTestConn(hub, "dashboard-2", 16)
	hub.Register(healthy)
	hub.Subscribe(healthy, "leads:inquiry")

	hub.Publish("leads:inquiry", map[string]interface{}{"type": "lead.created"})
	select {
	case msg := <-healthy.send:
		assert.Contains(t, string(msg), "lead.created")
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber did not receive the event")
	}
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	hub := NewHub(zap.NewNop())

	conn := newTestConn(hub, "widget-1", 1)
	hub.Register(conn)
	hub.Subscribe(conn, "chat:abc")

	hub.unregister(conn)
	hub.unregister(conn)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.NotContains(t, hub.conns, conn)
	assert.NotContains(t, hub.subs, "chat:abc")
}
