package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan Notification) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := &Client{send: make(chan Notification, 4)}
	b := &Client{send: make(chan Notification, 4)}
	hub.register <- a
	hub.register <- b

	hub.Broadcast(Notification{
		Type:    NotificationTypePendingRegistration,
		Message: "New pharmacy registration: City Pharmacy",
	})

	for _, client := range []*Client{a, b} {
		n := receive(t, client.send)
		assert.Equal(t, NotificationTypePendingRegistration, n.Type)
		assert.Equal(t, "New pharmacy registration: City Pharmacy", n.Message)
	}
}

func TestHubDropsEventsForSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Buffer of one, never drained past the first event.
	slow := &Client{send: make(chan Notification, 1)}
	hub.register <- slow

	hub.Broadcast(Notification{Type: NotificationTypeApprovalChanged, Message: "first"})

	// Wait until the first event has landed so the buffer is full.
	require.Eventually(t, func() bool { return len(slow.send) == 1 },
		2*time.Second, 10*time.Millisecond)

	// With the buffer full the hub drops instead of blocking.
	hub.Broadcast(Notification{Type: NotificationTypeApprovalChanged, Message: "second"})
	time.Sleep(50 * time.Millisecond)

	first := receive(t, slow.send)
	assert.Equal(t, "first", first.Message)
	assert.Empty(t, slow.send)
}
