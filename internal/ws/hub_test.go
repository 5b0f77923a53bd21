package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroadcastToUser(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	hub.Register(c)

	hub.BroadcastToUser(1, map[string]string{"type": "test"})
	require.Len(t, c.Send, 1)

	// Other users receive nothing.
	other := &Client{UserID: 2, Send: make(chan []byte, 1)}
	hub.Register(other)
	hub.BroadcastToUser(1, map[string]string{"type": "test"})
	require.Empty(t, other.Send)
}

func TestCloseUnregistersClient(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	c.Close()
	require.Zero(t, hub.ClientCount())

	// Idempotent.
	c.Close()
}

func TestBroadcastDuringCloseDoesNotPanic(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		c := &Client{UserID: 1, Send: make(chan []byte, 1)}
		hub.Register(c)

		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.BroadcastToUser(1, map[string]string{"type": "test"})
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
	}
	wg.Wait()
}
