package websocket

import (
	"fmt"
	"sync"
	"testing"
)

func TestHubAddRemove(t *testing.T) {
	hub := NewHub()

	c := &Client{ID: "staff-1", Send: make(chan []byte, 1)}
	hub.AddClient(c)
	if hub.ClientCount() != 1 {
		t.Fatalf("count = %d, want 1", hub.ClientCount())
	}

	hub.RemoveClient("staff-1")
	if hub.ClientCount() != 0 {
		t.Fatalf("count after remove = %d, want 0", hub.ClientCount())
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = &Client{ID: fmt.Sprintf("staff-%d", i), Send: make(chan []byte, 4)}
		hub.AddClient(clients[i])
	}

	hub.Broadcast([]byte("alert"))
	for _, c := range clients {
		select {
		case msg := <-c.Send:
			if string(msg) != "alert" {
				t.Fatalf("client %s got %q", c.ID, msg)
			}
		default:
			t.Fatalf("client %s got nothing", c.ID)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := &Client{ID: "slow", Send: make(chan []byte)}
	fast := &Client{ID: "fast", Send: make(chan []byte, 4)}
	hub.AddClient(slow)
	hub.AddClient(fast)

	hub.Broadcast([]byte("alert"))

	select {
	case msg := <-fast.Send:
		if string(msg) != "alert" {
			t.Fatalf("fast client got %q", msg)
		}
	default:
		t.Fatalf("fast client got nothing")
	}
	select {
	case <-slow.Send:
		t.Fatalf("slow client received despite a full buffer")
	default:
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("staff-%d", i)
			hub.AddClient(&Client{ID: id, Send: make(chan []byte, 16)})
			hub.Broadcast([]byte("tick"))
			hub.RemoveClient(id)
		}(i)
	}
	wg.Wait()

	if hub.ClientCount() != 0 {
		t.Fatalf("count after churn = %d, want 0", hub.ClientCount())
	}
}
