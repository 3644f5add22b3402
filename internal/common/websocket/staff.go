package websocket

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StaffFeedHandler upgrades a staff dashboard connection and streams alert
// broadcasts to it. Staff identity arrives from the upstream gateway in the
// X-Staff-ID header; the engine does no authentication of its own.
func StaffFeedHandler(hub *Hub, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := r.Header.Get("X-Staff-ID")
		if staffID == "" {
			http.Error(w, "missing staff identity", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Error("failed to upgrade websocket")
			return
		}

		client := &Client{
			ID:       fmt.Sprintf("staff_%s_%d", staffID, time.Now().UnixNano()),
			Conn:     conn,
			Send:     make(chan []byte, 16),
			LastPong: time.Now(),
		}
		hub.AddClient(client)
		log.WithField("staff_id", staffID).Info("staff feed connected")

		defer func() {
			hub.RemoveClient(client.ID)
			conn.Close()
			log.WithField("staff_id", staffID).Info("staff feed disconnected")
		}()

		conn.SetPongHandler(func(string) error {
			client.LastPong = time.Now()
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		// Reader goroutine only services control frames; the feed is one-way.
		go func() {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.RemoveClient(client.ID)
					return
				}
			}
		}()

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
