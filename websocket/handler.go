package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades an admin connection and attaches it to the
// hub. Authentication happens before this handler, in the admin JWT
// middleware.
func HandleWebSocket(c echo.Context, hub *Hub) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		Conn: conn,
		send: make(chan Notification, 16),
	}

	hub.register <- client

	conn.WriteJSON(Notification{
		Type:    "connected",
		Message: "WebSocket connection established",
	})

	// Writer: pushes broadcasts to this client.
	go func() {
		for notification := range client.send {
			if err := conn.WriteJSON(notification); err != nil {
				break
			}
		}
	}()

	// Reader: the feed is one-way, but reading detects disconnects.
	go func() {
		defer func() {
			hub.unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
