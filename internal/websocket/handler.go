package websocket

import "github.com/gofiber/websocket/v2"

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, conn *websocket.Conn, market string) {
	client := NewClient(hub, conn, market)
	hub.Register(client)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
