package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kaspertech/crowdguard-console/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Browser origins are already filtered by the CORS layer.
		return true
	},
	EnableCompression: true,
}

// StreamHandler upgrades console clients onto the notification/metrics
// stream. Registering with an entranceId also joins that entrance's alert
// scope on the upstream socket.
type StreamHandler struct {
	hub     *services.Hub
	channel *services.ChannelService
}

func NewStreamHandler(hub *services.Hub, channel *services.ChannelService) *StreamHandler {
	return &StreamHandler{hub: hub, channel: channel}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	entranceID := c.Query("entranceId")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own response; just log.
		log.Printf("[Stream] WebSocket upgrade failed: %v", err)
		return
	}

	client := newWSClient(conn)
	go client.writePump()

	h.hub.Register(client, entranceID)
	if entranceID != "" {
		h.channel.JoinEntrance(entranceID)
	}

	// Inbound frames are ignored; the read loop only detects disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.Unregister(client)
	client.Close()
}

// wsClient adapts one websocket connection to the hub's StreamClient. A
// buffered send channel decouples broadcasts from slow writers; a client
// that falls behind is dropped.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, send: make(chan []byte, 32)}
}

func (c *wsClient) Send(payload []byte) error {
	select {
	case c.send <- payload:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

func (c *wsClient) Close() {
	c.once.Do(func() { close(c.send) })
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
