package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// Client is one live websocket connection bound to an authenticated user.
type Client struct {
	userID uint
	conn   *websocket.Conn
	send   chan []byte
}

// Handler upgrades chat socket connections and dispatches incoming events.
type Handler struct {
	hub   *Hub
	chat  *services.ChatService
	users *services.UserService
}

func NewHandler(hub *Hub, chat *services.ChatService, users *services.UserService) *Handler {
	return &Handler{hub: hub, chat: chat, users: users}
}

// Serve is the connection handler installed behind the JWT guard. The guard
// stores the authenticated user id in locals before the upgrade.
func (h *Handler) Serve() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID, ok := conn.Locals("user_id").(uint)
		if !ok {
			_ = conn.Close()
			return
		}
		client := &Client{
			userID: userID,
			conn:   conn,
			send:   make(chan []byte, sendQueueSize),
		}
		h.hub.add(client)
		slog.Info("ws connected", "user_id", userID)

		go client.writePump()
		h.readPump(client)
	}
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.remove(c)
		_ = c.conn.Close()
		slog.Info("ws disconnected", "user_id", c.userID)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("ws read failed", "error", err, "user_id", c.userID)
			}
			return
		}
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": "malformed event"})
			continue
		}
		h.dispatch(c, &event)
	}
}

func (h *Handler) dispatch(c *Client, event *Event) {
	ctx := context.Background()
	switch event.Event {
	case "send_message":
		var req dto.SendMessageRequest
		if err := json.Unmarshal(event.Data, &req); err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": "malformed send_message payload"})
			return
		}
		if err := dto.Validate(&req); err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": err.Error()})
			return
		}
		sender, err := h.users.FindByID(c.userID)
		if err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": "sender not found"})
			return
		}
		message, err := h.chat.Send(ctx, sender, &req)
		if err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": err.Error()})
			return
		}
		// Echo back so every device of the sender sees the sent message.
		h.hub.Publish(c.userID, "message_sent", message)

	case "mark_read":
		var req struct {
			UserID uint `json:"user_id"`
		}
		if err := json.Unmarshal(event.Data, &req); err != nil || req.UserID == 0 {
			h.hub.Publish(c.userID, "error", map[string]string{"message": "malformed mark_read payload"})
			return
		}
		if err := h.chat.MarkRead(c.userID, req.UserID); err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": err.Error()})
		}

	case "mark_delivered":
		var req struct {
			MessageID uint `json:"message_id"`
		}
		if err := json.Unmarshal(event.Data, &req); err != nil || req.MessageID == 0 {
			h.hub.Publish(c.userID, "error", map[string]string{"message": "malformed mark_delivered payload"})
			return
		}
		if _, err := h.chat.MarkDelivered(c.userID, req.MessageID); err != nil {
			h.hub.Publish(c.userID, "error", map[string]string{"message": err.Error()})
		}

	default:
		h.hub.Publish(c.userID, "error", map[string]string{"message": "unknown event: " + event.Event})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
