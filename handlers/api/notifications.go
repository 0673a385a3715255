package api

import (
	"bufio"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"mailme/models"
	"mailme/utils"
)

// Notification is a real-time event pushed to a connected user
type Notification struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"` // "new_mail"
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Time    time.Time   `json:"time"`
}

type subscriber struct {
	userID string
	ch     chan Notification
}

// NotificationHub fans events out to every open connection of a user. It
// implements service.Notifier.
type NotificationHub struct {
	mu          sync.RWMutex
	subscribers map[string]subscriber // keyed by connection id
}

// NewNotificationHub creates an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{subscribers: make(map[string]subscriber)}
}

func (h *NotificationHub) subscribe(userID string) (string, chan Notification) {
	id := uuid.New().String()
	ch := make(chan Notification, 10)

	h.mu.Lock()
	h.subscribers[id] = subscriber{userID: userID, ch: ch}
	h.mu.Unlock()

	return id, ch
}

func (h *NotificationHub) unsubscribe(id string) {
	h.mu.Lock()
	if sub, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// NotifyNewMail pushes a new-mail event to every connection of the
// recipient. Slow consumers are skipped rather than blocked on.
func (h *NotificationHub) NotifyNewMail(userID string, summary *models.MailSummary) {
	notification := Notification{
		ID:      uuid.New().String(),
		Type:    "new_mail",
		Message: "You have new mail",
		Data:    summary,
		Time:    time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- notification:
		default:
		}
	}
}

// UpgradeRequired rejects plain HTTP requests on the websocket route
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket streams notifications over a websocket connection. Auth
// middleware runs before the upgrade, so the user ID is in Locals.
func (h *NotificationHub) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		c.Close()
		return
	}

	id, ch := h.subscribe(userID)
	defer func() {
		h.unsubscribe(id)
		c.Close()
		utils.Log.Debug("websocket subscriber disconnected: %s", id)
	}()

	utils.Log.Debug("websocket subscriber connected: %s (user %s)", id, userID)

	// Reader goroutine: only to detect the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case notification, ok := <-ch:
			if !ok {
				return
			}
			if err := c.WriteJSON(notification); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// HandleSSE streams notifications as Server-Sent Events for clients that
// cannot hold a websocket.
func (h *NotificationHub) HandleSSE(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	id, ch := h.subscribe(userID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.unsubscribe(id)

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-ch:
				if !ok {
					return
				}
				data, _ := json.Marshal(notification)
				w.WriteString("data: " + string(data) + "\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				w.WriteString(": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
