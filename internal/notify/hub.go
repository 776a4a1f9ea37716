package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16

	// EventTriggeredAlert is the message type pushed for each triggered alert
	EventTriggeredAlert = "triggered_alert"
)

// Message is the JSON envelope written to subscribers
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time string      `json:"time"`
}

type subscriber struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub pushes triggered alerts to the websocket connections of their owners
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewHub creates a new hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and subscribes it to the alerts of the
// user named by the user_id query parameter
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("alert subscriber connected", zap.String("user_id", userID))

	go h.writeLoop(sub)
	h.readLoop(sub)
}

// readLoop discards client messages and unsubscribes on disconnect
func (h *Hub) readLoop(sub *subscriber) {
	defer h.remove(sub)

	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("websocket write failed", zap.String("user_id", sub.userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
}

// Publish sends each alert to the subscribers of its user. Subscribers whose
// buffer is full are disconnected.
func (h *Hub) Publish(alerts []model.TriggeredAlert) {
	for _, a := range alerts {
		payload, err := json.Marshal(Message{
			Type: EventTriggeredAlert,
			Data: a,
			Time: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			h.logger.Error("encode alert message", zap.String("alert_id", a.ID), zap.Error(err))
			continue
		}

		var slow []*subscriber
		h.mu.RLock()
		for sub := range h.subscribers {
			if sub.userID != a.UserID {
				continue
			}
			select {
			case sub.send <- payload:
			default:
				slow = append(slow, sub)
			}
		}
		h.mu.RUnlock()

		for _, sub := range slow {
			h.logger.Warn("dropping slow alert subscriber", zap.String("user_id", sub.userID))
			h.remove(sub)
		}
	}
}

// Subscribers returns the number of connected subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.send)
	}
}
