package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/analytics"
	"bress-gateway/pkg/config"
	"bress-gateway/pkg/metrics"
	"bress-gateway/pkg/overlay"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
)

// Hub coordinates the widget page sessions. Each connected page gets a
// session with its own overlay controller and conversation tracker.
type Hub struct {
	logger     *logrus.Logger
	cfg        *config.Config
	newTracker func() *analytics.Tracker

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates the session hub.
func NewHub(logger *logrus.Logger, cfg *config.Config, newTracker func() *analytics.Tracker) *Hub {
	return &Hub{
		logger:     logger,
		cfg:        cfg,
		newTracker: newTracker,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run processes session registration until Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.SessionConnected()
			h.logger.WithField("session_id", client.id).Info("Widget session connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.SessionDisconnected()
			h.logger.WithField("session_id", client.id).Info("Widget session disconnected")

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
				metrics.SessionDisconnected()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and drops all sessions.
func (h *Hub) Stop() {
	close(h.done)
}

// addClient registers a session. Returns false when the hub has already
// stopped, so a late upgrade never blocks on a hub that no longer runs.
func (h *Hub) addClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// dropClient unregisters a session. Safe to call during and after
// shutdown; once the hub stops, Run's drain owns the cleanup.
func (h *Hub) dropClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// checkOrigin admits the widget hosting domain and the configured page
// origins. An empty allowlist admits everything (development).
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.Contains(origin, h.cfg.Overlay.FrameHostFragment) {
		return true
	}
	if len(h.cfg.Overlay.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.Overlay.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// ServeWS upgrades the connection and starts a widget session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &Client{
		id:      uuid.New().String(),
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		logger:  h.logger,
		tracker: h.newTracker(),
	}
	client.controller = overlay.NewController(
		h.logger,
		r.Header.Get("Origin"),
		"Conoce a Bress, tu asistente de crianza",
		h.cfg.Overlay.EmbedLoadMaxAttempts,
		client.sendPlan,
	)

	if !h.addClient(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Client is one connected widget page session.
type Client struct {
	id         string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	logger     *logrus.Logger
	tracker    *analytics.Tracker
	controller *overlay.Controller
}

// envelope is the wire frame for both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// sendPlan pushes a recomputed overlay plan to the page.
func (c *Client) sendPlan(plan overlay.Plan) {
	c.sendMessage("overlay.plan", plan)
}

func (c *Client) sendMessage(msgType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.WithError(err).Error("Failed to encode outbound message")
		return
	}
	payload, err := json.Marshal(envelope{Type: msgType, Data: raw})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.WithField("session_id", c.id).Warn("Session send buffer full, dropping message")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.controller.Teardown()
		c.tracker.EndConversation(analytics.Variables{})
		c.hub.dropClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Debug("Widget session read error")
			}
			return
		}

		var msg envelope
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.WithError(err).Debug("Malformed session message, ignored")
			continue
		}

		c.handleMessage(msg)
		c.controller.Flush()
	}
}

// handleMessage dispatches one inbound page event. Unknown types are
// ignored so page clients can evolve ahead of the gateway.
func (c *Client) handleMessage(msg envelope) {
	switch msg.Type {
	case "webchat:ready":
		c.controller.Activate()

	case "webchat:opened":
		c.tracker.Track(analytics.EventOpenWebchat, map[string]interface{}{"session_id": c.id})

	case "webchat:closed":
		// Nothing to do; the conversation keeps running until it ends.

	case "conversation.started":
		var data struct {
			UserID string `json:"userId"`
		}
		json.Unmarshal(msg.Data, &data)
		id := c.tracker.StartConversation(data.UserID)
		c.sendMessage("conversation.ack", map[string]string{"conversationId": id})

	case "message.received":
		var data struct {
			Author string `json:"author"`
		}
		json.Unmarshal(msg.Data, &data)
		if data.Author == "bot" {
			c.tracker.MarkFirstAnswer()
		}

	case "variable.updated":
		var vars analytics.Variables
		if err := json.Unmarshal(msg.Data, &vars); err != nil {
			c.logger.WithError(err).Debug("Malformed variable update, ignored")
			return
		}
		c.tracker.UpdateVariables(vars)

	case "feedback.submitted":
		var vars analytics.Variables
		if err := json.Unmarshal(msg.Data, &vars); err != nil {
			return
		}
		c.tracker.UpdateVariables(vars)

	case "pricing.interaction":
		var data struct {
			Bucket string `json:"bucket"`
			Intent string `json:"intent"`
		}
		json.Unmarshal(msg.Data, &data)
		c.tracker.UpdateVariables(analytics.Variables{
			PricingBucket: data.Bucket,
			PricingIntent: data.Intent,
		})

	case "conversation.ended":
		var vars analytics.Variables
		json.Unmarshal(msg.Data, &vars)
		c.tracker.EndConversation(vars)

	case "frame.located":
		var data struct {
			Width   int  `json:"width"`
			Visible bool `json:"visible"`
		}
		json.Unmarshal(msg.Data, &data)
		c.controller.HandleFrameLocated(data.Width, data.Visible)

	case "frame.resized":
		var data struct {
			Width int `json:"width"`
		}
		json.Unmarshal(msg.Data, &data)
		c.controller.HandleResize(data.Width)

	case "frame.mutated":
		c.controller.HandleMutation()

	case "frame.visibility":
		var data struct {
			Visible bool `json:"visible"`
		}
		json.Unmarshal(msg.Data, &data)
		c.controller.HandleVisibility(data.Visible)

	case "embed.load_failed":
		if err := c.controller.RecordLoadFailure(); err != nil {
			c.sendMessage("embed.reload", map[string]string{"reason": err.Error()})
		}

	default:
		c.logger.WithField("type", msg.Type).Debug("Unknown session event, ignored")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
