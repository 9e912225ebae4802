package http

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/usecase"
	"pgfeedback/internal/shared/logger"
)

const (
	feedDashboard = "dashboard"
	feedPersonal  = "personal"

	writeWait = 10 * time.Second
	readWait  = 60 * time.Second
)

// WebSocketMessage is the frame format of the live feeds.
type WebSocketMessage struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// DashboardSnapshot is the payload of one dashboard feed emission:
// the full snapshot pair plus the statistics derived from it.
type DashboardSnapshot struct {
	Ratings     []model.Rating     `json:"ratings"`
	Suggestions []model.Suggestion `json:"suggestions"`
	Stats       model.DerivedStats `json:"stats"`
}

// WebSocketHandler serves the live feeds. Each connection carries exactly
// one feed: the admin dashboard over all feedback, or a resident's personal
// history. On a subscription failure the handler sends one error frame and
// closes; reconnection is the client's job.
type WebSocketHandler struct {
	streams     *usecase.StreamManager
	aggregation *usecase.AggregationEngine
	verifier    IdentityResolver
	gate        *usecase.AccessGate
	log         logger.Logger
}

// NewWebSocketHandler creates the handler.
func NewWebSocketHandler(
	streams *usecase.StreamManager,
	aggregation *usecase.AggregationEngine,
	verifier IdentityResolver,
	gate *usecase.AccessGate,
	log logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		streams:     streams,
		aggregation: aggregation,
		verifier:    verifier,
		gate:        gate,
		log:         log.WithComponent("ws_handler"),
	}
}

// RegisterRoutes mounts the WebSocket endpoint at the given path.
func (h *WebSocketHandler) RegisterRoutes(router fiber.Router, path string) {
	router.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get(path, websocket.New(h.handleConnection))
}

func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	connID := uuid.NewString()
	feedName := conn.Query("feed", feedPersonal)

	ident := model.Anonymous()
	if token := conn.Query("token"); token != "" {
		if verified, err := h.verifier.Verify(token); err == nil {
			ident = verified
		}
	}

	req := usecase.RouteRequirements{RequiresAuth: true}
	if feedName == feedDashboard {
		req.RequiresAdmin = true
	}
	if decision := h.gate.Authorize(ident, req); decision != usecase.DecisionAllow {
		h.writeMessage(conn, WebSocketMessage{Type: "error", Error: "access denied"})
		return
	}

	h.log.WithFields(map[string]interface{}{
		"connId": connID,
		"feed":   feedName,
		"userId": ident.UID,
	}).Info("websocket feed opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var feed *usecase.FeedbackFeed
	var err error
	if feedName == feedDashboard {
		feed, err = h.streams.SubscribeAll(ctx)
	} else {
		feed, err = h.streams.SubscribeUser(ctx, ident.UID)
	}
	if err != nil {
		h.log.Error("failed to open feed: ", err)
		h.writeMessage(conn, WebSocketMessage{Type: "error", Error: "subscription failed"})
		return
	}
	defer feed.Cancel()

	// Reader goroutine detects disconnects; the connection carries no
	// client commands beyond close.
	go func() {
		defer cancel()
		for {
			conn.SetReadDeadline(time.Now().Add(readWait))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case pair, ok := <-feed.Updates():
			if !ok {
				return
			}
			var payload interface{}
			if feedName == feedDashboard {
				payload = DashboardSnapshot{
					Ratings:     pair.Ratings,
					Suggestions: pair.Suggestions,
					Stats:       h.aggregation.Compute(pair.Ratings, pair.Suggestions),
				}
			} else {
				payload = pair
			}
			if !h.writeMessage(conn, WebSocketMessage{Type: "snapshot", Data: payload}) {
				return
			}

		case err, ok := <-feed.Errors():
			if !ok {
				return
			}
			h.log.WithFields(map[string]interface{}{
				"connId": connID,
				"feed":   feedName,
			}).Error("feed failed: ", err)
			h.writeMessage(conn, WebSocketMessage{Type: "error", Error: "subscription failed"})
			return
		}
	}
}

func (h *WebSocketHandler) writeMessage(conn *websocket.Conn, msg WebSocketMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Warn("failed to write websocket message: ", err)
		return false
	}
	return true
}
