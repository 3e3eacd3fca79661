package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/questservice/cache"
	"github.com/kasuganosora/questservice/game/quest"
	mw "github.com/kasuganosora/questservice/middleware"
	"go.uber.org/zap"
)

const defaultKeepalive = 30 * time.Second

// Handler streams a player's quest events as server-sent events.
type Handler struct {
	pubsub    cache.PubSub
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, keepalive: defaultKeepalive, logger: logger}
}

// ServeEvents handles GET /client/events. It must run behind
// middleware.PlayerAuth; each quest event becomes one SSE message whose
// event name is the quest event type.
func (h *Handler) ServeEvents(c *gin.Context) {
	playerID := mw.GetPlayerID(c)
	if playerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing player id"})
		return
	}

	ctx := c.Request.Context()
	msgCh, unsub, err := h.pubsub.Subscribe(ctx, quest.Channel(playerID))
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.String("player_id", playerID), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", eventName(msg.Payload), msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-ctx.Done():
			return
		}
	}
}

func eventName(payload string) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &head); err != nil || head.Type == "" {
		return "message"
	}
	return head.Type
}
