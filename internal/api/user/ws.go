package user

import (
	"encoding/json"
	"net/http"

	"github.com/codegrid/arena/internal/auth"
	"github.com/codegrid/arena/internal/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleLeaderboardWs streams leaderboard and profile events for one contest.
// The connection is scoped to the contest topic, so a client never receives
// traffic for contests it did not subscribe to.
func (h *Handler) handleLeaderboardWs(c *gin.Context) {
	contestID := c.Param("id")
	tokenString := c.Query("token")

	if tokenString == "" {
		c.String(http.StatusUnauthorized, "token query parameter is required")
		return
	}
	if _, err := auth.ValidateJWT(tokenString, h.cfg.Auth.JWT.Secret); err != nil {
		c.String(http.StatusUnauthorized, "invalid token")
		return
	}

	board, err := h.service.Leaderboard(contestID)
	if err != nil {
		c.String(http.StatusNotFound, "contest not found")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Errorf("failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	// Send the current board first so the client starts from a full state.
	initial, err := json.Marshal(pubsub.Event{
		Kind:      pubsub.KindLeaderboardUpdate,
		ContestID: contestID,
		Payload:   board,
	})
	if err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			return
		}
	}

	msgChan, unsubscribe := h.broker.Subscribe(contestID)
	defer unsubscribe()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for msg := range msgChan {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.S().Warnf("error writing to websocket: %v", err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Infof("websocket unexpected close error: %v", err)
			}
			break
		}
	}
	// Unsubscribing closes msgChan, which lets the writer goroutine drain out.
	unsubscribe()
	<-clientClosed

	zap.S().Infof("websocket connection closed for contest %s", contestID)
}
