package handlers

import (
	"net/http"
	"strings"

	"bookline/realtime"
	"bookline/utils"

	"github.com/gin-gonic/gin"
)

// StreamHandler upgrades authenticated clients to the live notification feed.
type StreamHandler struct {
	Hub *realtime.Hub
}

func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{Hub: hub}
}

// Stream handles GET /api/notifications/stream. Browsers cannot attach an
// Authorization header to a WebSocket handshake, so a token query parameter
// is accepted as a fallback.
func (h *StreamHandler) Stream(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth token"})
		return
	}

	userID, err := utils.ExtractIDFromToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid auth token"})
		return
	}

	realtime.ServeWS(h.Hub, c.Writer, c.Request, userID)
}
