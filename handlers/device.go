package handlers

import (
	"net/http"

	"bookline/middleware"
	"bookline/services/notification"

	"github.com/gin-gonic/gin"
)

// DeviceHandler stores push tokens so offline recipients can still be reached.
type DeviceHandler struct {
	Tokens notification.TokenStore
}

func NewDeviceHandler(tokens notification.TokenStore) *DeviceHandler {
	return &DeviceHandler{Tokens: tokens}
}

type fcmTokenInput struct {
	Token string `json:"token" binding:"required"`
}

// RegisterFCMToken handles POST /api/devices/fcm-token.
func (h *DeviceHandler) RegisterFCMToken(c *gin.Context) {
	var input fcmTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	if err := h.Tokens.Set(c.Request.Context(), middleware.ActorID(c), input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registered": true})
}
