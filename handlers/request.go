package handlers

import (
	"net/http"

	requestRepo "bookline/database/repository/request"
	"bookline/middleware"
	"bookline/models"
	"bookline/services/scheduling"
	"bookline/utils"

	"github.com/gin-gonic/gin"
)

// RequestHandler serves the booking-request endpoints.
type RequestHandler struct {
	Svc scheduling.SchedulingService
}

func NewRequestHandler(svc scheduling.SchedulingService) *RequestHandler {
	return &RequestHandler{Svc: svc}
}

// CreateRequest handles POST /api/requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var input models.BookingRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	req, err := h.Svc.CreateRequest(c.Request.Context(), middleware.ActorID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// GetRequest handles GET /api/requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.Svc.GetRequest(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ListRequests handles GET /api/requests?role=requester|provider.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	role := requestRepo.PartyRole(c.DefaultQuery("role", string(requestRepo.RoleRequester)))

	reqs, err := h.Svc.ListRequests(c.Request.Context(), role, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// AcceptRequest handles POST /api/requests/:id/accept.
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	req, appt, err := h.Svc.Accept(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "appointment": appt})
}

// RejectRequest handles POST /api/requests/:id/reject.
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	// The reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&input)

	req, err := h.Svc.Reject(c.Request.Context(), c.Param("id"), middleware.ActorID(c), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// CancelRequest handles POST /api/requests/:id/cancel.
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	req, err := h.Svc.CancelRequest(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// HideRequest handles POST /api/requests/:id/hide.
func (h *RequestHandler) HideRequest(c *gin.Context) {
	if err := h.Svc.HideRequest(c.Request.Context(), c.Param("id"), middleware.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": true})
}
