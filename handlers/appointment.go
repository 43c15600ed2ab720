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

// AppointmentHandler serves the confirmed-appointment endpoints.
type AppointmentHandler struct {
	Svc scheduling.SchedulingService
}

func NewAppointmentHandler(svc scheduling.SchedulingService) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc}
}

// GetAppointment handles GET /api/appointments/:id.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appt, err := h.Svc.GetAppointment(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// ListAppointments handles GET /api/appointments?role=...&status=...
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	role := requestRepo.PartyRole(c.DefaultQuery("role", string(requestRepo.RoleRequester)))
	status := models.AppointmentStatus(c.Query("status"))

	appts, err := h.Svc.ListAppointments(c.Request.Context(), role, middleware.ActorID(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// CancelAppointment handles POST /api/appointments/:id/cancel.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appt, err := h.Svc.CancelAppointment(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// CompleteAppointment handles POST /api/appointments/:id/complete.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	appt, err := h.Svc.Complete(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// MarkNoShow handles POST /api/appointments/:id/no-show.
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	appt, err := h.Svc.MarkNoShow(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// UpdateNotes handles PUT /api/appointments/:id/notes.
func (h *AppointmentHandler) UpdateNotes(c *gin.Context) {
	var input struct {
		Notes string `json:"notes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Svc.SetAppointmentNotes(c.Request.Context(), c.Param("id"), middleware.ActorID(c), input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}
