package routes

import (
	"net/http"
	"time"

	"bookline/handlers"
	"bookline/middleware"
	"bookline/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRequestRoutes registers the booking-request endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.Requests.CreateRequest)
		api.GET("", hb.Requests.ListRequests)
		api.GET("/:id", hb.Requests.GetRequest)
		api.POST("/:id/accept", hb.Requests.AcceptRequest)
		api.POST("/:id/reject", hb.Requests.RejectRequest)
		api.POST("/:id/cancel", hb.Requests.CancelRequest)
		api.POST("/:id/hide", hb.Requests.HideRequest)
	}
}

// RegisterAppointmentRoutes registers the appointment endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.Appointments.ListAppointments)
		api.GET("/:id", hb.Appointments.GetAppointment)
		api.POST("/:id/cancel", hb.Appointments.CancelAppointment)
		api.POST("/:id/complete", hb.Appointments.CompleteAppointment)
		api.POST("/:id/no-show", hb.Appointments.MarkNoShow)
		api.PUT("/:id/notes", hb.Appointments.UpdateNotes)
	}
}

// RegisterNotificationRoutes registers the notification inbox endpoints plus
// the WebSocket stream. The stream authenticates inside the handler because
// browsers cannot set headers on a WebSocket handshake.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.GET("/stream", hb.Stream.Stream)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.GET("", hb.Notifications.ListNotifications)
		protected.GET("/unread-count", hb.Notifications.UnreadCount)
		protected.POST("/read-all", hb.Notifications.MarkAllRead)
		protected.POST("/:id/read", hb.Notifications.MarkRead)
		protected.DELETE("/:id", hb.Notifications.ClearNotification)
	}
}

// RegisterDeviceRoutes registers push-token management endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/fcm-token", hb.Devices.RegisterFCMToken)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRequestRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterHealthRoute(r)
}
