package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/controllers"
	"github.com/immuneplus/immuneplus_backend/middleware"
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	adminController := controllers.NewAdminController(db, hub)

	admin := e.Group("/api/admin")

	// Public routes (no auth required)
	admin.POST("/login", adminController.Login)

	// Protected routes (require admin authentication)
	protected := admin.Group("")
	protected.Use(middleware.AdminJWTMiddleware())
	protected.POST("/pharmacy/changeStatus", adminController.ChangePharmacyStatus)
	protected.POST("/delivery/changeStatus", adminController.ChangeDeliveryPartnerStatus)
	protected.POST("/doctor/changeStatus", adminController.ChangeDoctorStatus)
	protected.GET("/pendingRequests", adminController.GetPendingRequests)
	protected.POST("/emptyCollection", adminController.EmptyCollection)

	// Live feed of registrations and approval changes for dashboards
	protected.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})
}
