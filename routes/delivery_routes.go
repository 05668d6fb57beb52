package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/controllers"
	"github.com/immuneplus/immuneplus_backend/services"
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// RegisterDeliveryRoutes sets up all delivery-partner routes
func RegisterDeliveryRoutes(e *echo.Echo, db *mongo.Database, profiles services.ProfileStore, issuer *services.OTPIssuer, verifier *services.OnboardingVerifier, counters services.CounterStore, storage services.FileStorage, hub *websocket.Hub) {
	deliveryController := controllers.NewDeliveryController(db, profiles, issuer, verifier, counters, storage, hub)

	delivery := e.Group("/api/delivery")

	delivery.POST("/register", deliveryController.Register)
	delivery.POST("/login", deliveryController.Login)
	delivery.POST("/update", deliveryController.UpdatePartner)
	delivery.POST("/delete", deliveryController.DeletePartner)
	delivery.GET("/getAll", deliveryController.GetAllPartners)
	delivery.GET("/getById", deliveryController.GetPartnerByID)
	delivery.GET("/availableOrders", deliveryController.GetAvailableOrders)
	delivery.POST("/assignOrder", deliveryController.AssignOrder)
	delivery.GET("/dashboard", deliveryController.Dashboard)
	delivery.GET("/orderHistory", deliveryController.GetOrderHistory)
}
