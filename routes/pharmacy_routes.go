package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/controllers"
	"github.com/immuneplus/immuneplus_backend/services"
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// RegisterPharmacyRoutes sets up all pharmacy-related routes
func RegisterPharmacyRoutes(e *echo.Echo, db *mongo.Database, profiles services.ProfileStore, issuer *services.OTPIssuer, verifier *services.OnboardingVerifier, storage services.FileStorage, hub *websocket.Hub) {
	pharmacyController := controllers.NewPharmacyController(db, profiles, issuer, verifier, storage, hub)

	pharmacy := e.Group("/api/pharmacy")

	pharmacy.POST("/register", pharmacyController.Register)
	pharmacy.POST("/login", pharmacyController.Login)
	pharmacy.POST("/update", pharmacyController.UpdatePharmacy)
	pharmacy.POST("/delete", pharmacyController.DeletePharmacy)
	pharmacy.GET("/getAll", pharmacyController.GetAllPharmacies)
	pharmacy.GET("/getById", pharmacyController.GetPharmacyByID)
	pharmacy.GET("/dashboard", pharmacyController.Dashboard)
	pharmacy.GET("/ongoingOrders", pharmacyController.GetOngoingOrders)
	pharmacy.GET("/orders", pharmacyController.GetOrdersByID)
}
