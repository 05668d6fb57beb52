package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/controllers"
	"github.com/immuneplus/immuneplus_backend/services"
)

// RegisterUserRoutes sets up all patient-related routes
func RegisterUserRoutes(e *echo.Echo, db *mongo.Database, issuer *services.OTPIssuer, verifier *services.OnboardingVerifier) {
	userController := controllers.NewUserController(db, issuer, verifier)

	users := e.Group("/api/users")

	users.POST("/login", userController.Login)
	users.POST("/register", userController.Register)
	users.POST("/dummyLogin", userController.DummyLogin)
	users.POST("/update", userController.UpdateUser)
	users.POST("/delete", userController.DeleteUser)
	users.GET("/getAll", userController.GetAllUsers)
	users.GET("/getById", userController.GetUserByID)
	users.POST("/address", userController.AddEditAddress)
	users.POST("/address/delete", userController.DeleteAddress)
	users.GET("/orders", userController.GetUserOrders)
}
