package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/controllers"
	"github.com/immuneplus/immuneplus_backend/middleware"
	"github.com/immuneplus/immuneplus_backend/services"
)

// RegisterPosterRoutes sets up all poster-related routes
func RegisterPosterRoutes(e *echo.Echo, db *mongo.Database, counters services.CounterStore, storage services.FileStorage) {
	posterController := controllers.NewPosterController(db, counters, storage)

	// Public routes (no auth required)
	posters := e.Group("/api/posters")
	posters.GET("/getAll", posterController.GetAll)

	// Admin protected routes
	adminPosters := e.Group("/api/admin/posters")
	adminPosters.Use(middleware.AdminJWTMiddleware())
	adminPosters.POST("/create", posterController.Create)
	adminPosters.POST("/update", posterController.Update)
	adminPosters.POST("/delete", posterController.Delete)
}
