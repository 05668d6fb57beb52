package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/controllers"
	"github.com/immuneplus/immuneplus_backend/middleware"
	"github.com/immuneplus/immuneplus_backend/services"
)

// RegisterCategoryRoutes sets up all category-related routes
func RegisterCategoryRoutes(e *echo.Echo, db *mongo.Database, counters services.CounterStore, storage services.FileStorage) {
	categoryController := controllers.NewCategoryController(db, counters, storage)

	// Public routes (no auth required)
	categories := e.Group("/api/categories")
	categories.GET("/getAll", categoryController.GetAll)
	categories.GET("/getById", categoryController.GetByID)

	// Admin protected routes
	adminCategories := e.Group("/api/admin/categories")
	adminCategories.Use(middleware.AdminJWTMiddleware())
	adminCategories.POST("/create", categoryController.Create)
	adminCategories.POST("/update", categoryController.Update)
	adminCategories.POST("/delete", categoryController.Delete)
}
