// controllers/category_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
)

// CategoryController manages the catalog categories shown in the app.
type CategoryController struct {
	DB       *mongo.Database
	counters services.CounterStore
	storage  services.FileStorage
	logger   *log.Logger
}

// NewCategoryController creates a new category controller
func NewCategoryController(db *mongo.Database, counters services.CounterStore, storage services.FileStorage) *CategoryController {
	return &CategoryController{
		DB:       db,
		counters: counters,
		storage:  storage,
		logger:   log.New(os.Stdout, "[CATEGORY] ", log.LstdFlags),
	}
}

// Create adds a catalog category with its poster image.
func (cc *CategoryController) Create(c echo.Context) error {
	name := c.FormValue("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Category name is required",
		})
	}

	ctx := c.Request().Context()
	collection := cc.DB.Collection("Category")

	count, err := collection.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return respondServiceError(c, err)
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Category already exists",
		})
	}

	img := ""
	if file, err := c.FormFile("img"); err == nil {
		img, err = cc.storage.SaveImage(file, "category", "category")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
	}

	id, err := cc.counters.Next(ctx, "categoryId")
	if err != nil {
		return respondServiceError(c, err)
	}

	category := models.Category{ID: id, Name: name, Img: img}
	if _, err := collection.InsertOne(ctx, category); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category Saved",
		Data:    category,
	})
}

// Update renames a category or swaps its poster image.
func (cc *CategoryController) Update(c echo.Context) error {
	id, ok := formIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Category ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := cc.DB.Collection("Category")

	var category models.Category
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Category not found",
		})
	}

	updatedFields := bson.M{}
	if name := c.FormValue("name"); name != "" {
		updatedFields["name"] = name
	}
	if file, err := c.FormFile("img"); err == nil {
		url, err := cc.storage.SaveImage(file, "category", "category")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		if category.Img != "" {
			if err := cc.storage.Delete(category.Img); err != nil {
				cc.logger.Printf("failed to delete old category image: %v", err)
			}
		}
		updatedFields["img"] = url
	}
	if len(updatedFields) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Nothing to update",
		})
	}

	if _, err := collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updatedFields}); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category updated successfully",
	})
}

// Delete removes a category and its stored image.
func (cc *CategoryController) Delete(c echo.Context) error {
	var req struct {
		ID int `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Category ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := cc.DB.Collection("Category")

	var category models.Category
	if err := collection.FindOne(ctx, bson.M{"_id": req.ID}).Decode(&category); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Category not found",
		})
	}

	if _, err := collection.DeleteOne(ctx, bson.M{"_id": req.ID}); err != nil {
		return respondServiceError(c, err)
	}
	if category.Img != "" {
		if err := cc.storage.Delete(category.Img); err != nil {
			cc.logger.Printf("failed to delete category image: %v", err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category deleted successfully",
	})
}

// GetAll lists every category.
func (cc *CategoryController) GetAll(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := cc.DB.Collection("Category").Find(ctx, bson.M{})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Categories retrieved successfully",
		Data:    categories,
	})
}

// GetByID fetches one category.
func (cc *CategoryController) GetByID(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Category ID is required",
		})
	}

	ctx := c.Request().Context()

	var category models.Category
	err := cc.DB.Collection("Category").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Category not found",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category retrieved successfully",
		Data:    category,
	})
}
