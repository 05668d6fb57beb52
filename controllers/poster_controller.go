// controllers/poster_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
)

// PosterController manages the promotional posters on the home screen.
type PosterController struct {
	DB       *mongo.Database
	counters services.CounterStore
	storage  services.FileStorage
	logger   *log.Logger
}

// NewPosterController creates a new poster controller
func NewPosterController(db *mongo.Database, counters services.CounterStore, storage services.FileStorage) *PosterController {
	return &PosterController{
		DB:       db,
		counters: counters,
		storage:  storage,
		logger:   log.New(os.Stdout, "[POSTER] ", log.LstdFlags),
	}
}

// Create adds a poster with its image.
func (pc *PosterController) Create(c echo.Context) error {
	name := c.FormValue("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Poster name is required",
		})
	}

	ctx := c.Request().Context()
	collection := pc.DB.Collection("Poster")

	count, err := collection.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return respondServiceError(c, err)
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Poster already exists",
		})
	}

	img := ""
	if file, err := c.FormFile("img"); err == nil {
		img, err = pc.storage.SaveImage(file, "poster", "poster")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
	}

	id, err := pc.counters.Next(ctx, "adPosterId")
	if err != nil {
		return respondServiceError(c, err)
	}

	poster := models.Poster{
		ID:          id,
		Name:        name,
		Description: c.FormValue("description"),
		Date:        time.Now(),
		Img:         img,
	}
	if _, err := collection.InsertOne(ctx, poster); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Poster Saved",
		Data:    poster,
	})
}

// Update changes a poster's text or swaps its image.
func (pc *PosterController) Update(c echo.Context) error {
	id, ok := formIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Poster ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := pc.DB.Collection("Poster")

	var poster models.Poster
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&poster); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Poster not found",
		})
	}

	updatedFields := bson.M{}
	if name := c.FormValue("name"); name != "" {
		updatedFields["name"] = name
	}
	if description := c.FormValue("description"); description != "" {
		updatedFields["description"] = description
	}
	if file, err := c.FormFile("img"); err == nil {
		url, err := pc.storage.SaveImage(file, "poster", "poster")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		if poster.Img != "" {
			if err := pc.storage.Delete(poster.Img); err != nil {
				pc.logger.Printf("failed to delete old poster image: %v", err)
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
		Message: "Poster Updated",
	})
}

// Delete removes a poster and its stored image.
func (pc *PosterController) Delete(c echo.Context) error {
	var req struct {
		ID int `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Poster ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := pc.DB.Collection("Poster")

	var poster models.Poster
	if err := collection.FindOne(ctx, bson.M{"_id": req.ID}).Decode(&poster); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Poster not found",
		})
	}

	if _, err := collection.DeleteOne(ctx, bson.M{"_id": req.ID}); err != nil {
		return respondServiceError(c, err)
	}
	if poster.Img != "" {
		if err := pc.storage.Delete(poster.Img); err != nil {
			pc.logger.Printf("failed to delete poster image: %v", err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Poster Deleted",
	})
}

// GetAll lists every poster.
func (pc *PosterController) GetAll(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := pc.DB.Collection("Poster").Find(ctx, bson.M{})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var posters []models.Poster
	if err := cursor.All(ctx, &posters); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Posters retrieved successfully",
		Data:    posters,
	})
}
