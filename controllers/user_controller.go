// controllers/user_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/config"
	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
	"github.com/immuneplus/immuneplus_backend/utils"
)

// UserController handles patient onboarding and profile management.
type UserController struct {
	DB       *mongo.Database
	issuer   *services.OTPIssuer
	verifier *services.OnboardingVerifier
	logger   *log.Logger
}

// NewUserController creates a new user controller
func NewUserController(db *mongo.Database, issuer *services.OTPIssuer, verifier *services.OnboardingVerifier) *UserController {
	return &UserController{
		DB:       db,
		issuer:   issuer,
		verifier: verifier,
		logger:   log.New(os.Stdout, "[USER] ", log.LstdFlags),
	}
}

type userLoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,len=10,numeric"`
	OTP         string `json:"otp"`
	FCMToken    string `json:"fcmToken,omitempty"`
}

type userRegisterRequest struct {
	PhoneNumber     string           `json:"phoneNumber" validate:"required,len=10,numeric"`
	OTP             string           `json:"otp"`
	FullName        string           `json:"fullName"`
	AgeGroup        string           `json:"ageGroup"`
	Email           string           `json:"email" validate:"omitempty,email"`
	Gender          string           `json:"gender"`
	State           string           `json:"state"`
	Pincode         string           `json:"pincode"`
	Addresses       []models.Address `json:"addresses"`
	PreviousHistory string           `json:"previousHistory"`
}

// Login is the two-phase OTP login: a body without an otp requests a
// code, a body with one verifies it. Verification finds or creates the
// patient profile, so first login doubles as a bare registration.
func (uc *UserController) Login(c echo.Context) error {
	var req userLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	validations := requestValidations(c, &req)
	if len(validations) > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:      http.StatusBadRequest,
			Message:     "Validation failed",
			Validations: validations,
		})
	}

	ctx := c.Request().Context()

	if req.OTP == "" {
		if err := uc.issuer.Issue(ctx, req.PhoneNumber); err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "OTP sent to your phone number",
		})
	}

	if err := utils.ValidateOTPAttempts(ctx, req.PhoneNumber, config.GetRedisClient()); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many OTP attempts, try again later",
		})
	}

	payload := bson.M{"createdAt": time.Now()}
	if req.FCMToken != "" {
		payload["fcmToken"] = req.FCMToken
	}

	profile, err := uc.verifier.Verify(ctx, services.UserOnboarding, req.PhoneNumber, req.OTP, payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful!",
		Data:    profile,
	})
}

// Register is the full-profile variant of login: same OTP handshake,
// but the verified profile carries the submitted personal details.
func (uc *UserController) Register(c echo.Context) error {
	var req userRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	validations := requestValidations(c, &req)
	if len(validations) > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:      http.StatusBadRequest,
			Message:     "Validation failed",
			Validations: validations,
		})
	}

	ctx := c.Request().Context()

	if req.OTP == "" {
		if err := uc.issuer.Issue(ctx, req.PhoneNumber); err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "OTP sent to your phone number",
		})
	}

	if err := utils.ValidateOTPAttempts(ctx, req.PhoneNumber, config.GetRedisClient()); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many OTP attempts, try again later",
		})
	}

	payload := bson.M{
		"fullName":        req.FullName,
		"ageGroup":        req.AgeGroup,
		"email":           req.Email,
		"gender":          req.Gender,
		"state":           req.State,
		"pincode":         req.Pincode,
		"addresses":       req.Addresses,
		"previousHistory": req.PreviousHistory,
		"createdAt":       time.Now(),
	}

	profile, err := uc.verifier.Verify(ctx, services.UserOnboarding, req.PhoneNumber, req.OTP, payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User registered successfully",
		Data:    profile,
	})
}

type updateUserRequest struct {
	ID              int              `json:"id"`
	FullName        string           `json:"fullName"`
	AgeGroup        string           `json:"ageGroup"`
	Email           string           `json:"email" validate:"omitempty,email"`
	Gender          string           `json:"gender"`
	State           string           `json:"state"`
	Pincode         string           `json:"pincode"`
	Addresses       []models.Address `json:"addresses"`
	PreviousHistory string           `json:"previousHistory"`
}

// UpdateUser applies a partial update to a patient profile.
func (uc *UserController) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}
	if validations := requestValidations(c, &req); len(validations) > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:      http.StatusBadRequest,
			Message:     "Validation failed",
			Validations: validations,
		})
	}

	ctx := c.Request().Context()
	collection := uc.DB.Collection("Users")

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": req.ID}).Decode(&user); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User not found",
		})
	}

	updatedFields := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		updatedFields["fullName"] = req.FullName
	}
	if req.AgeGroup != "" {
		updatedFields["ageGroup"] = req.AgeGroup
	}
	if req.Email != "" {
		updatedFields["email"] = req.Email
	}
	if req.Gender != "" {
		updatedFields["gender"] = req.Gender
	}
	if req.State != "" {
		updatedFields["state"] = req.State
	}
	if req.Pincode != "" {
		updatedFields["pincode"] = req.Pincode
	}
	if req.Addresses != nil {
		updatedFields["addresses"] = req.Addresses
	}
	if req.PreviousHistory != "" {
		updatedFields["previousHistory"] = req.PreviousHistory
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": req.ID}, bson.M{"$set": updatedFields})
	if err != nil {
		return respondServiceError(c, err)
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to update user",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User updated successfully",
	})
}

// DeleteUser removes a patient account.
func (uc *UserController) DeleteUser(c echo.Context) error {
	var req struct {
		ID int `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := uc.DB.Collection("Users")

	result, err := collection.DeleteOne(ctx, bson.M{"_id": req.ID})
	if err != nil {
		return respondServiceError(c, err)
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User deleted successfully",
	})
}

// GetAllUsers lists every patient account.
func (uc *UserController) GetAllUsers(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := uc.DB.Collection("Users").Find(ctx, bson.M{})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// GetUserByID fetches a single patient by its sequential id.
func (uc *UserController) GetUserByID(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}

	ctx := c.Request().Context()

	var user models.User
	err := uc.DB.Collection("Users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}

type addressRequest struct {
	UserID     int             `json:"userId"`
	NewAddress *models.Address `json:"newAddress"`
	Index      *int            `json:"index"`
}

// AddEditAddress appends a new address, or replaces the one at the
// given index when an index is supplied.
func (uc *UserController) AddEditAddress(c echo.Context) error {
	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}
	if req.NewAddress == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Address is required",
		})
	}

	ctx := c.Request().Context()
	collection := uc.DB.Collection("Users")

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": req.UserID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	addresses := append([]models.Address{}, user.Addresses...)
	if req.Index != nil && *req.Index >= 0 && *req.Index < len(addresses) {
		addresses[*req.Index] = *req.NewAddress
	} else {
		addresses = append(addresses, *req.NewAddress)
	}

	_, err := collection.UpdateOne(ctx, bson.M{"_id": req.UserID}, bson.M{
		"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()},
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Address updated successfully",
		Data:    addresses,
	})
}

// DeleteAddress removes the address at the given index.
func (uc *UserController) DeleteAddress(c echo.Context) error {
	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}
	if req.Index == nil || *req.Index < 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Valid address index is required",
		})
	}

	ctx := c.Request().Context()
	collection := uc.DB.Collection("Users")

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": req.UserID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	if *req.Index >= len(user.Addresses) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Address index out of bounds",
		})
	}

	addresses := append([]models.Address{}, user.Addresses...)
	addresses = append(addresses[:*req.Index], addresses[*req.Index+1:]...)

	_, err := collection.UpdateOne(ctx, bson.M{"_id": req.UserID}, bson.M{
		"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()},
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Address deleted successfully",
		Data:    addresses,
	})
}

// GetUserOrders lists the orders placed by a patient.
func (uc *UserController) GetUserOrders(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}

	ctx := c.Request().Context()

	cursor, err := uc.DB.Collection("Orders").Find(ctx, bson.M{"patientId": id})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return respondServiceError(c, err)
	}
	if len(orders) == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No orders found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// DummyLogin looks up a profile by phone number without an OTP. Kept
// for app-store review accounts only.
func (uc *UserController) DummyLogin(c echo.Context) error {
	var req userLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	validations := requestValidations(c, &req)
	if len(validations) > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:      http.StatusBadRequest,
			Message:     "Validation failed",
			Validations: validations,
		})
	}

	ctx := c.Request().Context()

	var user models.User
	err := uc.DB.Collection("Users").FindOne(ctx, bson.M{"phoneNumber": req.PhoneNumber}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid Phone Number",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful!",
		Data:    user,
	})
}
