// controllers/pharmacy_controller.go
package controllers

import (
	"fmt"
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
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// PharmacyController handles pharmacy onboarding, profile management
// and the pharmacy-facing order views.
type PharmacyController struct {
	DB       *mongo.Database
	profiles services.ProfileStore
	issuer   *services.OTPIssuer
	verifier *services.OnboardingVerifier
	storage  services.FileStorage
	hub      *websocket.Hub
	logger   *log.Logger
}

// NewPharmacyController creates a new pharmacy controller
func NewPharmacyController(db *mongo.Database, profiles services.ProfileStore, issuer *services.OTPIssuer, verifier *services.OnboardingVerifier, storage services.FileStorage, hub *websocket.Hub) *PharmacyController {
	return &PharmacyController{
		DB:       db,
		profiles: profiles,
		issuer:   issuer,
		verifier: verifier,
		storage:  storage,
		hub:      hub,
		logger:   log.New(os.Stdout, "[PHARMACY] ", log.LstdFlags),
	}
}

// Register onboards a pharmacy. Sent as multipart so the license image
// can ride along. Duplicate phone numbers are rejected before any OTP
// is issued so applicants learn about the conflict up front.
func (pc *PharmacyController) Register(c echo.Context) error {
	phone := c.FormValue("phoneNumber")
	otp := c.FormValue("otp")
	name := c.FormValue("name")
	email := c.FormValue("email")

	validations := utils.CollectErrors(
		utils.ValidatePhoneNumber(phone),
		utils.ValidateEmail(email),
	)
	if otp != "" {
		validations = append(validations, utils.CollectErrors(
			utils.RequireField("name", name, "Pharmacy Name"),
			utils.RequireField("address", c.FormValue("address"), "Address"),
			utils.RequireField("licenseNo", c.FormValue("licenseNo"), "License Number"),
		)...)
	}
	if len(validations) > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:      http.StatusBadRequest,
			Message:     "Validation failed",
			Validations: validations,
		})
	}

	ctx := c.Request().Context()

	existing, err := pc.profiles.FindByPhone(ctx, "Pharmacy", phone)
	if err != nil {
		return respondServiceError(c, err)
	}
	if existing != nil {
		return respondServiceError(c, services.ErrAlreadyExists)
	}

	if otp == "" {
		if err := pc.issuer.Issue(ctx, phone); err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "OTP sent to your phone number",
		})
	}

	if err := utils.ValidateOTPAttempts(ctx, phone, config.GetRedisClient()); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many OTP attempts, try again later",
		})
	}

	licenseImg := ""
	if file, err := c.FormFile("licenseImg"); err == nil {
		licenseImg, err = pc.storage.SaveImage(file, "pharmacy", "pharmacy")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
	}

	payload := bson.M{
		"name":              name,
		"address":           c.FormValue("address"),
		"location":          c.FormValue("location"),
		"licenseNo":         c.FormValue("licenseNo"),
		"licenseImg":        licenseImg,
		"email":             email,
		"accountHolderName": c.FormValue("accountHolderName"),
		"accountNumber":     c.FormValue("accountNumber"),
		"ifscCode":          c.FormValue("ifscCode"),
		"upiId":             c.FormValue("upiId"),
		"isApproved":        models.ApprovalPending,
		"createdAt":         time.Now(),
	}
	if fcm := c.FormValue("fcmToken"); fcm != "" {
		payload["fcmToken"] = fcm
	}

	profile, err := pc.verifier.Verify(ctx, services.PharmacyOnboarding, phone, otp, payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	pc.hub.Broadcast(websocket.Notification{
		Type:    websocket.NotificationTypePendingRegistration,
		Message: fmt.Sprintf("New pharmacy registration: %s", name),
		Data:    bson.M{"id": profile["_id"], "collection": "Pharmacy"},
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration submitted, pending approval",
		Data:    profile,
	})
}

type pharmacyLoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,len=10,numeric"`
	OTP         string `json:"otp"`
	FCMToken    string `json:"fcmToken,omitempty"`
}

// Login runs the approval gate before anything else: a pending or
// declined pharmacy never receives an OTP.
func (pc *PharmacyController) Login(c echo.Context) error {
	var req pharmacyLoginRequest
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

	profile, err := pc.profiles.FindByPhone(ctx, "Pharmacy", req.PhoneNumber)
	if err != nil {
		return respondServiceError(c, err)
	}
	if profile == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid Phone Number",
		})
	}

	if err := services.CheckApproval(profile); err != nil {
		return respondServiceError(c, err)
	}

	if req.OTP == "" {
		if err := pc.issuer.Issue(ctx, req.PhoneNumber); err != nil {
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

	result, err := pc.verifier.Verify(ctx, services.PharmacyOnboarding, req.PhoneNumber, req.OTP, nil)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.FCMToken != "" {
		_, err = pc.DB.Collection("Pharmacy").UpdateOne(ctx, bson.M{"phoneNumber": req.PhoneNumber},
			bson.M{"$set": bson.M{"fcmToken": req.FCMToken}})
		if err != nil {
			pc.logger.Printf("failed to store fcm token for %s: %v", req.PhoneNumber, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful!",
		Data:    result,
	})
}

// UpdatePharmacy applies a partial update, optionally replacing the
// license image.
func (pc *PharmacyController) UpdatePharmacy(c echo.Context) error {
	id, ok := formIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := pc.DB.Collection("Pharmacy")

	var pharmacy models.Pharmacy
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pharmacy); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Pharmacy not found",
		})
	}

	updatedFields := bson.M{"updatedAt": time.Now()}
	for form, field := range map[string]string{
		"name":              "name",
		"address":           "address",
		"location":          "location",
		"licenseNo":         "licenseNo",
		"email":             "email",
		"accountHolderName": "accountHolderName",
		"accountNumber":     "accountNumber",
		"ifscCode":          "ifscCode",
		"upiId":             "upiId",
		"fcmToken":          "fcmToken",
	} {
		if v := c.FormValue(form); v != "" {
			updatedFields[field] = v
		}
	}

	if file, err := c.FormFile("licenseImg"); err == nil {
		url, err := pc.storage.SaveImage(file, "pharmacy", "pharmacy")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		if pharmacy.LicenseImg != "" {
			if err := pc.storage.Delete(pharmacy.LicenseImg); err != nil {
				pc.logger.Printf("failed to delete old license image: %v", err)
			}
		}
		updatedFields["licenseImg"] = url
	}

	_, err := collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updatedFields})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pharmacy updated successfully",
	})
}

// DeletePharmacy removes a pharmacy account.
func (pc *PharmacyController) DeletePharmacy(c echo.Context) error {
	var req struct {
		ID int `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy ID is required",
		})
	}

	ctx := c.Request().Context()

	result, err := pc.DB.Collection("Pharmacy").DeleteOne(ctx, bson.M{"_id": req.ID})
	if err != nil {
		return respondServiceError(c, err)
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pharmacy deleted successfully",
	})
}

// GetAllPharmacies lists every pharmacy.
func (pc *PharmacyController) GetAllPharmacies(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := pc.DB.Collection("Pharmacy").Find(ctx, bson.M{})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var pharmacies []models.Pharmacy
	if err := cursor.All(ctx, &pharmacies); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pharmacies retrieved successfully",
		Data:    pharmacies,
	})
}

// GetPharmacyByID fetches a single pharmacy by its sequential id.
func (pc *PharmacyController) GetPharmacyByID(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy ID is required",
		})
	}

	ctx := c.Request().Context()

	var pharmacy models.Pharmacy
	err := pc.DB.Collection("Pharmacy").FindOne(ctx, bson.M{"_id": id}).Decode(&pharmacy)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Pharmacy not found",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pharmacy retrieved successfully",
		Data:    pharmacy,
	})
}

// Dashboard summarizes a pharmacy's order book: lifetime and today
// counts, orders still in flight, and gross product revenue.
func (pc *PharmacyController) Dashboard(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy ID is required",
		})
	}

	ctx := c.Request().Context()

	cursor, err := pc.DB.Collection("Orders").Find(ctx, bson.M{"assignedPharmacy": id})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return respondServiceError(c, err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var todayOrders, runningOrders int
	var money float64
	for _, order := range orders {
		if !order.Date.Before(today) {
			todayOrders++
		}
		if order.Status > models.OrderStatusPlaced && order.Status <= models.OrderStatusDelivered {
			runningOrders++
		}
		for _, p := range order.Products {
			money += p.Price * float64(p.Quantity)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard retrieved successfully",
		Data: bson.M{
			"totalOrders":   len(orders),
			"todayOrder":    todayOrders,
			"runningOrders": runningOrders,
			"money":         money,
		},
	})
}

// GetOngoingOrders lists the orders a pharmacy still has to hand off,
// everything from placed up to packed.
func (pc *PharmacyController) GetOngoingOrders(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy ID is required",
		})
	}

	ctx := c.Request().Context()

	cursor, err := pc.DB.Collection("Orders").Find(ctx, bson.M{
		"assignedPharmacy": id,
		"status":           bson.M{"$gte": models.OrderStatusPlaced, "$lte": models.OrderStatusPacked},
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// GetOrdersByID returns a pharmacy's full order history grouped by
// calendar date, newest first inside each group.
func (pc *PharmacyController) GetOrdersByID(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Pharmacy ID is required",
		})
	}

	ctx := c.Request().Context()

	cursor, err := pc.DB.Collection("Orders").Find(ctx, bson.M{"assignedPharmacy": id})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return respondServiceError(c, err)
	}

	grouped := make(map[string][]models.Order)
	for _, order := range orders {
		key := order.Date.Format("2006-01-02")
		grouped[key] = append(grouped[key], order)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    grouped,
	})
}
