// controllers/delivery_controller.go
package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/immuneplus/immuneplus_backend/config"
	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
	"github.com/immuneplus/immuneplus_backend/utils"
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// Flat fee credited to a partner per delivery assignment.
const deliveryFee = 500

// DeliveryController handles delivery partner onboarding, order
// claiming and the partner-facing earnings views.
type DeliveryController struct {
	DB       *mongo.Database
	profiles services.ProfileStore
	issuer   *services.OTPIssuer
	verifier *services.OnboardingVerifier
	counters services.CounterStore
	storage  services.FileStorage
	hub      *websocket.Hub
	logger   *log.Logger
}

// NewDeliveryController creates a new delivery partner controller
func NewDeliveryController(db *mongo.Database, profiles services.ProfileStore, issuer *services.OTPIssuer, verifier *services.OnboardingVerifier, counters services.CounterStore, storage services.FileStorage, hub *websocket.Hub) *DeliveryController {
	return &DeliveryController{
		DB:       db,
		profiles: profiles,
		issuer:   issuer,
		verifier: verifier,
		counters: counters,
		storage:  storage,
		hub:      hub,
		logger:   log.New(os.Stdout, "[DELIVERY] ", log.LstdFlags),
	}
}

// Register onboards a delivery partner. Multipart, with the license
// photo, RC photo and profile picture as file parts. Duplicate phone
// numbers are rejected before the OTP branch.
func (dc *DeliveryController) Register(c echo.Context) error {
	phone := c.FormValue("phoneNumber")
	otp := c.FormValue("otp")
	fullname := c.FormValue("fullname")

	validations := utils.CollectErrors(utils.ValidatePhoneNumber(phone))
	if otp != "" {
		validations = append(validations, utils.CollectErrors(
			utils.RequireField("fullname", fullname, "Full Name"),
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

	existing, err := dc.profiles.FindByPhone(ctx, "DeliveryPartner", phone)
	if err != nil {
		return respondServiceError(c, err)
	}
	if existing != nil {
		return respondServiceError(c, services.ErrAlreadyExists)
	}

	if otp == "" {
		if err := dc.issuer.Issue(ctx, phone); err != nil {
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

	payload := bson.M{
		"fullname":          fullname,
		"address":           c.FormValue("address"),
		"city":              c.FormValue("city"),
		"experience":        c.FormValue("experience"),
		"licenseNo":         c.FormValue("licenseNo"),
		"accountHolderName": c.FormValue("accountHolderName"),
		"accountNumber":     c.FormValue("accountNumber"),
		"ifscCode":          c.FormValue("ifscCode"),
		"bankName":          c.FormValue("bankName"),
		"isApproved":        models.ApprovalPending,
		"createdAt":         time.Now(),
	}
	if fcm := c.FormValue("fcmToken"); fcm != "" {
		payload["fcmToken"] = fcm
	}

	for form, field := range map[string]string{
		"licensePhoto": "licensePhoto",
		"rcPhoto":      "rcPhoto",
		"profilePic":   "profilePic",
	} {
		file, err := c.FormFile(form)
		if err != nil {
			continue
		}
		url, err := dc.storage.SaveImage(file, "delivery", "delivery")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		payload[field] = url
	}

	profile, err := dc.verifier.Verify(ctx, services.DeliveryPartnerOnboarding, phone, otp, payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	dc.hub.Broadcast(websocket.Notification{
		Type:    websocket.NotificationTypePendingRegistration,
		Message: fmt.Sprintf("New delivery partner registration: %s", fullname),
		Data:    bson.M{"id": profile["_id"], "collection": "DeliveryPartner"},
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration submitted, pending approval",
		Data:    profile,
	})
}

type deliveryLoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,len=10,numeric"`
	OTP         string `json:"otp"`
	FCMToken    string `json:"fcmToken,omitempty"`
}

// Login checks the approval gate before issuing or verifying an OTP.
func (dc *DeliveryController) Login(c echo.Context) error {
	var req deliveryLoginRequest
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

	profile, err := dc.profiles.FindByPhone(ctx, "DeliveryPartner", req.PhoneNumber)
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
		if err := dc.issuer.Issue(ctx, req.PhoneNumber); err != nil {
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

	result, err := dc.verifier.Verify(ctx, services.DeliveryPartnerOnboarding, req.PhoneNumber, req.OTP, nil)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.FCMToken != "" {
		_, err = dc.DB.Collection("DeliveryPartner").UpdateOne(ctx, bson.M{"phoneNumber": req.PhoneNumber},
			bson.M{"$set": bson.M{"fcmToken": req.FCMToken}})
		if err != nil {
			dc.logger.Printf("failed to store fcm token for %s: %v", req.PhoneNumber, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful!",
		Data:    result,
	})
}

// UpdatePartner applies a partial update, optionally replacing any of
// the three account images.
func (dc *DeliveryController) UpdatePartner(c echo.Context) error {
	id, ok := formIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	ctx := c.Request().Context()
	collection := dc.DB.Collection("DeliveryPartner")

	var partner models.DeliveryPartner
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&partner); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Delivery partner not found",
		})
	}

	updatedFields := bson.M{"updatedAt": time.Now()}
	for form, field := range map[string]string{
		"fullname":          "fullname",
		"address":           "address",
		"city":              "city",
		"experience":        "experience",
		"licenseNo":         "licenseNo",
		"accountHolderName": "accountHolderName",
		"accountNumber":     "accountNumber",
		"ifscCode":          "ifscCode",
		"bankName":          "bankName",
		"fcmToken":          "fcmToken",
	} {
		if v := c.FormValue(form); v != "" {
			updatedFields[field] = v
		}
	}

	oldImages := map[string]string{
		"licensePhoto": partner.LicensePhoto,
		"rcPhoto":      partner.RCPhoto,
		"profilePic":   partner.ProfilePic,
	}
	for form, old := range oldImages {
		file, err := c.FormFile(form)
		if err != nil {
			continue
		}
		url, err := dc.storage.SaveImage(file, "delivery", "delivery")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		if old != "" {
			if err := dc.storage.Delete(old); err != nil {
				dc.logger.Printf("failed to delete old %s: %v", form, err)
			}
		}
		updatedFields[form] = url
	}

	_, err := collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updatedFields})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Delivery partner updated successfully",
	})
}

// DeletePartner removes a delivery partner account.
func (dc *DeliveryController) DeletePartner(c echo.Context) error {
	var req struct {
		ID int `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	ctx := c.Request().Context()

	result, err := dc.DB.Collection("DeliveryPartner").DeleteOne(ctx, bson.M{"_id": req.ID})
	if err != nil {
		return respondServiceError(c, err)
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Delivery partner not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Delivery partner deleted successfully",
	})
}

// GetAllPartners lists every delivery partner.
func (dc *DeliveryController) GetAllPartners(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := dc.DB.Collection("DeliveryPartner").Find(ctx, bson.M{})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var partners []models.DeliveryPartner
	if err := cursor.All(ctx, &partners); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Delivery partners retrieved successfully",
		Data:    partners,
	})
}

// GetPartnerByID fetches a single delivery partner by its sequential id.
func (dc *DeliveryController) GetPartnerByID(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	ctx := c.Request().Context()

	var partner models.DeliveryPartner
	err := dc.DB.Collection("DeliveryPartner").FindOne(ctx, bson.M{"_id": id}).Decode(&partner)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Delivery partner not found",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Delivery partner retrieved successfully",
		Data:    partner,
	})
}

// GetAvailableOrders lists unclaimed orders, each enriched with the
// pickup pharmacy's address.
func (dc *DeliveryController) GetAvailableOrders(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := dc.DB.Collection("Orders").Find(ctx, bson.M{
		"assignedPartner": bson.M{"$in": bson.A{nil, 0}},
		"status":          bson.M{"$lt": models.OrderStatusAssigned},
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer cursor.Close(ctx)

	var orders []bson.M
	if err := cursor.All(ctx, &orders); err != nil {
		return respondServiceError(c, err)
	}

	for _, order := range orders {
		pharmacyID, ok := asInt(order["assignedPharmacy"])
		if !ok {
			continue
		}
		var pharmacy struct {
			Address string `bson:"address"`
		}
		if err := dc.DB.Collection("Pharmacy").FindOne(ctx, bson.M{"_id": pharmacyID}).Decode(&pharmacy); err == nil {
			order["pharmacyAddress"] = pharmacy.Address
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Available orders retrieved successfully",
		Data:    orders,
	})
}

type assignOrderRequest struct {
	OrderID   int `json:"orderId"`
	PartnerID int `json:"partnerId"`
}

// AssignOrder lets a partner claim an unassigned order. The claim is a
// single conditional update so two partners cannot take the same order;
// the winning claim books the flat delivery fee and pings the pharmacy.
func (dc *DeliveryController) AssignOrder(c echo.Context) error {
	var req assignOrderRequest
	if err := c.Bind(&req); err != nil || req.OrderID == 0 || req.PartnerID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Order ID and Partner ID are required",
		})
	}

	ctx := c.Request().Context()
	orders := dc.DB.Collection("Orders")

	var order models.Order
	err := orders.FindOneAndUpdate(ctx,
		bson.M{
			"_id":             req.OrderID,
			"assignedPartner": bson.M{"$in": bson.A{nil, 0}},
		},
		bson.M{"$set": bson.M{
			"assignedPartner": req.PartnerID,
			"status":          models.OrderStatusAssigned,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Order is no longer available",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	dc.recordDeliveryFee(ctx, req.PartnerID, req.OrderID)

	go func() {
		err := utils.SendFCMNotification(dc.DB, "Pharmacy", order.AssignedPharmacy,
			"Order assigned", fmt.Sprintf("Order #%d has been picked up by a delivery partner", order.ID),
			map[string]string{"orderId": fmt.Sprintf("%d", order.ID)})
		if err != nil {
			dc.logger.Printf("pharmacy notification failed for order %d: %v", order.ID, err)
		}
	}()

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order assigned successfully",
		Data:    order,
	})
}

// recordDeliveryFee books the flat fee owed to the partner for a
// claimed order. Failures are logged, not returned; the claim stands.
func (dc *DeliveryController) recordDeliveryFee(ctx context.Context, partnerID, orderID int) {
	paymentID, err := dc.counters.Next(ctx, "paymentId")
	if err != nil {
		dc.logger.Printf("failed to allocate payment id for order %d: %v", orderID, err)
		return
	}

	payment := models.DeliveryPayment{
		ID:         paymentID,
		UserID:     partnerID,
		OrderID:    orderID,
		TotalPrice: deliveryFee,
		Type:       3,
		Status:     0,
		Date:       time.Now(),
	}
	if _, err := dc.DB.Collection("paymentDelivery").InsertOne(ctx, payment); err != nil {
		dc.logger.Printf("failed to record delivery fee for order %d: %v", orderID, err)
	}
}

// Dashboard summarizes a partner's day: claimed and delivered counts,
// estimated earnings and the payments still due.
func (dc *DeliveryController) Dashboard(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	ctx := c.Request().Context()

	cursor, err := dc.DB.Collection("Orders").Find(ctx, bson.M{"assignedPartner": id})
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

	var todayOrders, running, delivered int
	var money float64
	for _, order := range orders {
		if !order.Date.Before(today) {
			todayOrders++
			money += 50
		}
		if order.Status > models.OrderStatusAssigned && order.Status < models.OrderStatusDelivered {
			running++
		}
		if order.Status >= models.OrderStatusDelivered {
			delivered++
		}
	}

	paymentsCursor, err := dc.DB.Collection("paymentDelivery").Find(ctx, bson.M{"userId": id, "status": 0})
	if err != nil {
		return respondServiceError(c, err)
	}
	defer paymentsCursor.Close(ctx)

	var due []models.DeliveryPayment
	if err := paymentsCursor.All(ctx, &due); err != nil {
		return respondServiceError(c, err)
	}
	var paymentsDue float64
	for _, p := range due {
		paymentsDue += p.TotalPrice
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard retrieved successfully",
		Data: bson.M{
			"todayOrder":  todayOrders,
			"running":     running,
			"delivered":   delivered,
			"money":       money,
			"paymentsDue": paymentsDue,
		},
	})
}

// GetOrderHistory returns a partner's past orders grouped by calendar
// date.
func (dc *DeliveryController) GetOrderHistory(c echo.Context) error {
	id, ok := queryIntID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	ctx := c.Request().Context()

	cursor, err := dc.DB.Collection("Orders").Find(ctx, bson.M{"assignedPartner": id})
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
		Message: "Order history retrieved successfully",
		Data:    grouped,
	})
}

// asInt normalizes the numeric types the mongo driver hands back for
// untyped documents.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
