// controllers/admin_controller.go
package controllers

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/immuneplus/immuneplus_backend/middleware"
	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/utils"
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// Collections an admin may review or clear. Everything else is off
// limits to the back office.
var adminManagedCollections = map[string]bool{
	"Users":           true,
	"Pharmacy":        true,
	"DeliveryPartner": true,
	"Doctors":         true,
	"Orders":          true,
	"Category":        true,
	"paymentDelivery": true,
}

// AdminController handles back-office login and approval decisions.
type AdminController struct {
	DB     *mongo.Database
	hub    *websocket.Hub
	logger *log.Logger
}

// NewAdminController creates a new admin controller
func NewAdminController(db *mongo.Database, hub *websocket.Hub) *AdminController {
	return &AdminController{
		DB:     db,
		hub:    hub,
		logger: log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// Login checks admin credentials and returns a signed JWT.
func (ac *AdminController) Login(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
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

	var admin models.Admin
	err := ac.DB.Collection("Admins").FindOne(ctx, bson.M{"username": req.Username}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, err := middleware.GenerateAdminJWT(admin.ID.Hex(), admin.Username)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful!",
		Data:    bson.M{"token": token, "username": admin.Username},
	})
}

// ChangePharmacyStatus approves or declines a pharmacy application.
func (ac *AdminController) ChangePharmacyStatus(c echo.Context) error {
	return ac.changeApprovalStatus(c, "Pharmacy", "name")
}

// ChangeDeliveryPartnerStatus approves or declines a delivery partner.
func (ac *AdminController) ChangeDeliveryPartnerStatus(c echo.Context) error {
	return ac.changeApprovalStatus(c, "DeliveryPartner", "fullname")
}

// ChangeDoctorStatus approves or declines a doctor account.
func (ac *AdminController) ChangeDoctorStatus(c echo.Context) error {
	return ac.changeApprovalStatus(c, "Doctors", "fullName")
}

// changeApprovalStatus flips the isApproved flag on one account and
// fans out the decision: websocket event to admin dashboards, push and
// email to the account holder, all best-effort.
func (ac *AdminController) changeApprovalStatus(c echo.Context, collection, nameField string) error {
	var req models.ChangeApprovalRequest
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "ID is required",
		})
	}
	if req.IsApproved != models.ApprovalApproved && req.IsApproved != models.ApprovalDeclined {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "isApproved must be 1 (approved) or 2 (declined)",
		})
	}

	ctx := c.Request().Context()
	col := ac.DB.Collection(collection)

	var profile bson.M
	if err := col.FindOne(ctx, bson.M{"_id": req.ID}).Decode(&profile); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Account not found",
		})
	}

	_, err := col.UpdateOne(ctx, bson.M{"_id": req.ID},
		bson.M{"$set": bson.M{"isApproved": req.IsApproved}})
	if err != nil {
		return respondServiceError(c, err)
	}

	approved := req.IsApproved == models.ApprovalApproved
	name, _ := profile[nameField].(string)
	email, _ := profile["email"].(string)

	ac.hub.Broadcast(websocket.Notification{
		Type:    websocket.NotificationTypeApprovalChanged,
		Message: fmt.Sprintf("%s approval changed", collection),
		Data:    bson.M{"id": req.ID, "collection": collection, "isApproved": req.IsApproved},
	})

	go func() {
		title := "Account approved"
		body := "Your account has been approved. You can now log in."
		if !approved {
			title = "Account declined"
			body = "Your account application has been declined."
		}
		if err := utils.SendFCMNotification(ac.DB, collection, req.ID, title, body, nil); err != nil {
			ac.logger.Printf("approval push failed for %s %d: %v", collection, req.ID, err)
		}
		if email != "" {
			if err := utils.SendApprovalEmail(email, name, approved); err != nil {
				ac.logger.Printf("approval email failed for %s %d: %v", collection, req.ID, err)
			}
		}
	}()

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Status updated successfully",
	})
}

// GetPendingRequests lists every account still waiting for review,
// across doctors, delivery partners and pharmacies.
func (ac *AdminController) GetPendingRequests(c echo.Context) error {
	ctx := c.Request().Context()

	pending := bson.M{}
	for _, collection := range []string{"Doctors", "DeliveryPartner", "Pharmacy"} {
		cursor, err := ac.DB.Collection(collection).Find(ctx, bson.M{"isApproved": models.ApprovalPending})
		if err != nil {
			return respondServiceError(c, err)
		}
		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return respondServiceError(c, err)
		}
		pending[collection] = docs
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending requests retrieved successfully",
		Data:    pending,
	})
}

// EmptyCollection drops all documents from one managed collection.
func (ac *AdminController) EmptyCollection(c echo.Context) error {
	var req struct {
		Collection string `json:"collection"`
	}
	if err := c.Bind(&req); err != nil || req.Collection == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Collection name is required",
		})
	}
	if !adminManagedCollections[req.Collection] {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Collection cannot be emptied",
		})
	}

	ctx := c.Request().Context()

	result, err := ac.DB.Collection(req.Collection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("Deleted %d documents from %s", result.DeletedCount, req.Collection),
	})
}
