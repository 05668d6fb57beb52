// models/admin.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a back-office operator account. Password is a bcrypt hash.
type Admin struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username string             `json:"username" bson:"username"`
	Password string             `json:"-" bson:"password"`
}

// AdminLoginRequest is the credentials payload for admin login.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangeApprovalRequest updates the approval state of a pharmacy,
// delivery partner or doctor account.
type ChangeApprovalRequest struct {
	ID         int `json:"id"`
	IsApproved int `json:"isApproved"`
}
