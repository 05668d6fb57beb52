// models/pharmacy.go
package models

import (
	"time"
)

// Pharmacy is a pharmacy account. New registrations start with
// IsApproved = ApprovalPending and cannot log in until an admin
// approves them.
type Pharmacy struct {
	ID                int       `json:"id" bson:"_id"`
	Name              string    `json:"name,omitempty" bson:"name,omitempty"`
	PhoneNumber       string    `json:"phoneNumber" bson:"phoneNumber"`
	Address           string    `json:"address,omitempty" bson:"address,omitempty"`
	Location          string    `json:"location,omitempty" bson:"location,omitempty"`
	LicenseNo         string    `json:"licenseNo,omitempty" bson:"licenseNo,omitempty"`
	LicenseImg        string    `json:"licenseImg,omitempty" bson:"licenseImg,omitempty"`
	Email             string    `json:"email,omitempty" bson:"email,omitempty"`
	AccountHolderName string    `json:"accountHolderName,omitempty" bson:"accountHolderName,omitempty"`
	AccountNumber     string    `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	IfscCode          string    `json:"ifscCode,omitempty" bson:"ifscCode,omitempty"`
	BankName          string    `json:"bankName,omitempty" bson:"bankName,omitempty"`
	IsApproved        int       `json:"isApproved" bson:"isApproved"`
	FCMToken          string    `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
