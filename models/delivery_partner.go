// models/delivery_partner.go
package models

import (
	"time"
)

// DeliveryPartner is a delivery rider account. Registration requires a
// driving license photo, the vehicle RC photo and a profile picture;
// the account stays in ApprovalPending until an admin reviews it.
type DeliveryPartner struct {
	ID                int       `json:"id" bson:"_id"`
	FullName          string    `json:"fullname,omitempty" bson:"fullname,omitempty"`
	PhoneNumber       string    `json:"phoneNumber" bson:"phoneNumber"`
	Address           string    `json:"address,omitempty" bson:"address,omitempty"`
	City              string    `json:"city,omitempty" bson:"city,omitempty"`
	Experience        string    `json:"experience,omitempty" bson:"experience,omitempty"`
	LicenseNo         string    `json:"licenseNo,omitempty" bson:"licenseNo,omitempty"`
	LicensePhoto      string    `json:"licensePhoto,omitempty" bson:"licensePhoto,omitempty"`
	RCPhoto           string    `json:"rcPhoto,omitempty" bson:"rcPhoto,omitempty"`
	ProfilePic        string    `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	AccountHolderName string    `json:"accountHolderName,omitempty" bson:"accountHolderName,omitempty"`
	AccountNumber     string    `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	IfscCode          string    `json:"ifscCode,omitempty" bson:"ifscCode,omitempty"`
	BankName          string    `json:"bankName,omitempty" bson:"bankName,omitempty"`
	IsApproved        int       `json:"isApproved" bson:"isApproved"`
	FCMToken          string    `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
