// models/user.go
package models

import (
	"time"
)

// Address is one delivery address in a patient's address book.
type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// User is a patient account, keyed by a sequential integer id and a
// unique phone number.
type User struct {
	ID              int       `json:"id" bson:"_id"`
	PhoneNumber     string    `json:"phoneNumber" bson:"phoneNumber"`
	FullName        string    `json:"fullName,omitempty" bson:"fullName,omitempty"`
	AgeGroup        string    `json:"ageGroup,omitempty" bson:"ageGroup,omitempty"`
	Email           string    `json:"email,omitempty" bson:"email,omitempty"`
	Gender          string    `json:"gender,omitempty" bson:"gender,omitempty"`
	State           string    `json:"state,omitempty" bson:"state,omitempty"`
	Pincode         string    `json:"pincode,omitempty" bson:"pincode,omitempty"`
	Addresses       []Address `json:"addresses,omitempty" bson:"addresses,omitempty"`
	PreviousHistory string    `json:"previousHistory,omitempty" bson:"previousHistory,omitempty"`
	FCMToken        string    `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
