// models/category.go
package models

import "time"

// Category is a catalog category with a poster image shown in the app.
type Category struct {
	ID   int    `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	Img  string `json:"img,omitempty" bson:"img,omitempty"`
}

// Poster is a promotional banner shown on the app home screen.
type Poster struct {
	ID          int       `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
	Img         string    `json:"img,omitempty" bson:"img,omitempty"`
}

// Doctor is kept only for admin approval toggles and pending-request
// listings; doctor onboarding itself lives in another service.
type Doctor struct {
	ID          int    `json:"id" bson:"_id"`
	FullName    string `json:"fullName,omitempty" bson:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber" bson:"phoneNumber"`
	IsApproved  int    `json:"isApproved" bson:"isApproved"`
}
