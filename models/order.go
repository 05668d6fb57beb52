// models/order.go
package models

import (
	"time"
)

// Order status progression. Statuses 1..4 are handled by the pharmacy,
// 5..6 are in delivery, 7 means delivered.
const (
	OrderStatusPlaced     = 1
	OrderStatusAccepted   = 2
	OrderStatusAssigned   = 3
	OrderStatusPacked     = 4
	OrderStatusPickedUp   = 5
	OrderStatusInTransit  = 6
	OrderStatusDelivered  = 7
)

// OrderProduct is a single line item on an order.
type OrderProduct struct {
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity,omitempty" bson:"quantity,omitempty"`
}

// Order is a medicine order placed by a patient, fulfilled by a
// pharmacy and delivered by a partner. AssignedPartner is zero until a
// delivery partner claims the order.
type Order struct {
	ID               int            `json:"id" bson:"_id"`
	PatientID        int            `json:"patientId" bson:"patientId"`
	AssignedPharmacy int            `json:"assignedPharmacy" bson:"assignedPharmacy"`
	AssignedPartner  int            `json:"assignedPartner,omitempty" bson:"assignedPartner,omitempty"`
	Status           int            `json:"status" bson:"status"`
	Products         []OrderProduct `json:"products,omitempty" bson:"products,omitempty"`
	Date             time.Time      `json:"date" bson:"date"`
}

// DeliveryPayment records the flat fee owed to a delivery partner for
// one completed assignment.
type DeliveryPayment struct {
	ID         int       `json:"id" bson:"_id"`
	UserID     int       `json:"userId" bson:"userId"`
	OrderID    int       `json:"orderId" bson:"orderId"`
	TotalPrice float64   `json:"totalPrice" bson:"totalPrice"`
	Type       int       `json:"type" bson:"type"`
	Status     int       `json:"status" bson:"status"`
	Date       time.Time `json:"date" bson:"date"`
}
