package models

import (
	"time"
)

// PendingOTP is a one-time code waiting to be verified for a phone number.
// Reissuing a code for the same phone overwrites the previous entry.
type PendingOTP struct {
	Code      string    `json:"code" bson:"code"`
	IssuedAt  time.Time `json:"issuedAt" bson:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// Expired reports whether the code is no longer valid at the given instant.
func (o PendingOTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
