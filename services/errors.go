// services/errors.go
package services

import (
	"errors"
	"fmt"
)

// BusinessKind classifies rejections the client can act on.
type BusinessKind string

const (
	KindNotFound      BusinessKind = "not_found"
	KindExpired       BusinessKind = "expired"
	KindMismatch      BusinessKind = "mismatch"
	KindNotApproved   BusinessKind = "not_approved"
	KindDeclined      BusinessKind = "declined"
	KindAlreadyExists BusinessKind = "already_exists"
)

// BusinessError is a rejection with a stable kind and a user-facing
// message. Handlers map these to HTTP 400 responses.
type BusinessError struct {
	Kind    BusinessKind
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// NotFound and Expired deliberately carry the same message: a caller
// must not be able to tell whether a code ever existed.
var (
	ErrOTPNotFound   = &BusinessError{Kind: KindNotFound, Message: "OTP expired or invalid"}
	ErrOTPExpired    = &BusinessError{Kind: KindExpired, Message: "OTP expired or invalid"}
	ErrOTPMismatch   = &BusinessError{Kind: KindMismatch, Message: "Invalid OTP"}
	ErrNotApproved   = &BusinessError{Kind: KindNotApproved, Message: "Your Account is not Approved yet."}
	ErrDeclined      = &BusinessError{Kind: KindDeclined, Message: "Your Profile has been Declined"}
	ErrAlreadyExists = &BusinessError{Kind: KindAlreadyExists, Message: "Phone Number already exists"}
)

// AsBusiness extracts a BusinessError from an error chain.
func AsBusiness(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// InfrastructureError wraps a store or messaging failure. Handlers map
// these to HTTP 500 with the cause kept for diagnostics only.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}
