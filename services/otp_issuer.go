// services/otp_issuer.go
package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/immuneplus/immuneplus_backend/models"
)

// OTPLifetime is how long a code stays valid after issuance.
const OTPLifetime = 5 * time.Minute

// SMSSender dispatches a text message to a phone number. Delivery is
// best effort; the issuer never waits for it.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// OTPIssuer generates one-time codes, stores them with a TTL and hands
// them to the SMS collaborator in the background.
type OTPIssuer struct {
	store  OTPStore
	sender SMSSender
	logger *log.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewOTPIssuer creates an issuer with the standard five-minute lifetime.
func NewOTPIssuer(store OTPStore, sender SMSSender) *OTPIssuer {
	return &OTPIssuer{
		store:  store,
		sender: sender,
		logger: log.New(os.Stdout, "[OTP] ", log.LstdFlags),
		ttl:    OTPLifetime,
		now:    time.Now,
	}
}

// Issue generates a fresh 6-digit code for the phone, replacing any
// code issued earlier, and dispatches it without waiting. A failed SMS
// send is logged and swallowed; only a store failure is returned.
func (i *OTPIssuer) Issue(ctx context.Context, phone string) error {
	code, err := GenerateOTP()
	if err != nil {
		return &InfrastructureError{Op: "generate otp", Err: err}
	}

	now := i.now()
	otp := models.PendingOTP{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}
	if err := i.store.Put(ctx, phone, otp); err != nil {
		return &InfrastructureError{Op: "store otp", Err: err}
	}

	go func() {
		message := fmt.Sprintf("Your OTP is %s. It is valid for 5 minutes.", code)
		if err := i.sender.Send(context.Background(), phone, message); err != nil {
			i.logger.Printf("Failed to send OTP to %s: %v", phone, err)
		}
	}()

	return nil
}

// GenerateOTP returns a 6-digit numeric code, uniform in
// [100000, 999999], from the system CSPRNG.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
