// services/otp_store.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/immuneplus/immuneplus_backend/models"
)

// OTPStore holds pending one-time codes keyed by phone number. Put
// overwrites any earlier code for the same phone, which is what
// invalidates a code when the client asks for a new one.
//
// Consume returns ErrOTPNotFound, ErrOTPExpired or ErrOTPMismatch, and
// deletes the entry only on a successful match. A mismatched code
// leaves the entry in place until its natural expiry.
type OTPStore interface {
	Put(ctx context.Context, phone string, otp models.PendingOTP) error
	Consume(ctx context.Context, phone, code string) error
}

// MemoryOTPStore keeps pending codes in process memory. Expiry is
// checked lazily on Consume; nothing survives a restart, which is fine
// for codes that live five minutes.
type MemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]models.PendingOTP
	now     func() time.Time
}

// NewMemoryOTPStore creates an empty in-memory store.
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		entries: make(map[string]models.PendingOTP),
		now:     time.Now,
	}
}

// Put stores the code, replacing any pending code for the same phone.
func (s *MemoryOTPStore) Put(ctx context.Context, phone string, otp models.PendingOTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = otp
	return nil
}

// Peek returns the pending code for a phone without consuming it.
// Used by dev tooling and tests; the Redis store has no equivalent.
func (s *MemoryOTPStore) Peek(phone string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[phone]
	if !ok || entry.Expired(s.now()) {
		return "", false
	}
	return entry.Code, true
}

// Consume checks the submitted code and removes the entry on a match.
func (s *MemoryOTPStore) Consume(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[phone]
	if !ok {
		return ErrOTPNotFound
	}
	if entry.Expired(s.now()) {
		delete(s.entries, phone)
		return ErrOTPExpired
	}
	if entry.Code != code {
		return ErrOTPMismatch
	}
	delete(s.entries, phone)
	return nil
}
