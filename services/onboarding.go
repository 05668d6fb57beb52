// services/onboarding.go
package services

import (
	"context"
	"log"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/immuneplus/immuneplus_backend/models"
)

// ProfileStore is the narrow document-store surface the verifier needs.
// FindByPhone returns (nil, nil) when no profile exists.
type ProfileStore interface {
	FindByPhone(ctx context.Context, collection, phone string) (bson.M, error)
	Insert(ctx context.Context, collection string, doc bson.M) error
}

// CounterStore allocates sequential integer ids, one counter per
// entity type. Next must be atomic so two onboarding calls never see
// the same id.
type CounterStore interface {
	Next(ctx context.Context, counterID string) (int, error)
}

// CollectionSpec names the collection and counter an onboarding flow
// writes to. One verifier serves all account types.
type CollectionSpec struct {
	Collection string
	CounterID  string
}

// Onboarding targets for each side of the marketplace.
var (
	UserOnboarding            = CollectionSpec{Collection: "Users", CounterID: "userId"}
	PharmacyOnboarding        = CollectionSpec{Collection: "Pharmacy", CounterID: "pharmacyId"}
	DeliveryPartnerOnboarding = CollectionSpec{Collection: "DeliveryPartner", CounterID: "deliveryPartnerId"}
)

// OnboardingVerifier checks a submitted OTP and then finds or creates
// the profile for that phone number. Verification consumes the code, so
// a code can complete onboarding exactly once.
type OnboardingVerifier struct {
	otps     OTPStore
	profiles ProfileStore
	counters CounterStore
	locks    keyedMutex
	logger   *log.Logger
}

// NewOnboardingVerifier wires the verifier to its collaborators.
func NewOnboardingVerifier(otps OTPStore, profiles ProfileStore, counters CounterStore) *OnboardingVerifier {
	return &OnboardingVerifier{
		otps:     otps,
		profiles: profiles,
		counters: counters,
		logger:   log.New(os.Stdout, "[ONBOARD] ", log.LstdFlags),
	}
}

// Verify consumes the pending OTP for the phone and returns the profile
// for it, creating one with a fresh sequential id when none exists.
// The payload is opaque to the verifier; id and phone number always win
// over payload fields of the same name.
//
// Calling Verify again with a later valid code returns the stored
// profile unchanged, never a duplicate.
func (v *OnboardingVerifier) Verify(ctx context.Context, spec CollectionSpec, phone, code string, payload bson.M) (bson.M, error) {
	// Serialize verify/create per phone so two in-flight verifications
	// cannot both insert. The unique phoneNumber index is the backstop.
	unlock := v.locks.lock(phone)
	defer unlock()

	if err := v.otps.Consume(ctx, phone, code); err != nil {
		return nil, err
	}

	existing, err := v.profiles.FindByPhone(ctx, spec.Collection, phone)
	if err != nil {
		return nil, &InfrastructureError{Op: "find profile", Err: err}
	}
	if existing != nil {
		return existing, nil
	}

	id, err := v.counters.Next(ctx, spec.CounterID)
	if err != nil {
		return nil, &InfrastructureError{Op: "allocate id", Err: err}
	}

	doc := bson.M{}
	for k, val := range payload {
		doc[k] = val
	}
	doc["_id"] = id
	doc["phoneNumber"] = phone

	if err := v.profiles.Insert(ctx, spec.Collection, doc); err != nil {
		// Lost a race against another instance; the winner's profile is
		// the canonical one. The allocated id is simply skipped.
		if again, ferr := v.profiles.FindByPhone(ctx, spec.Collection, phone); ferr == nil && again != nil {
			v.logger.Printf("Concurrent insert for %s in %s, returning existing profile", phone, spec.Collection)
			return again, nil
		}
		return nil, &InfrastructureError{Op: "insert profile", Err: err}
	}
	return doc, nil
}

// CheckApproval gates login on the account's approval state: approved
// proceeds, declined is terminal, anything else is "try later". Login
// flows run this before issuing an OTP so no SMS is wasted on an
// account that cannot log in anyway.
func CheckApproval(profile bson.M) error {
	switch approvalState(profile) {
	case models.ApprovalApproved:
		return nil
	case models.ApprovalDeclined:
		return ErrDeclined
	default:
		return ErrNotApproved
	}
}

// approvalState reads isApproved regardless of the numeric type the
// driver decoded it to.
func approvalState(profile bson.M) int {
	switch v := profile["isApproved"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return models.ApprovalPending
	}
}

// keyedMutex hands out one mutex per key, releasing the entry once the
// last holder unlocks.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
