package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/immuneplus/immuneplus_backend/models"
)

// fakeProfiles is an in-memory ProfileStore keyed by collection+phone.
type fakeProfiles struct {
	mu      sync.Mutex
	docs    map[string]bson.M
	inserts int
	findErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{docs: make(map[string]bson.M)}
}

func (f *fakeProfiles) FindByPhone(ctx context.Context, collection, phone string) (bson.M, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	doc, ok := f.docs[collection+"/"+phone]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (f *fakeProfiles) Insert(ctx context.Context, collection string, doc bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := collection + "/" + doc["phoneNumber"].(string)
	if _, exists := f.docs[key]; exists {
		return errors.New("duplicate key")
	}
	f.docs[key] = doc
	f.inserts++
	return nil
}

// fakeCounters allocates ids sequentially per counter key.
type fakeCounters struct {
	mu   sync.Mutex
	seqs map[string]int
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{seqs: make(map[string]int)}
}

func (f *fakeCounters) Next(ctx context.Context, counterID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqs[counterID]++
	return f.seqs[counterID], nil
}

func putCode(t *testing.T, store *MemoryOTPStore, phone, code string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), phone, models.PendingOTP{
		Code:      code,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(OTPLifetime),
	}))
}

func TestVerifyCreatesProfileWithSequentialID(t *testing.T) {
	store := NewMemoryOTPStore()
	profiles := newFakeProfiles()
	counters := newFakeCounters()
	verifier := NewOnboardingVerifier(store, profiles, counters)
	ctx := context.Background()

	putCode(t, store, "9876543210", "123456")

	doc, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "123456", bson.M{"fullName": "Asha"})
	require.NoError(t, err)
	assert.Equal(t, 1, doc["_id"])
	assert.Equal(t, "9876543210", doc["phoneNumber"])
	assert.Equal(t, "Asha", doc["fullName"])
	assert.Equal(t, 1, profiles.inserts)
}

func TestVerifyReturnsExistingProfile(t *testing.T) {
	store := NewMemoryOTPStore()
	profiles := newFakeProfiles()
	counters := newFakeCounters()
	verifier := NewOnboardingVerifier(store, profiles, counters)
	ctx := context.Background()

	putCode(t, store, "9876543210", "123456")
	first, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "123456", bson.M{"fullName": "Asha"})
	require.NoError(t, err)

	// A later login with a fresh code must return the stored profile,
	// not create a second one, even with a different payload.
	putCode(t, store, "9876543210", "654321")
	second, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "654321", bson.M{"fullName": "Someone Else"})
	require.NoError(t, err)

	assert.Equal(t, first["_id"], second["_id"])
	assert.Equal(t, "Asha", second["fullName"])
	assert.Equal(t, 1, profiles.inserts)
}

func TestVerifyRejectsWrongCodeWithoutCreating(t *testing.T) {
	store := NewMemoryOTPStore()
	profiles := newFakeProfiles()
	verifier := NewOnboardingVerifier(store, profiles, newFakeCounters())
	ctx := context.Background()

	putCode(t, store, "9876543210", "123456")

	_, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "000000", nil)
	assert.ErrorIs(t, err, ErrOTPMismatch)
	assert.Equal(t, 0, profiles.inserts)

	// The real code still works after a wrong guess.
	_, err = verifier.Verify(ctx, UserOnboarding, "9876543210", "123456", nil)
	assert.NoError(t, err)
}

func TestVerifyRejectsMissingCode(t *testing.T) {
	store := NewMemoryOTPStore()
	verifier := NewOnboardingVerifier(store, newFakeProfiles(), newFakeCounters())

	_, err := verifier.Verify(context.Background(), UserOnboarding, "9876543210", "123456", nil)
	assert.ErrorIs(t, err, ErrOTPNotFound)

	be, ok := AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, "OTP expired or invalid", be.Message)
}

func TestVerifyPayloadCannotOverrideIdentity(t *testing.T) {
	store := NewMemoryOTPStore()
	profiles := newFakeProfiles()
	verifier := NewOnboardingVerifier(store, profiles, newFakeCounters())
	ctx := context.Background()

	putCode(t, store, "9876543210", "123456")

	doc, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "123456", bson.M{
		"_id":         999,
		"phoneNumber": "0000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc["_id"])
	assert.Equal(t, "9876543210", doc["phoneNumber"])
}

func TestVerifyCountersArePerEntityType(t *testing.T) {
	store := NewMemoryOTPStore()
	profiles := newFakeProfiles()
	counters := newFakeCounters()
	verifier := NewOnboardingVerifier(store, profiles, counters)
	ctx := context.Background()

	putCode(t, store, "9876543210", "123456")
	user, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "123456", nil)
	require.NoError(t, err)

	putCode(t, store, "9123456789", "654321")
	pharmacy, err := verifier.Verify(ctx, PharmacyOnboarding, "9123456789", "654321", nil)
	require.NoError(t, err)

	// Each entity type runs its own sequence, so both start at 1.
	assert.Equal(t, 1, user["_id"])
	assert.Equal(t, 1, pharmacy["_id"])
}

func TestVerifyConcurrentRequestsInsertOnce(t *testing.T) {
	profiles := newFakeProfiles()
	counters := newFakeCounters()

	const workers = 16
	store := NewMemoryOTPStore()
	verifier := NewOnboardingVerifier(store, profiles, counters)
	ctx := context.Background()

	// All workers race on the same code. Exactly one consumes it and
	// creates the profile, the rest see not-found.
	putCode(t, store, "9876543210", "123456")

	var wg sync.WaitGroup
	var okCount int32
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := verifier.Verify(ctx, UserOnboarding, "9876543210", "123456", nil)
			if err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), okCount)
	assert.Equal(t, 1, profiles.inserts)
}

func TestCheckApproval(t *testing.T) {
	cases := []struct {
		name    string
		profile bson.M
		wantErr error
	}{
		{"approved int", bson.M{"isApproved": models.ApprovalApproved}, nil},
		{"approved int32", bson.M{"isApproved": int32(1)}, nil},
		{"approved float64", bson.M{"isApproved": float64(1)}, nil},
		{"pending", bson.M{"isApproved": models.ApprovalPending}, ErrNotApproved},
		{"declined", bson.M{"isApproved": models.ApprovalDeclined}, ErrDeclined},
		{"missing field", bson.M{}, ErrNotApproved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckApproval(tc.profile)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestBusinessErrorMessages(t *testing.T) {
	be, ok := AsBusiness(ErrNotApproved)
	require.True(t, ok)
	assert.Equal(t, "Your Account is not Approved yet.", be.Message)

	be, ok = AsBusiness(ErrDeclined)
	require.True(t, ok)
	assert.Equal(t, "Your Profile has been Declined", be.Message)

	be, ok = AsBusiness(ErrOTPMismatch)
	require.True(t, ok)
	assert.Equal(t, "Invalid OTP", be.Message)

	_, ok = AsBusiness(errors.New("disk on fire"))
	assert.False(t, ok)

	wrapped := &InfrastructureError{Op: "find profile", Err: errors.New("timeout")}
	_, ok = AsBusiness(wrapped)
	assert.False(t, ok)
	assert.ErrorContains(t, wrapped, "find profile")
}
