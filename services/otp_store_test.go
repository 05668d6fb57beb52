package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immuneplus/immuneplus_backend/models"
)

func pendingCode(code string, issuedAt time.Time) models.PendingOTP {
	return models.PendingOTP{
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(OTPLifetime),
	}
}

func TestMemoryOTPStoreConsumeSuccess(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("123456", time.Now())))
	require.NoError(t, store.Consume(ctx, "9876543210", "123456"))

	// The code is single use.
	err := store.Consume(ctx, "9876543210", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestMemoryOTPStoreConsumeUnknownPhone(t *testing.T) {
	store := NewMemoryOTPStore()

	err := store.Consume(context.Background(), "9876543210", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestMemoryOTPStoreConsumeExpired(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	issuedAt := time.Now()
	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("123456", issuedAt)))

	store.now = func() time.Time { return issuedAt.Add(OTPLifetime) }

	err := store.Consume(ctx, "9876543210", "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)

	// The expired entry is gone, later attempts see not-found.
	err = store.Consume(ctx, "9876543210", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestMemoryOTPStoreConsumeJustBeforeExpiry(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	issuedAt := time.Now()
	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("123456", issuedAt)))

	store.now = func() time.Time { return issuedAt.Add(OTPLifetime - time.Second) }

	assert.NoError(t, store.Consume(ctx, "9876543210", "123456"))
}

func TestMemoryOTPStoreMismatchKeepsEntry(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("123456", time.Now())))

	err := store.Consume(ctx, "9876543210", "000000")
	assert.ErrorIs(t, err, ErrOTPMismatch)

	// A wrong guess must not burn the real code.
	assert.NoError(t, store.Consume(ctx, "9876543210", "123456"))
}

func TestMemoryOTPStoreReissueInvalidatesOldCode(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("111111", time.Now())))
	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("222222", time.Now())))

	err := store.Consume(ctx, "9876543210", "111111")
	assert.ErrorIs(t, err, ErrOTPMismatch)

	assert.NoError(t, store.Consume(ctx, "9876543210", "222222"))
}

func TestMemoryOTPStoreIsolatesPhones(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9876543210", pendingCode("111111", time.Now())))
	require.NoError(t, store.Put(ctx, "9123456789", pendingCode("222222", time.Now())))

	assert.NoError(t, store.Consume(ctx, "9876543210", "111111"))
	assert.NoError(t, store.Consume(ctx, "9123456789", "222222"))
}
