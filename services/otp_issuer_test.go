package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immuneplus/immuneplus_backend/models"
)

// recordingSender captures dispatched messages for assertions.
type recordingSender struct {
	mu       sync.Mutex
	messages []string
	phones   []string
	sent     chan struct{}
	err      error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan struct{}, 10)}
}

func (s *recordingSender) Send(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	s.phones = append(s.phones, phone)
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	s.sent <- struct{}{}
	return s.err
}

func (s *recordingSender) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-s.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SMS dispatch")
	}
}

func TestIssueStoresSixDigitCode(t *testing.T) {
	store := NewMemoryOTPStore()
	sender := newRecordingSender()
	issuer := NewOTPIssuer(store, sender)

	require.NoError(t, issuer.Issue(context.Background(), "9876543210"))

	entry, ok := store.entries["9876543210"]
	require.True(t, ok, "code should be stored under the phone number")
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), entry.Code)
	assert.Equal(t, OTPLifetime, entry.ExpiresAt.Sub(entry.IssuedAt))
}

func TestIssueDispatchesSMSWithCode(t *testing.T) {
	store := NewMemoryOTPStore()
	sender := newRecordingSender()
	issuer := NewOTPIssuer(store, sender)

	require.NoError(t, issuer.Issue(context.Background(), "9876543210"))
	sender.waitForSend(t)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "9876543210", sender.phones[0])
	assert.Contains(t, sender.messages[0], store.entries["9876543210"].Code)
	assert.Contains(t, sender.messages[0], "valid for 5 minutes")
}

func TestIssueSwallowsSendFailure(t *testing.T) {
	store := NewMemoryOTPStore()
	sender := newRecordingSender()
	sender.err = errors.New("gateway down")
	issuer := NewOTPIssuer(store, sender)

	// A failed SMS must not fail issuance; the code is already stored
	// and the client can retry delivery by requesting again.
	require.NoError(t, issuer.Issue(context.Background(), "9876543210"))
	sender.waitForSend(t)

	_, ok := store.entries["9876543210"]
	assert.True(t, ok)
}

func TestIssueReplacesPreviousCode(t *testing.T) {
	store := NewMemoryOTPStore()
	sender := newRecordingSender()
	issuer := NewOTPIssuer(store, sender)
	ctx := context.Background()

	require.NoError(t, issuer.Issue(ctx, "9876543210"))
	first := store.entries["9876543210"].Code

	require.NoError(t, issuer.Issue(ctx, "9876543210"))
	second := store.entries["9876543210"].Code

	if first != second {
		assert.ErrorIs(t, store.Consume(ctx, "9876543210", first), ErrOTPMismatch)
	}
	assert.NoError(t, store.Consume(ctx, "9876543210", second))
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, phone string, otp models.PendingOTP) error {
	return errors.New("store unavailable")
}

func (failingStore) Consume(ctx context.Context, phone, code string) error {
	return errors.New("store unavailable")
}

func TestIssueReportsStoreFailure(t *testing.T) {
	sender := newRecordingSender()
	issuer := NewOTPIssuer(failingStore{}, sender)

	err := issuer.Issue(context.Background(), "9876543210")
	require.Error(t, err)

	var infra *InfrastructureError
	assert.ErrorAs(t, err, &infra)

	// Nothing stored means nothing to send.
	select {
	case <-sender.sent:
		t.Fatal("no SMS should be dispatched when the store fails")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
