package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
)

type gateFixture struct {
	pharmacy *PharmacyController
	delivery *DeliveryController
	profiles *memProfiles
	store    *services.MemoryOTPStore
}

func newGateFixture() *gateFixture {
	store := services.NewMemoryOTPStore()
	issuer := services.NewOTPIssuer(store, silentSender{})
	profiles := &memProfiles{docs: make(map[string]bson.M)}
	counters := &memCounters{seqs: make(map[string]int)}
	verifier := services.NewOnboardingVerifier(store, profiles, counters)
	return &gateFixture{
		pharmacy: NewPharmacyController(nil, profiles, issuer, verifier, nil, nil),
		delivery: NewDeliveryController(nil, profiles, issuer, verifier, counters, nil, nil),
		profiles: profiles,
		store:    store,
	}
}

func (f *gateFixture) seed(collection, phone string, approval int) {
	f.profiles.docs[collection+"/"+phone] = bson.M{
		"_id":         1,
		"phoneNumber": phone,
		"isApproved":  approval,
	}
}

func TestPharmacyLoginPendingGetsNoOTP(t *testing.T) {
	f := newGateFixture()
	f.seed("Pharmacy", "9876543210", models.ApprovalPending)

	rec, resp := postJSON(t, f.pharmacy.Login, `{"phoneNumber":"9876543210"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Your Account is not Approved yet.", resp.Message)

	_, pending := f.store.Peek("9876543210")
	assert.False(t, pending, "no code should be issued for a pending account")
}

func TestPharmacyLoginDeclinedGetsNoOTP(t *testing.T) {
	f := newGateFixture()
	f.seed("Pharmacy", "9876543210", models.ApprovalDeclined)

	rec, resp := postJSON(t, f.pharmacy.Login, `{"phoneNumber":"9876543210"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Your Profile has been Declined", resp.Message)

	_, pending := f.store.Peek("9876543210")
	assert.False(t, pending)
}

func TestPharmacyLoginUnknownPhone(t *testing.T) {
	f := newGateFixture()

	rec, resp := postJSON(t, f.pharmacy.Login, `{"phoneNumber":"9876543210"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Phone Number", resp.Message)

	_, pending := f.store.Peek("9876543210")
	assert.False(t, pending)
}

func TestPharmacyLoginApprovedIssuesOTP(t *testing.T) {
	f := newGateFixture()
	f.seed("Pharmacy", "9876543210", models.ApprovalApproved)

	rec, resp := postJSON(t, f.pharmacy.Login, `{"phoneNumber":"9876543210"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to your phone number", resp.Message)

	_, pending := f.store.Peek("9876543210")
	assert.True(t, pending, "approved account should get a code")
}

func TestDeliveryLoginPendingGetsNoOTP(t *testing.T) {
	f := newGateFixture()
	f.seed("DeliveryPartner", "9123456780", models.ApprovalPending)

	rec, resp := postJSON(t, f.delivery.Login, `{"phoneNumber":"9123456780"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Your Account is not Approved yet.", resp.Message)

	_, pending := f.store.Peek("9123456780")
	assert.False(t, pending)
}

func TestDeliveryLoginApprovedIssuesOTP(t *testing.T) {
	f := newGateFixture()
	f.seed("DeliveryPartner", "9123456780", models.ApprovalApproved)

	rec, resp := postJSON(t, f.delivery.Login, `{"phoneNumber":"9123456780"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to your phone number", resp.Message)

	_, pending := f.store.Peek("9123456780")
	assert.True(t, pending)
}
