package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
)

// silentSender discards messages; login tests read the code from the
// store instead of from SMS.
type silentSender struct{}

func (silentSender) Send(ctx context.Context, phone, message string) error { return nil }

type memProfiles struct {
	mu   sync.Mutex
	docs map[string]bson.M
}

func (m *memProfiles) FindByPhone(ctx context.Context, collection, phone string) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection+"/"+phone]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (m *memProfiles) Insert(ctx context.Context, collection string, doc bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collection + "/" + doc["phoneNumber"].(string)
	if _, exists := m.docs[key]; exists {
		return errors.New("duplicate key")
	}
	m.docs[key] = doc
	return nil
}

type memCounters struct {
	mu   sync.Mutex
	seqs map[string]int
}

func (m *memCounters) Next(ctx context.Context, counterID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[counterID]++
	return m.seqs[counterID], nil
}

type loginFixture struct {
	controller *UserController
	store      *services.MemoryOTPStore
}

func newLoginFixture() *loginFixture {
	store := services.NewMemoryOTPStore()
	issuer := services.NewOTPIssuer(store, silentSender{})
	verifier := services.NewOnboardingVerifier(store,
		&memProfiles{docs: make(map[string]bson.M)},
		&memCounters{seqs: make(map[string]int)})
	return &loginFixture{
		controller: NewUserController(nil, issuer, verifier),
		store:      store,
	}
}

// testValidator mirrors the validator bridge the server installs.
type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func postJSON(t *testing.T, handler echo.HandlerFunc, body string) (*httptest.ResponseRecorder, models.Response) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestLoginRequestsOTPWhenNoneSubmitted(t *testing.T) {
	f := newLoginFixture()

	rec, resp := postJSON(t, f.controller.Login, `{"phoneNumber":"9876543210"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to your phone number", resp.Message)
}

func TestLoginRejectsBadPhone(t *testing.T) {
	f := newLoginFixture()

	rec, resp := postJSON(t, f.controller.Login, `{"phoneNumber":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	require.Len(t, resp.Validations, 1)
	assert.Equal(t, "phoneNumber", resp.Validations[0].Key)
	assert.Equal(t, "Phone Number should have 10 digits.", resp.Validations[0].Message)
}

func TestLoginRejectsMissingPhone(t *testing.T) {
	f := newLoginFixture()

	rec, resp := postJSON(t, f.controller.Login, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, resp.Validations, 1)
	assert.Equal(t, "phoneNumber", resp.Validations[0].Key)
	assert.Equal(t, "Phone Number is required.", resp.Validations[0].Message)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	f := newLoginFixture()

	rec, resp := postJSON(t, f.controller.Register,
		`{"phoneNumber":"9876543210","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, resp.Validations, 1)
	assert.Equal(t, "email", resp.Validations[0].Key)
	assert.Equal(t, "Email is not valid", resp.Validations[0].Message)
}

func TestLoginVerifyCreatesProfile(t *testing.T) {
	f := newLoginFixture()

	rec, _ := postJSON(t, f.controller.Login, `{"phoneNumber":"9876543210"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	code := storedCode(t, f.store, "9876543210")

	rec, resp := postJSON(t, f.controller.Login,
		`{"phoneNumber":"9876543210","otp":"`+code+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful!", resp.Message)

	profile, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), profile["_id"])
	assert.Equal(t, "9876543210", profile["phoneNumber"])
}

func TestLoginVerifyRejectsWrongCode(t *testing.T) {
	f := newLoginFixture()

	rec, _ := postJSON(t, f.controller.Login, `{"phoneNumber":"9876543210"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := postJSON(t, f.controller.Login,
		`{"phoneNumber":"9876543210","otp":"000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid OTP", resp.Message)
}

func TestLoginVerifyRejectsUnrequestedOTP(t *testing.T) {
	f := newLoginFixture()

	rec, resp := postJSON(t, f.controller.Login,
		`{"phoneNumber":"9876543210","otp":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OTP expired or invalid", resp.Message)
}

func TestLoginCodeIsSingleUse(t *testing.T) {
	f := newLoginFixture()

	rec, _ := postJSON(t, f.controller.Login, `{"phoneNumber":"9876543210"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	code := storedCode(t, f.store, "9876543210")

	rec, _ = postJSON(t, f.controller.Login,
		`{"phoneNumber":"9876543210","otp":"`+code+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := postJSON(t, f.controller.Login,
		`{"phoneNumber":"9876543210","otp":"`+code+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OTP expired or invalid", resp.Message)
}

// storedCode reads the pending code straight out of the memory store,
// standing in for the SMS the real flow would deliver.
func storedCode(t *testing.T, store *services.MemoryOTPStore, phone string) string {
	t.Helper()
	code, ok := store.Peek(phone)
	require.True(t, ok, "expected a pending code for %s", phone)
	return code
}
