package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLoginRequiresCredentials(t *testing.T) {
	ac := NewAdminController(nil, nil)

	rec, resp := postJSON(t, ac.Login, `{"username":"root"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	require.Len(t, resp.Validations, 1)
	assert.Equal(t, "password", resp.Validations[0].Key)
	assert.Equal(t, "Password is required", resp.Validations[0].Message)
}
