package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immuneplus/immuneplus_backend/models"
)

func postForm(t *testing.T, handler echo.HandlerFunc, form string) (*httptest.ResponseRecorder, models.Response) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestPosterCreateRequiresName(t *testing.T) {
	pc := NewPosterController(nil, nil, nil)

	rec, resp := postForm(t, pc.Create, "description=summer+sale")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Poster name is required", resp.Message)
}

func TestPosterDeleteRequiresID(t *testing.T) {
	pc := NewPosterController(nil, nil, nil)

	rec, resp := postJSON(t, pc.Delete, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Poster ID is required", resp.Message)
}
