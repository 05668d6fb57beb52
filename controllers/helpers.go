package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/immuneplus/immuneplus_backend/models"
	"github.com/immuneplus/immuneplus_backend/services"
)

// respondServiceError maps the service error taxonomy to transport
// codes: business rejections are 400 with their user-facing message,
// anything else is a generic 500 with the cause kept server-side.
func respondServiceError(c echo.Context, err error) error {
	if be, ok := services.AsBusiness(err); ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: be.Message,
		})
	}
	c.Logger().Errorf("service error: %v", err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal Server Error",
	})
}

// requestValidations runs the registered struct validator over a bound
// request and converts failures into the field-keyed validations list.
func requestValidations(c echo.Context, req interface{}) []models.FieldError {
	err := c.Validate(req)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []models.FieldError{{Key: "body", Message: "Invalid request body"}}
	}

	out := make([]models.FieldError, 0, len(ves))
	for _, ve := range ves {
		out = append(out, models.FieldError{
			Key:     fieldKey(ve.Field()),
			Message: fieldMessage(ve),
		})
	}
	return out
}

// fieldKey turns a struct field name into the json-style key clients
// expect in the validations list.
func fieldKey(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// fieldMessage keeps the exact user-facing strings the mobile apps
// already match on.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "PhoneNumber":
		if fe.Tag() == "required" {
			return "Phone Number is required."
		}
		return "Phone Number should have 10 digits."
	case "Email":
		return "Email is not valid"
	}
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	return fe.Field() + " is not valid"
}

// formIntID reads a required integer id from a multipart form field.
func formIntID(c echo.Context, name string) (int, bool) {
	raw := c.FormValue(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// queryIntID reads a required integer id from the query string.
func queryIntID(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
