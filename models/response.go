// models/response.go
package models

// FieldError describes a single failed validation, keyed by the request field.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Response is the envelope returned by every handler.
type Response struct {
	Status      int          `json:"status"`
	Message     string       `json:"message"`
	Data        interface{}  `json:"data,omitempty"`
	Validations []FieldError `json:"validations,omitempty"`
}
