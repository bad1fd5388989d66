package http

import (
	"errors"

	"github.com/pricelens/backend/internal/domain"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error      string               `json:"error"`
	Kind       string               `json:"kind"`
	Field      string               `json:"field,omitempty"`
	Suggestion string               `json:"suggestion,omitempty"`
	Details    []FieldErrorResponse `json:"details,omitempty"`
}

// FieldErrorResponse describes one rejected field.
// Product is "a" or "b" for two-product requests and empty otherwise.
type FieldErrorResponse struct {
	Product    string `json:"product,omitempty"`
	Field      string `json:"field"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

func newErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error:      err.Error(),
		Kind:       domain.ErrorKindLabel(err),
		Suggestion: domain.RecoverySuggestion(err),
	}

	var (
		cmpErr   *domain.ComparisonError
		fieldErr *domain.FieldError
	)
	switch {
	case errors.As(err, &cmpErr):
		resp.Details = append(fieldErrors("a", cmpErr.ErrorsA), fieldErrors("b", cmpErr.ErrorsB)...)
	case errors.As(err, &fieldErr):
		resp.Field = fieldErr.Field
	}
	return resp
}

func fieldErrors(product string, errs []error) []FieldErrorResponse {
	out := make([]FieldErrorResponse, 0, len(errs))
	for _, err := range errs {
		detail := FieldErrorResponse{
			Product:    product,
			Kind:       domain.ErrorKindLabel(err),
			Message:    err.Error(),
			Suggestion: domain.RecoverySuggestion(err),
		}
		var fieldErr *domain.FieldError
		if errors.As(err, &fieldErr) {
			detail.Field = fieldErr.Field
		}
		out = append(out, detail)
	}
	return out
}
