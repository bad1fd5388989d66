package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Field validation error kinds
var (
	// ErrEmpty is returned when a required field is blank after trimming
	ErrEmpty = errors.New("value is empty")

	// ErrTooLong is returned when a text field exceeds its maximum length
	ErrTooLong = errors.New("value is too long")

	// ErrInvalidFormat is returned when a numeric field cannot be parsed
	ErrInvalidFormat = errors.New("invalid number format")

	// ErrNegativeOrZero is returned when a numeric field must be positive
	ErrNegativeOrZero = errors.New("value must be greater than zero")

	// ErrTooLarge is returned when a numeric field exceeds its ceiling
	ErrTooLarge = errors.New("value is too large")

	// ErrMustBeInteger is returned when a count quantity has a fractional part
	ErrMustBeInteger = errors.New("value must be a whole number")

	// ErrOutOfRange is returned when a tax rate falls outside [0, 1]
	ErrOutOfRange = errors.New("value is out of range")

	// ErrUnknownUnit is returned when a unit code is not one of the supported units
	ErrUnknownUnit = errors.New("unknown unit")
)

// Comparison-level error kinds
var (
	// ErrBothProductsInvalid is returned when neither candidate passes validation
	ErrBothProductsInvalid = errors.New("both products are invalid")

	// ErrProductAInvalid is returned when only the first candidate fails validation
	ErrProductAInvalid = errors.New("product A is invalid")

	// ErrProductBInvalid is returned when only the second candidate fails validation
	ErrProductBInvalid = errors.New("product B is invalid")

	// ErrIncompatibleUnits is returned when the candidates' units belong to different categories
	ErrIncompatibleUnits = errors.New("units are not comparable")
)

// Calculation error kinds
var (
	// ErrDivisionByZero is returned when a unit price would be divided by a zero quantity
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOverflow is returned when an intermediate value exceeds the supported magnitude
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrInvalidResult is returned when a calculation produces a value that cannot be a price
	ErrInvalidResult = errors.New("invalid calculation result")

	// ErrPrecisionLoss is returned when rounding erases a non-zero amount
	ErrPrecisionLoss = errors.New("precision loss")
)

// Persistence errors
var (
	// ErrRecordNotFound is returned when a purchase record does not exist
	ErrRecordNotFound = errors.New("purchase record not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)

// Field names carried by FieldError
const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
	FieldUnit     = "unit"
	FieldTaxRate  = "taxRate"
)

// FieldError describes why a single input field was rejected.
// Kind is one of the field validation sentinels above.
type FieldError struct {
	Field string
	Kind  error
	Value string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %v (got %q)", e.Field, e.Kind, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// ComparisonError reports that a comparison could not be started.
// ErrorsA and ErrorsB hold the field errors of each offending side.
type ComparisonError struct {
	Kind    error
	ErrorsA []error
	ErrorsB []error
	UnitA   Unit
	UnitB   Unit
}

func (e *ComparisonError) Error() string {
	switch e.Kind {
	case ErrIncompatibleUnits:
		return fmt.Sprintf("%v: %s (%s) vs %s (%s)",
			e.Kind, e.UnitA, e.UnitA.Category(), e.UnitB, e.UnitB.Category())
	case ErrBothProductsInvalid:
		return fmt.Sprintf("%v: A: %s; B: %s", e.Kind, joinErrors(e.ErrorsA), joinErrors(e.ErrorsB))
	case ErrProductAInvalid:
		return fmt.Sprintf("%v: %s", e.Kind, joinErrors(e.ErrorsA))
	case ErrProductBInvalid:
		return fmt.Sprintf("%v: %s", e.Kind, joinErrors(e.ErrorsB))
	}
	return e.Kind.Error()
}

func (e *ComparisonError) Unwrap() error {
	return e.Kind
}

// FieldErrors returns every field error carried by the failure, side A first
func (e *ComparisonError) FieldErrors() []error {
	out := make([]error, 0, len(e.ErrorsA)+len(e.ErrorsB))
	out = append(out, e.ErrorsA...)
	return append(out, e.ErrorsB...)
}

// CalculationError reports an arithmetic failure inside the engine pipeline
type CalculationError struct {
	Kind   error
	Step   string
	Detail string
}

func (e *CalculationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Step, e.Kind, e.Detail)
}

func (e *CalculationError) Unwrap() error {
	return e.Kind
}

func joinErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, ", ")
}

// ErrorKindLabel maps an error to a stable machine-readable label
func ErrorKindLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrBothProductsInvalid):
		return "both_products_invalid"
	case errors.Is(err, ErrProductAInvalid):
		return "product_a_invalid"
	case errors.Is(err, ErrProductBInvalid):
		return "product_b_invalid"
	case errors.Is(err, ErrIncompatibleUnits):
		return "incompatible_units"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrInvalidResult):
		return "invalid_result"
	case errors.Is(err, ErrPrecisionLoss):
		return "precision_loss"
	case errors.Is(err, ErrEmpty):
		return "empty"
	case errors.Is(err, ErrTooLong):
		return "too_long"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrNegativeOrZero):
		return "negative_or_zero"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrMustBeInteger):
		return "must_be_integer"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	}
	return "other"
}

// RecoverySuggestion returns a short hint telling the user how to fix the input
func RecoverySuggestion(err error) string {
	switch {
	case errors.Is(err, ErrIncompatibleUnits):
		return "Choose units of the same kind (weight, volume or count) for both products."
	case errors.Is(err, ErrBothProductsInvalid),
		errors.Is(err, ErrProductAInvalid),
		errors.Is(err, ErrProductBInvalid):
		return "Correct the highlighted fields and compare again."
	case errors.Is(err, ErrEmpty):
		return "Fill in this field."
	case errors.Is(err, ErrTooLong):
		return "Use a shorter name."
	case errors.Is(err, ErrInvalidFormat):
		return "Enter a number, for example 198 or 1.5."
	case errors.Is(err, ErrNegativeOrZero):
		return "Enter a value greater than zero."
	case errors.Is(err, ErrTooLarge):
		return "Enter a smaller value."
	case errors.Is(err, ErrMustBeInteger):
		return "Enter a whole number for count units."
	case errors.Is(err, ErrOutOfRange):
		return "Enter a tax rate between 0 and 1."
	case errors.Is(err, ErrUnknownUnit):
		return "Pick one of the supported units."
	case errors.Is(err, ErrDivisionByZero),
		errors.Is(err, ErrOverflow),
		errors.Is(err, ErrInvalidResult),
		errors.Is(err, ErrPrecisionLoss):
		return "Check the price and quantity values and try again."
	case errors.Is(err, ErrRecordNotFound):
		return "The purchase record no longer exists."
	}
	return "Please try again."
}
