package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input ceilings shared by the field validators and candidate validation
const (
	MaxNameLength = 100
)

var (
	MaxPrice    = decimal.RequireFromString("999999.99")
	MaxQuantity = decimal.RequireFromString("99999.99")
)

// ProductCandidate is one side of a comparison. It is passed by value and
// never modified by the engine.
type ProductCandidate struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        Unit            `json:"unit"`
	TaxIncluded bool            `json:"taxIncluded"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// Validate checks the candidate against the engine-level rules and returns
// every violation found. A nil slice means the candidate is valid.
func (p ProductCandidate) Validate() []error {
	var errs []error

	name := strings.TrimSpace(p.Name)
	switch {
	case name == "":
		errs = append(errs, &FieldError{Field: FieldName, Kind: ErrEmpty})
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs = append(errs, &FieldError{Field: FieldName, Kind: ErrTooLong, Value: name})
	}

	switch {
	case !p.Price.IsPositive():
		errs = append(errs, &FieldError{Field: FieldPrice, Kind: ErrNegativeOrZero, Value: p.Price.String()})
	case p.Price.GreaterThan(MaxPrice):
		errs = append(errs, &FieldError{Field: FieldPrice, Kind: ErrTooLarge, Value: p.Price.String()})
	}

	unitValid := p.Unit.IsValid()
	if !unitValid {
		errs = append(errs, &FieldError{Field: FieldUnit, Kind: ErrUnknownUnit, Value: string(p.Unit)})
	}

	switch {
	case !p.Quantity.IsPositive():
		errs = append(errs, &FieldError{Field: FieldQuantity, Kind: ErrNegativeOrZero, Value: p.Quantity.String()})
	case p.Quantity.GreaterThan(MaxQuantity):
		errs = append(errs, &FieldError{Field: FieldQuantity, Kind: ErrTooLarge, Value: p.Quantity.String()})
	case unitValid && p.Unit.Category() == CategoryCount && !p.Quantity.IsInteger():
		errs = append(errs, &FieldError{Field: FieldQuantity, Kind: ErrMustBeInteger, Value: p.Quantity.String()})
	}

	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, &FieldError{Field: FieldTaxRate, Kind: ErrOutOfRange, Value: p.TaxRate.String()})
	}

	return errs
}

// PurchaseRecord is a product bought in the past and kept for later comparisons
type PurchaseRecord struct {
	ID          uuid.UUID       `json:"id" msgpack:"id"`
	Name        string          `json:"name" msgpack:"name"`
	Price       decimal.Decimal `json:"price" msgpack:"price"`
	Quantity    decimal.Decimal `json:"quantity" msgpack:"quantity"`
	Unit        Unit            `json:"unit" msgpack:"unit"`
	TaxIncluded bool            `json:"taxIncluded" msgpack:"tax_included"`
	TaxRate     decimal.Decimal `json:"taxRate" msgpack:"tax_rate"`
	Store       string          `json:"store,omitempty" msgpack:"store"`
	PurchasedAt time.Time       `json:"purchasedAt" msgpack:"purchased_at"`
	CreatedAt   time.Time       `json:"createdAt" msgpack:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" msgpack:"updated_at"`
}

// Candidate builds a comparison candidate from the record
func (r *PurchaseRecord) Candidate() ProductCandidate {
	return ProductCandidate{
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		TaxIncluded: r.TaxIncluded,
		TaxRate:     r.TaxRate,
	}
}
