package usecase

import (
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// RawProduct is a product exactly as the user typed it
type RawProduct struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit,omitempty"`
	TaxIncluded *bool  `json:"taxIncluded,omitempty"`
	TaxRate     string `json:"taxRate,omitempty"`
}

// ParseCandidate validates every field of raw and builds a candidate.
// Missing unit, tax rate and tax flag fall back to the settings defaults.
// All field errors are returned together so a form can flag each one.
func ParseCandidate(raw RawProduct, settings domain.SettingsProvider) (domain.ProductCandidate, []error) {
	var (
		candidate domain.ProductCandidate
		errs      []error
	)

	name, err := ValidateName(raw.Name)
	if err != nil {
		errs = append(errs, err)
	}
	candidate.Name = name

	price, err := ValidatePrice(raw.Price)
	if err != nil {
		errs = append(errs, err)
	}
	candidate.Price = price

	unit := settings.DefaultUnit()
	if strings.TrimSpace(raw.Unit) != "" {
		parsed, err := domain.ParseUnit(raw.Unit)
		if err != nil {
			errs = append(errs, err)
		}
		unit = parsed
	}
	candidate.Unit = unit

	// the integer rule for count units needs a known unit
	quantityUnit := unit
	if !unit.IsValid() {
		quantityUnit = settings.DefaultUnit()
	}
	quantity, err := ValidateQuantity(raw.Quantity, quantityUnit)
	if err != nil {
		errs = append(errs, err)
	}
	candidate.Quantity = quantity

	rate := settings.DefaultTaxRate()
	if strings.TrimSpace(raw.TaxRate) != "" {
		parsed, err := ValidateTaxRate(raw.TaxRate)
		if err != nil {
			errs = append(errs, err)
		}
		rate = parsed
	}
	candidate.TaxRate = rate

	candidate.TaxIncluded = true
	if raw.TaxIncluded != nil {
		candidate.TaxIncluded = *raw.TaxIncluded
	}

	if len(errs) > 0 {
		return domain.ProductCandidate{}, errs
	}
	return candidate, nil
}

// ParsePair parses both sides of a comparison and reports failures the same
// way the engine does
func ParsePair(a, b RawProduct, settings domain.SettingsProvider) (domain.ProductCandidate, domain.ProductCandidate, error) {
	candA, errsA := ParseCandidate(a, settings)
	candB, errsB := ParseCandidate(b, settings)

	switch {
	case len(errsA) > 0 && len(errsB) > 0:
		return candA, candB, &domain.ComparisonError{Kind: domain.ErrBothProductsInvalid, ErrorsA: errsA, ErrorsB: errsB}
	case len(errsA) > 0:
		return candA, candB, &domain.ComparisonError{Kind: domain.ErrProductAInvalid, ErrorsA: errsA}
	case len(errsB) > 0:
		return candA, candB, &domain.ComparisonError{Kind: domain.ErrProductBInvalid, ErrorsB: errsB}
	}
	return candA, candB, nil
}
