package settings

import (
	"fmt"

	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Provider serves static defaults loaded from configuration
type Provider struct {
	taxRate decimal.Decimal
	unit    domain.Unit
}

// NewProvider validates the configured defaults. taxRate is a fraction in
// [0, 1]; unit is a unit code such as "g".
func NewProvider(taxRate float64, unit string) (*Provider, error) {
	rate := decimal.NewFromFloat(taxRate)
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("default tax rate must be between 0 and 1, got %s", rate)
	}

	u, err := domain.ParseUnit(unit)
	if err != nil {
		return nil, fmt.Errorf("default unit: %w", err)
	}

	return &Provider{taxRate: rate, unit: u}, nil
}

// DefaultTaxRate returns the tax rate used when a request omits one
func (p *Provider) DefaultTaxRate() decimal.Decimal {
	return p.taxRate
}

// DefaultUnit returns the unit used when a request omits one
func (p *Provider) DefaultUnit() domain.Unit {
	return p.unit
}
