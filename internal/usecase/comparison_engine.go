package usecase

import (
	"fmt"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationPrecision is the number of fractional digits kept after every
// monetary multiplication or division. Rounding is half-to-even.
const CalculationPrecision int32 = 2

// TieThreshold is the smallest unit-price difference that still picks a winner
var TieThreshold = decimal.RequireFromString("0.01")

// maxMagnitude bounds intermediate values; validated input never reaches it
var maxMagnitude = decimal.New(1, 15)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Trace operation names
const (
	stepValidate       = "validate"
	stepUnitCheck      = "unit_compatibility"
	stepTaxNormalize   = "tax_normalization"
	stepBaseConvert    = "base_unit_conversion"
	stepUnitPrice      = "unit_price"
	stepDisplayUnit    = "display_unit"
	stepWinner         = "winner_decision"
	stepRecommendation = "recommendation"
)

// EngineConfig holds configuration for the comparison engine
type EngineConfig struct {
	EnableTrace bool
}

// ComparisonEngine compares two products by tax-normalized unit price.
// It holds no mutable state and is safe for concurrent use.
type ComparisonEngine struct {
	enableTrace bool
	now         func() time.Time
}

// NewComparisonEngine creates a new comparison engine
func NewComparisonEngine(config EngineConfig) *ComparisonEngine {
	return &ComparisonEngine{
		enableTrace: config.EnableTrace,
		now:         time.Now,
	}
}

// divRoundCalc divides num by den and rounds half-to-even at the
// calculation precision using the exact remainder. den must not be zero.
func divRoundCalc(num, den decimal.Decimal) decimal.Decimal {
	negative := num.Sign()*den.Sign() < 0
	q, r := num.Abs().QuoRem(den.Abs(), CalculationPrecision)

	ulp := decimal.New(1, -CalculationPrecision)
	switch r.Mul(two).Cmp(den.Abs().Mul(ulp)) {
	case 1:
		q = q.Add(ulp)
	case 0:
		if !q.Shift(CalculationPrecision).Mod(two).IsZero() {
			q = q.Add(ulp)
		}
	}

	if negative {
		return q.Neg()
	}
	return q
}

// roundCalc applies the calculation precision
func roundCalc(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CalculationPrecision)
}

// side carries the per-product intermediate values
type side struct {
	label            string
	candidate        domain.ProductCandidate
	finalPrice       decimal.Decimal
	taxAdjustment    decimal.Decimal
	baseQuantity     decimal.Decimal
	conversionFactor decimal.Decimal
	unitPrice        decimal.Decimal
	displayUnitPrice decimal.Decimal
}

// Compare runs the full comparison pipeline. Failures are returned as
// *domain.ComparisonError or *domain.CalculationError.
func (e *ComparisonEngine) Compare(a, b domain.ProductCandidate) (*domain.ComparisonResult, error) {
	tr := newTracer(e.enableTrace)

	// Step 1: validate both candidates independently
	errsA, errsB := a.Validate(), b.Validate()
	tr.record(stepValidate,
		fmt.Sprintf("A=%q B=%q", a.Name, b.Name),
		fmt.Sprintf("errorsA=%d errorsB=%d", len(errsA), len(errsB)))
	switch {
	case len(errsA) > 0 && len(errsB) > 0:
		return nil, &domain.ComparisonError{Kind: domain.ErrBothProductsInvalid, ErrorsA: errsA, ErrorsB: errsB}
	case len(errsA) > 0:
		return nil, &domain.ComparisonError{Kind: domain.ErrProductAInvalid, ErrorsA: errsA}
	case len(errsB) > 0:
		return nil, &domain.ComparisonError{Kind: domain.ErrProductBInvalid, ErrorsB: errsB}
	}

	// Step 2: unit compatibility
	compatible := domain.IsComparable(a.Unit, b.Unit)
	tr.record(stepUnitCheck,
		fmt.Sprintf("%s(%s) %s(%s)", a.Unit, a.Unit.Category(), b.Unit, b.Unit.Category()),
		fmt.Sprintf("comparable=%v", compatible))
	if !compatible {
		return nil, &domain.ComparisonError{Kind: domain.ErrIncompatibleUnits, UnitA: a.Unit, UnitB: b.Unit}
	}

	sa := &side{label: "A", candidate: a}
	sb := &side{label: "B", candidate: b}

	// Step 3: tax normalization
	for _, s := range []*side{sa, sb} {
		if err := normalizeTax(s); err != nil {
			return nil, err
		}
	}
	tr.record(stepTaxNormalize,
		fmt.Sprintf("priceA=%s priceB=%s", a.Price, b.Price),
		fmt.Sprintf("finalA=%s finalB=%s", sa.finalPrice, sb.finalPrice))

	// Step 4: base-unit conversion
	for _, s := range []*side{sa, sb} {
		s.conversionFactor = s.candidate.Unit.BaseConversionFactor()
		s.baseQuantity = domain.ConvertToBase(s.candidate.Quantity, s.candidate.Unit)
	}
	tr.record(stepBaseConvert,
		fmt.Sprintf("%s%s %s%s", a.Quantity, a.Unit, b.Quantity, b.Unit),
		fmt.Sprintf("baseA=%s baseB=%s", sa.baseQuantity, sb.baseQuantity))

	// Step 5: unit price per base unit
	for _, s := range []*side{sa, sb} {
		price, err := unitPrice(stepUnitPrice, s.label, s.finalPrice, s.baseQuantity)
		if err != nil {
			return nil, err
		}
		s.unitPrice = price
	}
	tr.record(stepUnitPrice,
		fmt.Sprintf("finalA=%s/%s finalB=%s/%s", sa.finalPrice, sa.baseQuantity, sb.finalPrice, sb.baseQuantity),
		fmt.Sprintf("unitPriceA=%s unitPriceB=%s", sa.unitPrice, sb.unitPrice))

	// Step 6: display-unit prices, presentation only
	displayUnit := domain.LargerUnit(a.Unit, b.Unit)
	for _, s := range []*side{sa, sb} {
		displayQuantity := domain.Convert(s.candidate.Quantity, s.candidate.Unit, displayUnit)
		price, err := unitPrice(stepDisplayUnit, s.label, s.finalPrice, displayQuantity)
		if err != nil {
			return nil, err
		}
		s.displayUnitPrice = price
	}
	tr.record(stepDisplayUnit,
		fmt.Sprintf("%s vs %s", a.Unit, b.Unit),
		fmt.Sprintf("unit=%s priceA=%s priceB=%s", displayUnit, sa.displayUnitPrice, sb.displayUnitPrice))

	// Step 7: winner decision on base-unit prices
	winner, details := decideWinner(sa, sb)
	details.DisplayUnit = displayUnit
	tr.record(stepWinner,
		fmt.Sprintf("unitPriceA=%s unitPriceB=%s threshold=%s", sa.unitPrice, sb.unitPrice, TieThreshold),
		fmt.Sprintf("winner=%s diff=%s pct=%s", winner, details.PriceDifference, details.PercentageDifference))

	// Step 8: recommendations
	recommendations := GenerateRecommendations(a, b, winner, details)
	tr.record(stepRecommendation,
		fmt.Sprintf("winner=%s pct=%s", winner, details.PercentageDifference),
		fmt.Sprintf("count=%d", len(recommendations)))

	return &domain.ComparisonResult{
		ProductA:        a,
		ProductB:        b,
		Winner:          winner,
		Details:         details,
		Recommendations: recommendations,
		Trace:           tr.steps,
		ComparedAt:      e.now(),
	}, nil
}

// normalizeTax computes the tax-inclusive price of one side
func normalizeTax(s *side) error {
	price := s.candidate.Price
	final := roundCalc(price)
	if !s.candidate.TaxIncluded {
		final = roundCalc(price.Mul(one.Add(s.candidate.TaxRate)))
	}

	if final.IsZero() {
		return &domain.CalculationError{
			Kind:   domain.ErrPrecisionLoss,
			Step:   stepTaxNormalize,
			Detail: fmt.Sprintf("price %s of product %s rounds to zero", s.candidate.Price, s.label),
		}
	}
	if final.GreaterThan(maxMagnitude) {
		return &domain.CalculationError{
			Kind:   domain.ErrOverflow,
			Step:   stepTaxNormalize,
			Detail: fmt.Sprintf("final price of product %s is %s", s.label, final),
		}
	}

	s.finalPrice = final
	s.taxAdjustment = final.Sub(price)
	return nil
}

// unitPrice divides a price by a quantity with the calculation rounding policy
func unitPrice(step, label string, price, quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsZero() {
		return decimal.Zero, &domain.CalculationError{
			Kind:   domain.ErrDivisionByZero,
			Step:   step,
			Detail: fmt.Sprintf("quantity of product %s is zero", label),
		}
	}

	result := divRoundCalc(price, quantity)
	if result.IsNegative() {
		return decimal.Zero, &domain.CalculationError{
			Kind:   domain.ErrInvalidResult,
			Step:   step,
			Detail: fmt.Sprintf("unit price of product %s is %s", label, result),
		}
	}
	if result.GreaterThan(maxMagnitude) {
		return decimal.Zero, &domain.CalculationError{
			Kind:   domain.ErrOverflow,
			Step:   step,
			Detail: fmt.Sprintf("unit price of product %s is %s", label, result),
		}
	}
	return result, nil
}

// decideWinner picks the cheaper side by base-unit price
func decideWinner(sa, sb *side) (domain.Winner, domain.ComparisonDetails) {
	details := domain.ComparisonDetails{
		UnitPriceA:           sa.unitPrice,
		UnitPriceB:           sb.unitPrice,
		PriceDifference:      decimal.Zero,
		PercentageDifference: decimal.Zero,
		FinalPriceA:          sa.finalPrice,
		FinalPriceB:          sb.finalPrice,
		TaxAdjustmentA:       sa.taxAdjustment,
		TaxAdjustmentB:       sb.taxAdjustment,
		BaseQuantityA:        sa.baseQuantity,
		BaseQuantityB:        sb.baseQuantity,
		ConversionFactorA:    sa.conversionFactor,
		ConversionFactorB:    sb.conversionFactor,
		DisplayUnitPriceA:    sa.displayUnitPrice,
		DisplayUnitPriceB:    sb.displayUnitPrice,
		TieThreshold:         TieThreshold,
	}

	diff := sa.unitPrice.Sub(sb.unitPrice).Abs()
	if diff.LessThan(TieThreshold) {
		details.IsTie = true
		return domain.WinnerTie, details
	}

	winner := domain.WinnerProductA
	higher := sb.unitPrice
	if sb.unitPrice.LessThan(sa.unitPrice) {
		winner = domain.WinnerProductB
		higher = sa.unitPrice
	}

	details.PriceDifference = roundCalc(diff)
	details.PercentageDifference = divRoundCalc(diff.Mul(hundred), higher)
	return winner, details
}

// tracer records pipeline steps when enabled
type tracer struct {
	enabled bool
	last    time.Time
	steps   []domain.CalculationStep
}

func newTracer(enabled bool) *tracer {
	return &tracer{enabled: enabled, last: time.Now()}
}

func (t *tracer) record(operation, input, output string) {
	if !t.enabled {
		return
	}
	now := time.Now()
	t.steps = append(t.steps, domain.CalculationStep{
		Number:    len(t.steps) + 1,
		Operation: operation,
		Input:     input,
		Output:    output,
		Duration:  now.Sub(t.last),
	})
	t.last = now
}
