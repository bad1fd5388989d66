package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Winner identifies the cheaper side of a comparison
type Winner string

const (
	WinnerProductA Winner = "productA"
	WinnerProductB Winner = "productB"
	WinnerTie      Winner = "tie"
)

// Mirror swaps productA and productB; a tie stays a tie
func (w Winner) Mirror() Winner {
	switch w {
	case WinnerProductA:
		return WinnerProductB
	case WinnerProductB:
		return WinnerProductA
	}
	return w
}

// ComparisonDetails holds every derived number of a comparison.
// Unit prices are per base unit; DisplayUnitPrice* are per DisplayUnit.
type ComparisonDetails struct {
	UnitPriceA           decimal.Decimal `json:"unitPriceA"`
	UnitPriceB           decimal.Decimal `json:"unitPriceB"`
	PriceDifference      decimal.Decimal `json:"priceDifference"`
	PercentageDifference decimal.Decimal `json:"percentageDifference"`
	FinalPriceA          decimal.Decimal `json:"finalPriceA"`
	FinalPriceB          decimal.Decimal `json:"finalPriceB"`
	TaxAdjustmentA       decimal.Decimal `json:"taxAdjustmentA"`
	TaxAdjustmentB       decimal.Decimal `json:"taxAdjustmentB"`
	BaseQuantityA        decimal.Decimal `json:"baseQuantityA"`
	BaseQuantityB        decimal.Decimal `json:"baseQuantityB"`
	ConversionFactorA    decimal.Decimal `json:"conversionFactorA"`
	ConversionFactorB    decimal.Decimal `json:"conversionFactorB"`
	DisplayUnit          Unit            `json:"displayUnit"`
	DisplayUnitPriceA    decimal.Decimal `json:"displayUnitPriceA"`
	DisplayUnitPriceB    decimal.Decimal `json:"displayUnitPriceB"`
	TieThreshold         decimal.Decimal `json:"tieThreshold"`
	IsTie                bool            `json:"isTie"`
}

// CalculationStep is one traced stage of the engine pipeline
type CalculationStep struct {
	Number    int           `json:"step"`
	Operation string        `json:"operation"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Duration  time.Duration `json:"durationNs"`
}

// ComparisonResult is the outcome of one successful comparison
type ComparisonResult struct {
	ProductA        ProductCandidate  `json:"productA"`
	ProductB        ProductCandidate  `json:"productB"`
	Winner          Winner            `json:"winner"`
	Details         ComparisonDetails `json:"details"`
	Recommendations []string          `json:"recommendations"`
	Trace           []CalculationStep `json:"trace,omitempty"`
	ComparedAt      time.Time         `json:"comparedAt"`
}

// WinnerName returns the winning product's name, or "" for a tie
func (r *ComparisonResult) WinnerName() string {
	switch r.Winner {
	case WinnerProductA:
		return r.ProductA.Name
	case WinnerProductB:
		return r.ProductB.Name
	}
	return ""
}

// FormatDecimal renders d with exactly digits fractional digits
func FormatDecimal(d decimal.Decimal, digits int32) string {
	return d.StringFixedBank(digits)
}
