package usecase

import (
	"fmt"

	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Percentage thresholds for savings advice
var (
	strongSavingsPercent   = decimal.NewFromInt(50)
	moderateSavingsPercent = decimal.NewFromInt(20)
	mildSavingsPercent     = decimal.NewFromInt(5)
	quantityDisparityRatio = decimal.NewFromInt(2)
)

// GenerateRecommendations turns computed details into advice for the shopper.
// It is a pure function of its arguments.
func GenerateRecommendations(
	a, b domain.ProductCandidate,
	winner domain.Winner,
	details domain.ComparisonDetails,
) []string {
	var recs []string

	winnerName, pct := "", domain.FormatDecimal(details.PercentageDifference, CalculationPrecision)
	switch winner {
	case domain.WinnerProductA:
		winnerName = a.Name
	case domain.WinnerProductB:
		winnerName = b.Name
	}

	if winner == domain.WinnerTie {
		recs = append(recs, "Both products cost the same per unit.")
	} else {
		recs = append(recs, fmt.Sprintf("%s is more economical.", winnerName))

		switch {
		case details.PercentageDifference.GreaterThan(strongSavingsPercent):
			recs = append(recs, fmt.Sprintf("Strongly recommended: %s costs %s%% less per unit.", winnerName, pct))
		case details.PercentageDifference.GreaterThan(moderateSavingsPercent):
			recs = append(recs, fmt.Sprintf("Recommended: %s costs %s%% less per unit.", winnerName, pct))
		case details.PercentageDifference.GreaterThan(mildSavingsPercent):
			recs = append(recs, fmt.Sprintf("%s is %s%% cheaper per unit; small savings add up over time.", winnerName, pct))
		}
	}

	if a.TaxIncluded != b.TaxIncluded {
		recs = append(recs, "One price includes tax and the other does not; check the final amount you will pay.")
	}

	if !details.ConversionFactorA.Equal(one) || !details.ConversionFactorB.Equal(one) {
		recs = append(recs, fmt.Sprintf("Quantities were converted to a common unit; prices are also shown per %s.",
			details.DisplayUnit.DisplayName()))
	}

	if hasQuantityDisparity(details.BaseQuantityA, details.BaseQuantityB) {
		recs = append(recs, "The package sizes differ a lot; consider how much you actually need before buying the larger one.")
	}

	return recs
}

// hasQuantityDisparity reports whether one quantity is more than twice the other
func hasQuantityDisparity(qa, qb decimal.Decimal) bool {
	if !qa.IsPositive() || !qb.IsPositive() {
		return false
	}
	ratio := decimal.Max(qa.Div(qb), qb.Div(qa))
	return ratio.GreaterThan(quantityDisparityRatio)
}
