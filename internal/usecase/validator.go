package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// Compiled patterns for numeric input normalization
var (
	// Plain decimal number after normalization: "198", "1.5", ".5", "-3"
	numberPattern = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

	// Currency markers users paste along with prices
	currencySymbolPattern = regexp.MustCompile(`[$¥€£₩₹円元]|(?i)\b(jpy|usd|eur|yen)\b`)

	// Thousands separators and any inner whitespace
	separatorPattern = regexp.MustCompile(`[,'_\s]`)
)

// normalizeNumber folds full-width characters to half-width and strips
// currency symbols and thousands separators
func normalizeNumber(raw string) string {
	s := width.Narrow.String(raw)
	s = currencySymbolPattern.ReplaceAllString(s, "")
	s = separatorPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// parseAmount runs the shared steps of price and quantity validation
func parseAmount(field, raw string, max decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, &domain.FieldError{Field: field, Kind: domain.ErrEmpty}
	}

	normalized := normalizeNumber(raw)
	if normalized == "" || !numberPattern.MatchString(normalized) {
		return decimal.Zero, &domain.FieldError{Field: field, Kind: domain.ErrInvalidFormat, Value: raw}
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &domain.FieldError{Field: field, Kind: domain.ErrInvalidFormat, Value: raw}
	}

	if !value.IsPositive() {
		return decimal.Zero, &domain.FieldError{Field: field, Kind: domain.ErrNegativeOrZero, Value: raw}
	}
	if value.GreaterThan(max) {
		return decimal.Zero, &domain.FieldError{Field: field, Kind: domain.ErrTooLarge, Value: raw}
	}

	return value, nil
}

// ValidateName trims the product name and checks its length. The name is
// otherwise kept exactly as typed.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &domain.FieldError{Field: domain.FieldName, Kind: domain.ErrEmpty}
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return "", &domain.FieldError{Field: domain.FieldName, Kind: domain.ErrTooLong, Value: name}
	}
	return name, nil
}

// ValidatePrice parses a user-entered price such as "¥1,980" or "１９８"
func ValidatePrice(raw string) (decimal.Decimal, error) {
	return parseAmount(domain.FieldPrice, raw, domain.MaxPrice)
}

// ValidateQuantity parses a user-entered quantity. Count units only accept
// whole numbers.
func ValidateQuantity(raw string, unit domain.Unit) (decimal.Decimal, error) {
	value, err := parseAmount(domain.FieldQuantity, raw, domain.MaxQuantity)
	if err != nil {
		return decimal.Zero, err
	}
	if unit.IsValid() && unit.Category() == domain.CategoryCount && !value.IsInteger() {
		return decimal.Zero, &domain.FieldError{Field: domain.FieldQuantity, Kind: domain.ErrMustBeInteger, Value: raw}
	}
	return value, nil
}

// ValidateTaxRate parses a tax rate given either as a fraction ("0.1")
// or a percentage ("10%"). The result is always a fraction in [0, 1].
func ValidateTaxRate(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, &domain.FieldError{Field: domain.FieldTaxRate, Kind: domain.ErrEmpty}
	}

	normalized := normalizeNumber(raw)
	percent := strings.HasSuffix(normalized, "%")
	normalized = strings.TrimSuffix(normalized, "%")

	if !numberPattern.MatchString(normalized) {
		return decimal.Zero, &domain.FieldError{Field: domain.FieldTaxRate, Kind: domain.ErrInvalidFormat, Value: raw}
	}
	rate, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &domain.FieldError{Field: domain.FieldTaxRate, Kind: domain.ErrInvalidFormat, Value: raw}
	}
	if percent {
		rate = rate.Div(decimal.NewFromInt(100))
	}

	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, &domain.FieldError{Field: domain.FieldTaxRate, Kind: domain.ErrOutOfRange, Value: raw}
	}
	return rate, nil
}
