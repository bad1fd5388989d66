package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"trims whitespace", "  Whole Milk  ", "Whole Milk", nil},
		{"keeps full-width letters", "ＭＩＬＫ", "ＭＩＬＫ", nil},
		{"keeps half-width katakana", " ＡＢＣ ｶﾀｶﾅ ", "ＡＢＣ ｶﾀｶﾅ", nil},
		{"empty", "", "", domain.ErrEmpty},
		{"whitespace only", " \t\n ", "", domain.ErrEmpty},
		{"at limit", strings.Repeat("x", domain.MaxNameLength), strings.Repeat("x", domain.MaxNameLength), nil},
		{"over limit", strings.Repeat("x", domain.MaxNameLength+1), "", domain.ErrTooLong},
		{"multibyte at limit", strings.Repeat("牛", domain.MaxNameLength), strings.Repeat("牛", domain.MaxNameLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain integer", "198", "198", nil},
		{"decimal", "3.49", "3.49", nil},
		{"leading dot", ".5", "0.5", nil},
		{"yen symbol and separators", "¥1,980", "1980", nil},
		{"full-width digits", "１，９８０", "1980", nil},
		{"full-width yen sign", "￥298", "298", nil},
		{"trailing currency word", "298円", "298", nil},
		{"dollar sign", "$4.99", "4.99", nil},
		{"exact maximum", "999,999.99", "999999.99", nil},
		{"empty", "", "", domain.ErrEmpty},
		{"whitespace", "   ", "", domain.ErrEmpty},
		{"letters", "abc", "", domain.ErrInvalidFormat},
		{"two dots", "1.2.3", "", domain.ErrInvalidFormat},
		{"exponent", "1e3", "", domain.ErrInvalidFormat},
		{"only symbol", "¥", "", domain.ErrInvalidFormat},
		{"zero", "0", "", domain.ErrNegativeOrZero},
		{"negative", "-5", "", domain.ErrNegativeOrZero},
		{"one cent above maximum", "1000000.00", "", domain.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePrice(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				var fieldErr *domain.FieldError
				require.True(t, errors.As(err, &fieldErr))
				assert.Equal(t, domain.FieldPrice, fieldErr.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		unit    domain.Unit
		want    string
		wantErr error
	}{
		{"grams", "500", domain.UnitGram, "500", nil},
		{"fractional liters", "1.5", domain.UnitLiter, "1.5", nil},
		{"whole pieces", "12", domain.UnitPiece, "12", nil},
		{"count with zero fraction", "6.0", domain.UnitPack, "6", nil},
		{"fractional pieces", "1.5", domain.UnitPiece, "", domain.ErrMustBeInteger},
		{"full-width digits", "５００", domain.UnitGram, "500", nil},
		{"maximum", "99999.99", domain.UnitGram, "99999.99", nil},
		{"above maximum", "100000", domain.UnitGram, "", domain.ErrTooLarge},
		{"zero", "0", domain.UnitGram, "", domain.ErrNegativeOrZero},
		{"empty", "", domain.UnitGram, "", domain.ErrEmpty},
		{"garbage", "1/2", domain.UnitGram, "", domain.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateQuantity(tt.input, tt.unit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestValidateTaxRate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"fraction", "0.1", "0.1", nil},
		{"percentage", "8%", "0.08", nil},
		{"full-width percentage", "１０％", "0.1", nil},
		{"zero", "0", "0", nil},
		{"one", "1", "1", nil},
		{"above one", "1.5", "", domain.ErrOutOfRange},
		{"negative", "-0.1", "", domain.ErrOutOfRange},
		{"empty", "", "", domain.ErrEmpty},
		{"garbage", "ten", "", domain.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTaxRate(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

// Every input must produce a value or a FieldError, never a panic.
func TestValidatorsAreTotal(t *testing.T) {
	inputs := []string{
		"", " ", "\x00", "💰", "--1", "..", "1..2", "-.", "%", "１．５", "NaN", "Inf",
		"99999999999999999999999999999999", "0.0000000000001", "¥-", ",,,", "1,2,3",
		strings.Repeat("9", 500),
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			_, err := ValidatePrice(input)
			assertFieldErrorOrNil(t, err)
			_, err = ValidateQuantity(input, domain.UnitPiece)
			assertFieldErrorOrNil(t, err)
			_, err = ValidateTaxRate(input)
			assertFieldErrorOrNil(t, err)
			_, err = ValidateName(input)
			assertFieldErrorOrNil(t, err)
		}, "input %q", input)
	}
}

func assertFieldErrorOrNil(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	var fieldErr *domain.FieldError
	assert.True(t, errors.As(err, &fieldErr), "unexpected error type %T: %v", err, err)
}
