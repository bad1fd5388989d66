package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups units that can be converted into each other
type Category string

const (
	CategoryWeight Category = "weight"
	CategoryVolume Category = "volume"
	CategoryCount  Category = "count"
)

// Unit is a supported unit of measure. The zero value is not a valid unit.
type Unit string

// Weight units (base: gram)
const (
	UnitGram      Unit = "g"
	UnitMilligram Unit = "mg"
	UnitKilogram  Unit = "kg"
	UnitOunce     Unit = "oz"
	UnitPound     Unit = "lb"
)

// Volume units (base: milliliter)
const (
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitTeaspoon   Unit = "tsp"
	UnitTablespoon Unit = "tbsp"
	UnitCup        Unit = "cup"
	UnitGou        Unit = "gou"
)

// Count units (base: piece). Every count unit converts 1:1.
const (
	UnitPiece  Unit = "piece"
	UnitPack   Unit = "pack"
	UnitBottle Unit = "bottle"
	UnitBag    Unit = "bag"
	UnitSheet  Unit = "sheet"
	UnitSlice  Unit = "slice"
)

type unitInfo struct {
	displayName string
	category    Category
	factor      decimal.Decimal
}

var unitTable = map[Unit]unitInfo{
	UnitGram:      {"gram", CategoryWeight, decimal.NewFromInt(1)},
	UnitMilligram: {"milligram", CategoryWeight, decimal.RequireFromString("0.001")},
	UnitKilogram:  {"kilogram", CategoryWeight, decimal.NewFromInt(1000)},
	UnitOunce:     {"ounce", CategoryWeight, decimal.RequireFromString("28.349523125")},
	UnitPound:     {"pound", CategoryWeight, decimal.RequireFromString("453.59237")},

	UnitMilliliter: {"milliliter", CategoryVolume, decimal.NewFromInt(1)},
	UnitLiter:      {"liter", CategoryVolume, decimal.NewFromInt(1000)},
	UnitTeaspoon:   {"teaspoon", CategoryVolume, decimal.NewFromInt(5)},
	UnitTablespoon: {"tablespoon", CategoryVolume, decimal.NewFromInt(15)},
	UnitCup:        {"cup", CategoryVolume, decimal.NewFromInt(200)},
	UnitGou:        {"gou", CategoryVolume, decimal.NewFromInt(180)},

	UnitPiece:  {"piece", CategoryCount, decimal.NewFromInt(1)},
	UnitPack:   {"pack", CategoryCount, decimal.NewFromInt(1)},
	UnitBottle: {"bottle", CategoryCount, decimal.NewFromInt(1)},
	UnitBag:    {"bag", CategoryCount, decimal.NewFromInt(1)},
	UnitSheet:  {"sheet", CategoryCount, decimal.NewFromInt(1)},
	UnitSlice:  {"slice", CategoryCount, decimal.NewFromInt(1)},
}

// allUnits keeps a stable listing order for clients
var allUnits = []Unit{
	UnitGram, UnitMilligram, UnitKilogram, UnitOunce, UnitPound,
	UnitMilliliter, UnitLiter, UnitTeaspoon, UnitTablespoon, UnitCup, UnitGou,
	UnitPiece, UnitPack, UnitBottle, UnitBag, UnitSheet, UnitSlice,
}

func init() {
	for u, info := range unitTable {
		if !info.factor.IsPositive() {
			panic(fmt.Sprintf("domain: unit %q has non-positive conversion factor %s", u, info.factor))
		}
	}
}

// AllUnits returns every supported unit in listing order
func AllUnits() []Unit {
	out := make([]Unit, len(allUnits))
	copy(out, allUnits)
	return out
}

// ParseUnit resolves a unit code (case-insensitive) or display name
func ParseUnit(code string) (Unit, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return "", &FieldError{Field: FieldUnit, Kind: ErrEmpty, Value: code}
	}
	if _, ok := unitTable[Unit(normalized)]; ok {
		return Unit(normalized), nil
	}
	for u, info := range unitTable {
		if info.displayName == normalized {
			return u, nil
		}
	}
	return "", &FieldError{Field: FieldUnit, Kind: ErrUnknownUnit, Value: code}
}

// IsValid reports whether u is one of the enumerated units
func (u Unit) IsValid() bool {
	_, ok := unitTable[u]
	return ok
}

func (u Unit) mustInfo() unitInfo {
	info, ok := unitTable[u]
	if !ok {
		panic(fmt.Sprintf("domain: unknown unit %q", string(u)))
	}
	return info
}

// DisplayName returns the human-readable unit name
func (u Unit) DisplayName() string {
	return u.mustInfo().displayName
}

// Category returns the category the unit belongs to
func (u Unit) Category() Category {
	return u.mustInfo().category
}

// BaseConversionFactor converts one of u into its category's base unit
func (u Unit) BaseConversionFactor() decimal.Decimal {
	return u.mustInfo().factor
}

// IsBase reports whether u is the base unit of its category
func (u Unit) IsBase() bool {
	return u.BaseConversionFactor().Equal(decimal.NewFromInt(1))
}

func (u Unit) String() string {
	return string(u)
}

// IsComparable reports whether two units share a category
func IsComparable(a, b Unit) bool {
	return a.Category() == b.Category()
}

// ConvertToBase expresses quantity of unit in the category's base unit.
// Decimal multiplication is exact, so no rounding is applied here.
func ConvertToBase(quantity decimal.Decimal, unit Unit) decimal.Decimal {
	return quantity.Mul(unit.BaseConversionFactor())
}

// Convert expresses quantity of from in units of to. Callers must check
// IsComparable first; converting across categories panics.
func Convert(quantity decimal.Decimal, from, to Unit) decimal.Decimal {
	if !IsComparable(from, to) {
		panic(fmt.Sprintf("domain: cannot convert %s (%s) to %s (%s)",
			from, from.Category(), to, to.Category()))
	}
	if from == to {
		return quantity
	}
	return ConvertToBase(quantity, from).Div(to.BaseConversionFactor())
}

// LargerUnit returns whichever unit has the larger base conversion factor.
// Equal factors resolve to a. Both units must share a category.
func LargerUnit(a, b Unit) Unit {
	if !IsComparable(a, b) {
		panic(fmt.Sprintf("domain: cannot rank %s against %s across categories", a, b))
	}
	if b.BaseConversionFactor().GreaterThan(a.BaseConversionFactor()) {
		return b
	}
	return a
}
