// Package units converts recipe and pack quantities into canonical base units.
//
// Every unit belongs to exactly one dimension class. Weight normalizes to
// grams, volume to millilitres and count to each. The only bridge between
// weight and volume is an ingredient density in grams per millilitre.
package units

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "recipe-cost/internal/errors"
)

// Dimension is a unit's dimension class
type Dimension string

const (
	Weight Dimension = "weight"
	Volume Dimension = "volume"
	Count  Dimension = "count"
)

// BaseUnit is the canonical unit of a dimension class
type BaseUnit string

const (
	Gram       BaseUnit = "g"
	Millilitre BaseUnit = "ml"
	Each       BaseUnit = "each"
)

// Base returns the canonical unit of the dimension
func (d Dimension) Base() BaseUnit {
	switch d {
	case Weight:
		return Gram
	case Volume:
		return Millilitre
	default:
		return Each
	}
}

// Unit is an entry of the unit table
type Unit struct {
	Name      string
	Dimension Dimension

	// Factor converts one of this unit into the dimension's base unit
	Factor decimal.Decimal
}

// BaseAmount is an amount expressed in a base unit
type BaseAmount struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   BaseUnit        `json:"unit"`
}

// Table is an immutable unit lookup table. Build it once and share it.
type Table struct {
	units map[string]Unit
}

type unitDef struct {
	name      string
	dimension Dimension
	factor    string
}

var unitDefs = []unitDef{
	// weight (base = g)
	{"g", Weight, "1"},
	{"kg", Weight, "1000"},
	{"oz", Weight, "28.349523125"},
	{"lb", Weight, "453.59237"},

	// volume (base = ml)
	{"ml", Volume, "1"},
	{"l", Volume, "1000"},
	{"fl oz", Volume, "29.5735295625"},
	{"cups", Volume, "236.5882365"},
	{"tbsp", Volume, "14.78676478125"},
	{"tsp", Volume, "4.92892159375"},

	// count (base = each); count units never scale
	{"each", Count, "1"},
	{"slices", Count, "1"},
}

// NewTable builds the standard unit table
func NewTable() *Table {
	t := &Table{units: make(map[string]Unit, len(unitDefs))}
	for _, def := range unitDefs {
		t.units[def.name] = Unit{
			Name:      def.name,
			Dimension: def.dimension,
			Factor:    decimal.RequireFromString(def.factor),
		}
	}
	return t
}

var defaultTable = NewTable()

// Default returns the shared standard table
func Default() *Table {
	return defaultTable
}

// Lookup resolves a unit name case-insensitively
func (t *Table) Lookup(name string) (Unit, error) {
	u, ok := t.units[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unit{}, apperrors.Unit(name)
	}
	return u, nil
}

// Names returns every known unit name, sorted
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.units))
	for name := range t.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToBase converts amount in unit to its base unit. A volume amount with a
// density is converted to grams; without one it stays in millilitres.
func (t *Table) ToBase(amount decimal.Decimal, unit string, density *decimal.Decimal) (BaseAmount, error) {
	u, err := t.Lookup(unit)
	if err != nil {
		return BaseAmount{}, err
	}

	switch u.Dimension {
	case Weight:
		return BaseAmount{Amount: amount.Mul(u.Factor), Unit: Gram}, nil
	case Volume:
		ml := amount.Mul(u.Factor)
		if density != nil {
			return BaseAmount{Amount: ml.Mul(*density), Unit: Gram}, nil
		}
		return BaseAmount{Amount: ml, Unit: Millilitre}, nil
	default:
		return BaseAmount{Amount: amount, Unit: Each}, nil
	}
}

// FromBase converts a base amount into target. When target's dimension does
// not match base the amount is returned unconverted.
func (t *Table) FromBase(amount decimal.Decimal, base BaseUnit, target string) (decimal.Decimal, error) {
	u, err := t.Lookup(target)
	if err != nil {
		return decimal.Zero, err
	}
	if u.Dimension.Base() != base {
		return amount, nil
	}
	return amount.Div(u.Factor), nil
}

// AreUnitsCompatible reports whether both units share a dimension class.
// Unknown units are never compatible.
func (t *Table) AreUnitsCompatible(a, b string) bool {
	ua, err := t.Lookup(a)
	if err != nil {
		return false
	}
	ub, err := t.Lookup(b)
	if err != nil {
		return false
	}
	return ua.Dimension == ub.Dimension
}

// Convert converts amount between any two units. Weight and volume convert
// into each other only through density; count never converts to either.
func (t *Table) Convert(amount decimal.Decimal, from, to string, density *decimal.Decimal) (decimal.Decimal, error) {
	uf, err := t.Lookup(from)
	if err != nil {
		return decimal.Zero, err
	}
	ut, err := t.Lookup(to)
	if err != nil {
		return decimal.Zero, err
	}

	if uf.Dimension == ut.Dimension {
		return amount.Mul(uf.Factor).Div(ut.Factor), nil
	}

	switch {
	case uf.Dimension == Volume && ut.Dimension == Weight:
		if density == nil {
			return decimal.Zero, apperrors.IncompatibleUnits(uf.Name, ut.Name)
		}
		grams := amount.Mul(uf.Factor).Mul(*density)
		return grams.Div(ut.Factor), nil
	case uf.Dimension == Weight && ut.Dimension == Volume:
		if density == nil {
			return decimal.Zero, apperrors.IncompatibleUnits(uf.Name, ut.Name)
		}
		if density.IsZero() {
			return decimal.Zero, apperrors.Division("density")
		}
		ml := amount.Mul(uf.Factor).Div(*density)
		return ml.Div(ut.Factor), nil
	default:
		return decimal.Zero, apperrors.IncompatibleUnits(uf.Name, ut.Name)
	}
}

// Package-level helpers over the default table

// ToBase converts with the default table
func ToBase(amount decimal.Decimal, unit string, density *decimal.Decimal) (BaseAmount, error) {
	return defaultTable.ToBase(amount, unit, density)
}

// FromBase converts with the default table
func FromBase(amount decimal.Decimal, base BaseUnit, target string) (decimal.Decimal, error) {
	return defaultTable.FromBase(amount, base, target)
}

// AreUnitsCompatible checks compatibility with the default table
func AreUnitsCompatible(a, b string) bool {
	return defaultTable.AreUnitsCompatible(a, b)
}

// Convert converts with the default table
func Convert(amount decimal.Decimal, from, to string, density *decimal.Decimal) (decimal.Decimal, error) {
	return defaultTable.Convert(amount, from, to, density)
}
