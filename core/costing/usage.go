// Package costing turns ingredient usage into money.
// Functions here are pure: they never log, retry or touch storage.
package costing

import (
	"github.com/shopspring/decimal"

	"recipe-cost/core/types"
	"recipe-cost/core/units"
	apperrors "recipe-cost/internal/errors"
)

// Calculator computes usage and recipe costs against a unit table
type Calculator struct {
	units *units.Table
}

// NewCalculator creates a calculator over table; nil selects the default table
func NewCalculator(table *units.Table) *Calculator {
	if table == nil {
		table = units.Default()
	}
	return &Calculator{units: table}
}

// CostPerBaseUnit is the pack price divided by the pack quantity in base units
func (c *Calculator) CostPerBaseUnit(pack types.PackSpec) (decimal.Decimal, units.BaseUnit, error) {
	base, err := c.units.ToBase(pack.PackQuantity, pack.PackUnit, pack.Density)
	if err != nil {
		return decimal.Zero, "", err
	}
	if base.Amount.IsZero() {
		return decimal.Zero, "", apperrors.Division("pack quantity")
	}
	return pack.PackPrice.Div(base.Amount), base.Unit, nil
}

// UsageCost returns the cost of using quantity of unit from an ingredient bought as pack.
// Both sides are normalized with the pack's density, so a volume usage of a
// weight-tracked ingredient is costed in grams.
func (c *Calculator) UsageCost(quantity decimal.Decimal, unit string, pack types.PackSpec) (decimal.Decimal, error) {
	usage, err := c.units.ToBase(quantity, unit, pack.Density)
	if err != nil {
		return decimal.Zero, err
	}

	perBase, _, err := c.CostPerBaseUnit(pack)
	if err != nil {
		return decimal.Zero, err
	}

	return usage.Amount.Mul(perBase), nil
}

// UsageCost computes with the default unit table
func UsageCost(quantity decimal.Decimal, unit string, pack types.PackSpec) (decimal.Decimal, error) {
	return defaultCalculator.UsageCost(quantity, unit, pack)
}

var defaultCalculator = NewCalculator(nil)
