// Package recipefile - Safe CTY value conversion
// CTY values are never passed through; every attribute is converted to a typed Go value.
package recipefile

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
)

// ctyDecimal converts a number, or a string holding a number, to a decimal.
// Numbers go through their exact big.Float text so 0.593 stays 0.593.
func ctyDecimal(val cty.Value) (decimal.Decimal, error) {
	// Check for unknown FIRST
	if !val.IsKnown() {
		return decimal.Zero, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return decimal.Zero, fmt.Errorf("value is null")
	}

	switch val.Type() {
	case cty.Number:
		return decimal.NewFromString(val.AsBigFloat().Text('f', -1))
	case cty.String:
		s := strings.TrimSpace(val.AsString())
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q is not a number", s)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("expected a number, got %s", val.Type().FriendlyName())
	}
}

// ctyString converts a string value; numbers are accepted and rendered as text
func ctyString(val cty.Value) (string, error) {
	if !val.IsKnown() {
		return "", fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return "", fmt.Errorf("value is null")
	}

	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), nil
	default:
		return "", fmt.Errorf("expected a string, got %s", val.Type().FriendlyName())
	}
}

// evaluate reads an attribute without an evaluation context: recipe books
// carry literals only, so variables and functions are rejected here.
func evaluate(attr *hcl.Attribute) (cty.Value, hcl.Diagnostics) {
	return attr.Expr.Value(nil)
}
