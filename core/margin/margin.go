// Package margin derives selling prices and margin status from costs.
// Every function here is total: out-of-range inputs yield zero rather than an error.
package margin

import "github.com/shopspring/decimal"

// Status classifies an actual margin against policy
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusPoor    Status = "poor"
	StatusNoPrice Status = "no-price"
)

var hundred = decimal.NewFromInt(100)

// Calculation is the margin analysis of one priced item
type Calculation struct {
	Cost           decimal.Decimal  `json:"cost"`
	CurrentPrice   *decimal.Decimal `json:"current_price,omitempty"`
	TargetMargin   decimal.Decimal  `json:"target_margin"`
	MinMargin      decimal.Decimal  `json:"min_margin"`
	SuggestedPrice decimal.Decimal  `json:"suggested_price"`

	// ActualMargin is nil when there is no current price
	ActualMargin *decimal.Decimal `json:"actual_margin"`

	// MarginDifference is ActualMargin - TargetMargin; nil when ActualMargin is nil
	MarginDifference *decimal.Decimal `json:"margin_difference"`

	Status Status `json:"status"`
}

// SuggestedPrice returns cost / (1 - target/100). It returns zero when cost is
// not positive or target lies outside the open interval (0, 100).
func SuggestedPrice(cost, targetMarginPercent decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() || !targetMarginPercent.IsPositive() || targetMarginPercent.GreaterThanOrEqual(hundred) {
		return decimal.Zero
	}
	return cost.Div(decimal.NewFromInt(1).Sub(targetMarginPercent.Div(hundred)))
}

// ActualMargin returns (price - cost) / price * 100, or zero when price is not positive
func ActualMargin(cost, sellingPrice decimal.Decimal) decimal.Decimal {
	if !sellingPrice.IsPositive() {
		return decimal.Zero
	}
	return sellingPrice.Sub(cost).Div(sellingPrice).Mul(hundred)
}

// Analyze prices cost at the target margin and classifies currentPrice.
// A nil or zero current price is treated as unpriced.
func Analyze(cost decimal.Decimal, currentPrice *decimal.Decimal, targetMargin, minMargin decimal.Decimal) Calculation {
	calc := Calculation{
		Cost:           cost,
		CurrentPrice:   currentPrice,
		TargetMargin:   targetMargin,
		MinMargin:      minMargin,
		SuggestedPrice: SuggestedPrice(cost, targetMargin),
		Status:         StatusNoPrice,
	}

	if currentPrice == nil || currentPrice.IsZero() {
		return calc
	}

	actual := ActualMargin(cost, *currentPrice)
	diff := actual.Sub(targetMargin)
	calc.ActualMargin = &actual
	calc.MarginDifference = &diff

	switch {
	case actual.GreaterThanOrEqual(targetMargin):
		calc.Status = StatusGood
	case actual.GreaterThanOrEqual(minMargin):
		calc.Status = StatusWarning
	default:
		calc.Status = StatusPoor
	}
	return calc
}
