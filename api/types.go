// Package api - API types for recipe costing
// Decimals travel as JSON strings; numbers are accepted on input.
package api

import (
	"github.com/shopspring/decimal"

	"recipe-cost/core/engine"
	"recipe-cost/core/margin"
	"recipe-cost/core/pricing"
	"recipe-cost/core/types"
)

// ConvertRequest is the input to POST /convert
type ConvertRequest struct {
	Amount  decimal.Decimal  `json:"amount"`
	From    string           `json:"from"`
	To      string           `json:"to"`
	Density *decimal.Decimal `json:"density,omitempty"`
}

// ConvertResponse is the output of POST /convert
type ConvertResponse struct {
	RequestID string          `json:"request_id"`
	Amount    decimal.Decimal `json:"amount"`
	Unit      string          `json:"unit"`
}

// UsageCostRequest is the input to POST /usage-cost
type UsageCostRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Pack     types.PackSpec  `json:"pack"`
}

// UsageCostResponse is the output of POST /usage-cost
type UsageCostResponse struct {
	RequestID string          `json:"request_id"`
	Cost      decimal.Decimal `json:"cost"`
}

// RecipeCostRequest is the input to POST /recipe-cost.
// Items carry their ingredients inline.
type RecipeCostRequest struct {
	Recipe *types.Recipe `json:"recipe"`

	// Margin overrides the server's policy (optional)
	Margin *types.MarginPolicy `json:"margin,omitempty"`
}

// RecipeCostResponse is the output of POST /recipe-cost
type RecipeCostResponse struct {
	RequestID string `json:"request_id"`
	*engine.RecipeReport
}

// BestTierRequest is the input to POST /best-tier
type BestTierRequest struct {
	QuantityNeeded       decimal.Decimal          `json:"quantity_needed"`
	StandardPackQuantity decimal.Decimal          `json:"standard_pack_quantity"`
	StandardPackPrice    decimal.Decimal          `json:"standard_pack_price"`
	Tiers                []types.BatchPricingTier `json:"tiers,omitempty"`
}

// BestTierResponse is the output of POST /best-tier
type BestTierResponse struct {
	RequestID string `json:"request_id"`
	pricing.TierChoice
}

// MarginRequest is the input to POST /margin.
// Omitted margins fall back to the server's policy.
type MarginRequest struct {
	Cost         decimal.Decimal  `json:"cost"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	TargetMargin *decimal.Decimal `json:"target_margin,omitempty"`
	MinMargin    *decimal.Decimal `json:"min_margin,omitempty"`
}

// MarginResponse is the output of POST /margin
type MarginResponse struct {
	RequestID string `json:"request_id"`
	margin.Calculation
}

// IngredientsResponse is the output of GET /ingredients
type IngredientsResponse struct {
	RequestID   string              `json:"request_id"`
	Ingredients []*types.Ingredient `json:"ingredients"`
	Count       int                 `json:"count"`
}

// IngredientResponse is the output of GET /ingredients/{name}
type IngredientResponse struct {
	RequestID  string            `json:"request_id"`
	Ingredient *types.Ingredient `json:"ingredient"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	RequestID string      `json:"request_id"`
	Error     ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}
