// Package engine provides the costing engine used by every interface.
// CLI and HTTP are thin wrappers; the engine holds no per-call state.
package engine

import (
	"github.com/shopspring/decimal"

	"recipe-cost/core/costing"
	"recipe-cost/core/margin"
	"recipe-cost/core/pricing"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
)

// Engine is safe for concurrent use: it only reads its unit table and config
type Engine struct {
	units  *units.Table
	calc   *costing.Calculator
	config Config
}

// Config configures the engine
type Config struct {
	// Currency labels reports; amounts are never converted
	Currency types.Currency

	// Policy is the default margin policy when a call supplies none
	Policy types.MarginPolicy
}

// RecipeReport is a recipe's cost breakdown with its margin analysis
type RecipeReport struct {
	Cost     *types.RecipeCost  `json:"cost"`
	Margin   margin.Calculation `json:"margin"`
	Currency types.Currency     `json:"currency"`
}

// PricePoint is a suggested price at one target margin
type PricePoint struct {
	TargetMargin decimal.Decimal `json:"target_margin"`
	Price        decimal.Decimal `json:"price"`
}

// New creates an engine over the shared default unit table
func New(config Config) *Engine {
	return NewWithTable(units.Default(), config)
}

// NewWithTable creates an engine over a specific unit table
func NewWithTable(table *units.Table, config Config) *Engine {
	return &Engine{
		units:  table,
		calc:   costing.NewCalculator(table),
		config: config,
	}
}

// Units returns the engine's unit table
func (e *Engine) Units() *units.Table {
	return e.units
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Convert converts amount between units, bridging weight and volume with density
func (e *Engine) Convert(amount decimal.Decimal, from, to string, density *decimal.Decimal) (decimal.Decimal, error) {
	return e.units.Convert(amount, from, to, density)
}

// UsageCost returns the cost of using quantity of unit from pack
func (e *Engine) UsageCost(quantity decimal.Decimal, unit string, pack types.PackSpec) (decimal.Decimal, error) {
	return e.calc.UsageCost(quantity, unit, pack)
}

// RecipeCost aggregates a recipe's cost without margin analysis
func (e *Engine) RecipeCost(recipe *types.Recipe) (*types.RecipeCost, error) {
	return e.calc.RecipeCost(recipe)
}

// CostRecipe aggregates the recipe and analyzes the margin of its selling price
// per yield unit. A nil policy selects the engine default.
func (e *Engine) CostRecipe(recipe *types.Recipe, policy *types.MarginPolicy) (*RecipeReport, error) {
	cost, err := e.calc.RecipeCost(recipe)
	if err != nil {
		return nil, err
	}

	p := e.policy(policy)
	return &RecipeReport{
		Cost:     cost,
		Margin:   margin.Analyze(cost.CostPerYieldUnit, recipe.SellingPrice, p.TargetMarginPercent, p.MinMarginPercent),
		Currency: e.config.Currency,
	}, nil
}

// BestTier selects the cheapest single pack size for quantityNeeded
func (e *Engine) BestTier(quantityNeeded, standardPackQuantity, standardPackPrice decimal.Decimal, tiers []types.BatchPricingTier) (pricing.TierChoice, error) {
	return pricing.BestTier(quantityNeeded, standardPackQuantity, standardPackPrice, tiers)
}

// AnalyzeMargin classifies currentPrice against policy, or the engine default when nil
func (e *Engine) AnalyzeMargin(cost decimal.Decimal, currentPrice *decimal.Decimal, policy *types.MarginPolicy) margin.Calculation {
	p := e.policy(policy)
	return margin.Analyze(cost, currentPrice, p.TargetMarginPercent, p.MinMarginPercent)
}

// SuggestedPrices returns the suggested price for each target margin, in order
func (e *Engine) SuggestedPrices(cost decimal.Decimal, targets []decimal.Decimal) []PricePoint {
	points := make([]PricePoint, 0, len(targets))
	for _, target := range targets {
		points = append(points, PricePoint{
			TargetMargin: target,
			Price:        margin.SuggestedPrice(cost, target),
		})
	}
	return points
}

func (e *Engine) policy(p *types.MarginPolicy) types.MarginPolicy {
	if p != nil {
		return *p
	}
	return e.config.Policy
}
