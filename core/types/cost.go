// Package types - Cost breakdown types
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol, falling back to the code
func (c Currency) Symbol() string {
	switch c {
	case CurrencyGBP:
		return "£"
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	default:
		return string(c) + " "
	}
}

// ItemCost is the usage cost of a single recipe item
type ItemCost struct {
	// Section is the owning section name; empty for flat items
	Section string `json:"section,omitempty"`

	// Ingredient is the ingredient name
	Ingredient string `json:"ingredient"`

	// Quantity is the amount used
	Quantity decimal.Decimal `json:"quantity"`

	// Unit is the usage unit
	Unit string `json:"unit"`

	// Cost is the usage cost
	Cost decimal.Decimal `json:"cost"`
}

// SectionCost is the subtotal of one recipe section
type SectionCost struct {
	Name     string          `json:"name"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// RecipeCost is the aggregated cost of a recipe with its per-item breakdown
type RecipeCost struct {
	// Recipe is the recipe name
	Recipe string `json:"recipe"`

	// Items holds per-item costs in resolution order
	Items []ItemCost `json:"items"`

	// Sections holds section subtotals; empty for flat recipes
	Sections []SectionCost `json:"sections,omitempty"`

	// TotalCost is the sum of Items[].Cost
	TotalCost decimal.Decimal `json:"total_cost"`

	// CostPerYieldUnit is TotalCost / YieldQuantity
	CostPerYieldUnit decimal.Decimal `json:"cost_per_yield_unit"`

	YieldQuantity decimal.Decimal `json:"yield_quantity"`
	YieldUnit     string          `json:"yield_unit"`
}

// Add appends an item cost and keeps the total in step
func (c *RecipeCost) Add(item ItemCost) {
	c.Items = append(c.Items, item)
	c.TotalCost = c.TotalCost.Add(item.Cost)
}

// SumItems recomputes the total from the breakdown
func (c *RecipeCost) SumItems() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Cost)
	}
	return total
}
