// Package shopping builds purchase lists for planned production.
package shopping

import (
	"github.com/shopspring/decimal"

	"recipe-cost/core/costing"
	"recipe-cost/core/determinism"
	"recipe-cost/core/pricing"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
	apperrors "recipe-cost/internal/errors"
)

// Request asks for a number of batches of a recipe
type Request struct {
	Recipe  *types.Recipe
	Batches decimal.Decimal
}

// Line is one ingredient to buy
type Line struct {
	Ingredient string `json:"ingredient"`

	// Needed is the total usage expressed in the pack unit
	Needed decimal.Decimal `json:"needed"`
	Unit   string          `json:"unit"`

	// Purchase is the chosen pack size and its cost
	Purchase pricing.TierChoice `json:"purchase"`
}

// List is a complete shopping list
type List struct {
	Lines     []Line          `json:"lines"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type need struct {
	ingredient *types.Ingredient
	amount     decimal.Decimal
}

// Build sums every request's resolved items per ingredient in the pack's unit
// and picks the cheapest pack size for each. Lines are sorted by ingredient name.
func Build(table *units.Table, requests []Request) (*List, error) {
	if table == nil {
		table = units.Default()
	}

	needs := determinism.NewStableMap[string, *need]()
	for _, req := range requests {
		if req.Recipe == nil {
			return nil, apperrors.Validation("shopping request has no recipe")
		}
		if !req.Batches.IsPositive() {
			return nil, apperrors.Validation("batches must be positive").WithContext("recipe", req.Recipe.Name)
		}

		for _, r := range costing.ResolveItems(req.Recipe) {
			ing := r.Item.Ingredient
			if ing == nil {
				return nil, apperrors.Validation("recipe item has no ingredient").WithContext("recipe", req.Recipe.Name)
			}

			amount, err := table.Convert(r.Item.Quantity.Mul(req.Batches), r.Item.Unit, ing.Pack.PackUnit, ing.Pack.Density)
			if err != nil {
				if e, ok := err.(*apperrors.Error); ok {
					e.WithContext("ingredient", ing.Name).WithContext("recipe", req.Recipe.Name)
				}
				return nil, err
			}

			n, ok := needs.Get(ing.Name)
			if !ok {
				n = &need{ingredient: ing}
				needs.Set(ing.Name, n)
			}
			n.amount = n.amount.Add(amount)
		}
	}

	list := &List{Lines: make([]Line, 0, needs.Len())}
	var err error
	needs.Range(func(name string, n *need) bool {
		var choice pricing.TierChoice
		choice, err = pricing.BestTierForIngredient(n.amount, n.ingredient)
		if err != nil {
			return false
		}
		list.Lines = append(list.Lines, Line{
			Ingredient: name,
			Needed:     n.amount,
			Unit:       n.ingredient.Pack.PackUnit,
			Purchase:   choice,
		})
		list.TotalCost = list.TotalCost.Add(choice.TotalCost)
		return true
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}
