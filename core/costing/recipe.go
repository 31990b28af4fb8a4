package costing

import (
	"github.com/shopspring/decimal"

	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
)

// ResolvedItem is a recipe item tagged with its owning section.
// SectionIndex is -1 for flat items.
type ResolvedItem struct {
	SectionIndex int
	Section      string
	Item         types.RecipeItem
}

// ResolveItems returns the authoritative item list: sections flattened in
// declared order when any exist, otherwise the flat items. The two are never mixed.
func ResolveItems(recipe *types.Recipe) []ResolvedItem {
	var resolved []ResolvedItem
	if recipe.HasSections() {
		for i, section := range recipe.Sections {
			for _, item := range section.Items {
				resolved = append(resolved, ResolvedItem{SectionIndex: i, Section: section.Name, Item: item})
			}
		}
		return resolved
	}
	for _, item := range recipe.Items {
		resolved = append(resolved, ResolvedItem{SectionIndex: -1, Item: item})
	}
	return resolved
}

// RecipeCost sums the usage cost of every resolved item and divides by the yield.
// The per-item breakdown is returned alongside the total.
func (c *Calculator) RecipeCost(recipe *types.Recipe) (*types.RecipeCost, error) {
	result := &types.RecipeCost{
		Recipe:        recipe.Name,
		Items:         []types.ItemCost{},
		TotalCost:     decimal.Zero,
		YieldQuantity: recipe.YieldQuantity,
		YieldUnit:     recipe.YieldUnit,
	}

	subtotals := make([]decimal.Decimal, len(recipe.Sections))
	for _, r := range ResolveItems(recipe) {
		if r.Item.Ingredient == nil {
			return nil, apperrors.Validation("recipe item has no ingredient").WithContext("recipe", recipe.Name)
		}

		cost, err := c.UsageCost(r.Item.Quantity, r.Item.Unit, r.Item.Ingredient.Pack)
		if err != nil {
			if e, ok := err.(*apperrors.Error); ok {
				e.WithContext("ingredient", r.Item.Ingredient.Name)
			}
			return nil, err
		}

		result.Add(types.ItemCost{
			Section:    r.Section,
			Ingredient: r.Item.Ingredient.Name,
			Quantity:   r.Item.Quantity,
			Unit:       r.Item.Unit,
			Cost:       cost,
		})
		if r.SectionIndex >= 0 {
			subtotals[r.SectionIndex] = subtotals[r.SectionIndex].Add(cost)
		}
	}

	if recipe.HasSections() {
		for i, section := range recipe.Sections {
			result.Sections = append(result.Sections, types.SectionCost{
				Name:     section.Name,
				Subtotal: subtotals[i],
			})
		}
	}

	if !recipe.YieldQuantity.IsPositive() {
		return nil, apperrors.Division("yield quantity").WithContext("recipe", recipe.Name)
	}
	result.CostPerYieldUnit = result.TotalCost.Div(recipe.YieldQuantity)

	return result, nil
}

// RecipeCost computes with the default unit table
func RecipeCost(recipe *types.Recipe) (*types.RecipeCost, error) {
	return defaultCalculator.RecipeCost(recipe)
}
