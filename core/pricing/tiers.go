// Package pricing - Batch pricing tier selection
// Picks the pack size that minimizes the purchase cost of a needed quantity.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
)

// Source identifies where a tier choice came from
type Source string

const (
	SourceStandard Source = "standard"
	SourceBatch    Source = "batch"
)

// TierChoice is a pack option priced for a needed quantity
type TierChoice struct {
	PackQuantity decimal.Decimal `json:"pack_quantity"`
	PackPrice    decimal.Decimal `json:"pack_price"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	Source       Source          `json:"source"`

	// PacksNeeded is ceil(quantityNeeded / PackQuantity)
	PacksNeeded decimal.Decimal `json:"packs_needed"`

	// TotalCost is PacksNeeded * PackPrice
	TotalCost decimal.Decimal `json:"total_cost"`

	// Leftover is the purchased quantity beyond what is needed
	Leftover decimal.Decimal `json:"leftover"`
}

func priceOption(quantityNeeded, packQuantity, packPrice decimal.Decimal, source Source) TierChoice {
	packs := quantityNeeded.Div(packQuantity).Ceil()
	return TierChoice{
		PackQuantity: packQuantity,
		PackPrice:    packPrice,
		CostPerUnit:  packPrice.Div(packQuantity),
		Source:       source,
		PacksNeeded:  packs,
		TotalCost:    packs.Mul(packPrice),
		Leftover:     packs.Mul(packQuantity).Sub(quantityNeeded),
	}
}

// BestTier selects the cheapest single pack size for quantityNeeded, buying
// repeated packs of one size only. Tiers are considered in ascending pack
// quantity; a tier wins only when both its per-unit cost and its total cost
// are strictly lower than the current best, so ties keep the earlier option.
// Tiers with a non-positive quantity or price are ignored.
func BestTier(quantityNeeded, standardPackQuantity, standardPackPrice decimal.Decimal, tiers []types.BatchPricingTier) (TierChoice, error) {
	if standardPackQuantity.IsZero() {
		return TierChoice{}, apperrors.Division("standard pack quantity")
	}

	best := priceOption(quantityNeeded, standardPackQuantity, standardPackPrice, SourceStandard)
	if len(tiers) == 0 {
		return best, nil
	}

	sorted := make([]types.BatchPricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PackQuantity.LessThan(sorted[j].PackQuantity)
	})

	for _, tier := range sorted {
		if !tier.PackQuantity.IsPositive() || !tier.PackPrice.IsPositive() {
			continue
		}
		option := priceOption(quantityNeeded, tier.PackQuantity, tier.PackPrice, SourceBatch)
		if option.CostPerUnit.LessThan(best.CostPerUnit) && option.TotalCost.LessThan(best.TotalCost) {
			best = option
		}
	}

	return best, nil
}

// BestTierForIngredient runs BestTier against an ingredient's standard pack and tiers
func BestTierForIngredient(quantityNeeded decimal.Decimal, ingredient *types.Ingredient) (TierChoice, error) {
	return BestTier(quantityNeeded, ingredient.Pack.PackQuantity, ingredient.Pack.PackPrice, ingredient.Tiers)
}
