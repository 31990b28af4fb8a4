// Package types - Ingredient and recipe value objects
// Callers assemble these from persisted records; the engine only reads them.
package types

import (
	"github.com/shopspring/decimal"

	apperrors "recipe-cost/internal/errors"
)

// Quantity is an amount expressed in a unit
type Quantity struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   string          `json:"unit"`
}

// PackSpec is an ingredient's standard purchasing data
type PackSpec struct {
	// PackQuantity is the amount in one purchased pack
	PackQuantity decimal.Decimal `json:"pack_quantity"`

	// PackUnit is the unit PackQuantity is expressed in
	PackUnit string `json:"pack_unit"`

	// PackPrice is the price of one pack
	PackPrice decimal.Decimal `json:"pack_price"`

	// Density in grams per millilitre; nil when unknown
	Density *decimal.Decimal `json:"density,omitempty"`
}

// Validate checks the pack invariants: quantity > 0, price >= 0, density > 0 when set.
// Called by the layers that build PackSpecs, never by the engine.
func (p PackSpec) Validate() error {
	if !p.PackQuantity.IsPositive() {
		return apperrors.Validation("pack quantity must be positive").WithContext("pack_quantity", p.PackQuantity.String())
	}
	if p.PackPrice.IsNegative() {
		return apperrors.Validation("pack price must not be negative").WithContext("pack_price", p.PackPrice.String())
	}
	if p.PackUnit == "" {
		return apperrors.Validation("pack unit is required")
	}
	if p.Density != nil && !p.Density.IsPositive() {
		return apperrors.Validation("density must be positive").WithContext("density", p.Density.String())
	}
	return nil
}

// BatchPricingTier is an alternative pack size in the standard pack's unit
type BatchPricingTier struct {
	PackQuantity decimal.Decimal `json:"pack_quantity"`
	PackPrice    decimal.Decimal `json:"pack_price"`
}

// Ingredient is a purchasable ingredient
type Ingredient struct {
	ID    string             `json:"id,omitempty"`
	Name  string             `json:"name"`
	Pack  PackSpec           `json:"pack"`
	Tiers []BatchPricingTier `json:"tiers,omitempty"`
}

// RecipeItem is one ingredient usage inside a recipe or section
type RecipeItem struct {
	Ingredient *Ingredient     `json:"ingredient"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// Validate checks the item has an ingredient and a non-negative quantity
func (i RecipeItem) Validate() error {
	if i.Ingredient == nil {
		return apperrors.Validation("recipe item has no ingredient")
	}
	if i.Quantity.IsNegative() {
		return apperrors.Validation("recipe item quantity must not be negative").
			WithContext("ingredient", i.Ingredient.Name)
	}
	return i.Ingredient.Pack.Validate()
}

// Section is a named, ordered group of recipe items
type Section struct {
	Name  string       `json:"name"`
	Items []RecipeItem `json:"items"`
}

// Recipe is a costed recipe. When Sections has any entry, Items is ignored.
type Recipe struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	YieldQuantity decimal.Decimal `json:"yield_quantity"`
	YieldUnit     string          `json:"yield_unit"`
	Items         []RecipeItem    `json:"items,omitempty"`
	Sections      []Section       `json:"sections,omitempty"`

	// SellingPrice is the current price per yield unit; nil when unpriced
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
}

// HasSections reports whether sections are authoritative for this recipe
func (r *Recipe) HasSections() bool {
	return len(r.Sections) > 0
}

// Validate checks every authoritative item and the yield
func (r *Recipe) Validate() error {
	if !r.YieldQuantity.IsPositive() {
		return apperrors.Validation("yield quantity must be positive").WithContext("recipe", r.Name)
	}
	if r.HasSections() {
		for _, s := range r.Sections {
			for _, item := range s.Items {
				if err := item.Validate(); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MarginPolicy holds company-level margin defaults
type MarginPolicy struct {
	TargetMarginPercent decimal.Decimal `json:"target_margin_percent"`
	MinMarginPercent    decimal.Decimal `json:"min_margin_percent"`
}
