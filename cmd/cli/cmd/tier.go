// Package cmd - tier command
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recipe-cost/core/types"
	"recipe-cost/core/ui"
	apperrors "recipe-cost/internal/errors"
)

var (
	tierNeed      string
	tierPackQty   string
	tierPackPrice string
	tierTiers     []string
	tierJSON      bool
)

// tierCmd represents the tier command
var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Pick the cheapest pack size for a quantity",
	Long: `Pick the cheapest way to buy a quantity using a single pack size.

Every quantity is in the standard pack's unit. A bulk tier replaces the
standard pack only when both its per-unit cost and its total cost are lower.

Examples:
  recipe-cost tier --need 12 --pack-qty 1.5 --pack-price 1.20 --tier 16:9.00
  recipe-cost tier --need 40 --pack-qty 12 --pack-price 3.60 --tier 30:7.50 --tier 360:80`,
	Args: cobra.NoArgs,
	RunE: runTier,
}

func init() {
	rootCmd.AddCommand(tierCmd)

	tierCmd.Flags().StringVar(&tierNeed, "need", "", "quantity needed [REQUIRED]")
	tierCmd.Flags().StringVar(&tierPackQty, "pack-qty", "", "standard pack quantity [REQUIRED]")
	tierCmd.Flags().StringVar(&tierPackPrice, "pack-price", "", "standard pack price [REQUIRED]")
	tierCmd.Flags().StringArrayVar(&tierTiers, "tier", nil, "bulk tier as QUANTITY:PRICE (repeatable)")
	tierCmd.Flags().BoolVar(&tierJSON, "json", false, "print JSON")

	tierCmd.MarkFlagRequired("need")
	tierCmd.MarkFlagRequired("pack-qty")
	tierCmd.MarkFlagRequired("pack-price")
}

func runTier(cmd *cobra.Command, args []string) error {
	need, err := parseDecimal("need", tierNeed)
	if err != nil {
		return err
	}
	qty, err := parseDecimal("pack-qty", tierPackQty)
	if err != nil {
		return err
	}
	price, err := parseDecimal("pack-price", tierPackPrice)
	if err != nil {
		return err
	}

	tiers := make([]types.BatchPricingTier, 0, len(tierTiers))
	for _, s := range tierTiers {
		tier, err := parseTier(s)
		if err != nil {
			return err
		}
		tiers = append(tiers, tier)
	}

	eng := newEngine(nil)
	choice, err := eng.BestTier(need, qty, price, tiers)
	if err != nil {
		return err
	}

	if tierJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(choice)
	}

	opts := formatOptions()
	symbol := eng.Config().Currency.Symbol()
	out := ui.NewWriter(cmd.OutOrStdout(), noColor)
	out.Header("Best pack")
	out.KeyValue("Source", string(choice.Source))
	out.KeyValue("Pack", fmt.Sprintf("%s @ %s%s", choice.PackQuantity, symbol, choice.PackPrice.StringFixed(opts.MoneyPlaces)))
	out.KeyValue("Packs to buy", choice.PacksNeeded.String())
	out.KeyValue("Cost per unit", symbol+choice.CostPerUnit.StringFixed(opts.UnitCostPlaces))
	out.KeyValue("Total cost", symbol+choice.TotalCost.StringFixed(opts.MoneyPlaces))
	out.KeyValue("Leftover", choice.Leftover.String())
	return nil
}

// parseTier parses QUANTITY:PRICE
func parseTier(s string) (types.BatchPricingTier, error) {
	qty, price, ok := strings.Cut(s, ":")
	if !ok {
		return types.BatchPricingTier{}, apperrors.Validation(fmt.Sprintf("tier %q must be QUANTITY:PRICE", s))
	}
	q, err := parseDecimal("tier quantity", strings.TrimSpace(qty))
	if err != nil {
		return types.BatchPricingTier{}, err
	}
	p, err := parseDecimal("tier price", strings.TrimSpace(price))
	if err != nil {
		return types.BatchPricingTier{}, err
	}
	return types.BatchPricingTier{PackQuantity: q, PackPrice: p}, nil
}
