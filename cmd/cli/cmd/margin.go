// Package cmd - margin command
package cmd

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"recipe-cost/core/ui"
)

var (
	marginCost    string
	marginPrice   string
	marginTarget  string
	marginMin     string
	marginTargets string
	marginJSON    bool
)

// marginCmd represents the margin command
var marginCmd = &cobra.Command{
	Use:   "margin",
	Short: "Suggest a price and classify the current margin",
	Long: `Suggest a selling price for a cost and classify the current price.

Target and minimum margins default to the configured policy.

Examples:
  recipe-cost margin --cost 3.50
  recipe-cost margin --cost 3.50 --price 9.50
  recipe-cost margin --cost 3.50 --targets 55,60,65,70`,
	Args: cobra.NoArgs,
	RunE: runMargin,
}

func init() {
	rootCmd.AddCommand(marginCmd)

	marginCmd.Flags().StringVar(&marginCost, "cost", "", "cost per unit sold [REQUIRED]")
	marginCmd.Flags().StringVar(&marginPrice, "price", "", "current selling price")
	marginCmd.Flags().StringVar(&marginTarget, "target", "", "target margin percent")
	marginCmd.Flags().StringVar(&marginMin, "min", "", "minimum margin percent")
	marginCmd.Flags().StringVar(&marginTargets, "targets", "", "comma-separated target margins to price")
	marginCmd.Flags().BoolVar(&marginJSON, "json", false, "print JSON")

	marginCmd.MarkFlagRequired("cost")
}

func runMargin(cmd *cobra.Command, args []string) error {
	cost, err := parseDecimal("cost", marginCost)
	if err != nil {
		return err
	}
	price, err := optionalDecimal("price", marginPrice)
	if err != nil {
		return err
	}

	eng := newEngine(nil)
	policy := eng.Config().Policy
	if target, err := optionalDecimal("target", marginTarget); err != nil {
		return err
	} else if target != nil {
		policy.TargetMarginPercent = *target
	}
	if minimum, err := optionalDecimal("min", marginMin); err != nil {
		return err
	} else if minimum != nil {
		policy.MinMarginPercent = *minimum
	}

	targets, err := parseTargets(marginTargets)
	if err != nil {
		return err
	}

	calc := eng.AnalyzeMargin(cost, price, &policy)
	points := eng.SuggestedPrices(cost, targets)

	if marginJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"margin":           calc,
			"suggested_prices": points,
		})
	}

	opts := formatOptions()
	symbol := eng.Config().Currency.Symbol()
	out := ui.NewWriter(cmd.OutOrStdout(), noColor)
	out.Header("Margin")
	out.KeyValue("Cost", symbol+cost.StringFixed(opts.UnitCostPlaces))
	out.KeyValue("Suggested price", symbol+calc.SuggestedPrice.StringFixed(opts.MoneyPlaces)+" at "+calc.TargetMargin.String()+"%")
	if calc.ActualMargin != nil {
		out.KeyValue("Current price", symbol+calc.CurrentPrice.StringFixed(opts.MoneyPlaces))
		out.KeyValue("Actual margin", calc.ActualMargin.StringFixed(1)+"%")
		out.KeyValue("Versus target", calc.MarginDifference.StringFixed(1)+"%")
	}
	out.Badge("Margin", string(calc.Status))

	if len(points) > 0 {
		out.Println("")
		table := out.NewTable("Target", "Price")
		for _, p := range points {
			table.AddRow(p.TargetMargin.String()+"%", symbol+p.Price.StringFixed(opts.MoneyPlaces))
		}
		table.Render()
	}
	return nil
}

// parseTargets parses a comma-separated list of margins
func parseTargets(s string) ([]decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var targets []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		d, err := parseDecimal("targets", strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		targets = append(targets, d)
	}
	return targets, nil
}
