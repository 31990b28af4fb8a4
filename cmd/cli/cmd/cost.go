// Package cmd - cost command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-cost/adapters/recipefile"
	"recipe-cost/core/output"
	"recipe-cost/core/types"
	"recipe-cost/internal/logging"
)

var (
	costRecipe string
	costFormat string
	costOut    string
)

// costCmd represents the cost command
var costCmd = &cobra.Command{
	Use:   "cost <book.hcl>",
	Short: "Cost the recipes in a recipe book",
	Long: `Cost every recipe in an HCL recipe book and analyze its margin.

The book's margin block, when present, overrides the configured policy.
Selling prices are per yield unit, so margins are analyzed on cost per yield unit.

Examples:
  recipe-cost cost bakery.hcl
  recipe-cost cost --recipe shortbread bakery.hcl
  recipe-cost cost --format markdown --out report.md bakery.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)

	costCmd.Flags().StringVarP(&costRecipe, "recipe", "r", "", "cost only this recipe")
	costCmd.Flags().StringVarP(&costFormat, "format", "f", "", "output format (cli, json, markdown, msgpack)")
	costCmd.Flags().StringVarP(&costOut, "out", "o", "", "write the report to a file")
}

func runCost(cmd *cobra.Command, args []string) error {
	book, err := recipefile.Load(args[0])
	if err != nil {
		return err
	}

	recipes := book.Recipes
	if costRecipe != "" {
		r, err := book.Recipe(costRecipe)
		if err != nil {
			return err
		}
		recipes = []*types.Recipe{r}
	}

	eng := newEngine(book.Margin)
	report := &output.Report{
		Metadata: output.Metadata{Source: book.Path, InputHash: book.Hash.Hex(), Currency: eng.Config().Currency},
	}
	for _, r := range recipes {
		rep, err := eng.CostRecipe(r, nil)
		if err != nil {
			return err
		}
		logging.Debug("recipe costed",
			zap.String("recipe", r.Name),
			zap.String("total_cost", rep.Cost.TotalCost.String()),
			zap.String("status", string(rep.Margin.Status)),
		)
		report.Recipes = append(report.Recipes, rep)
	}

	return render(cmd, report, costFormat, costOut)
}
