// Package cmd - convert command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recipe-cost/core/units"
)

var convertDensity string

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert AMOUNT FROM TO",
	Short: "Convert an amount between units",
	Long: `Convert an amount between kitchen units.

Weight and volume convert into each other only with --density (grams per millilitre).
Units: ` + strings.Join(unitNames(), ", ") + `

Examples:
  recipe-cost convert 2 lb g
  recipe-cost convert 3 tbsp ml
  recipe-cost convert 1 cups g --density 0.593`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertDensity, "density", "", "density in g/ml for weight-volume conversion")
}

func runConvert(cmd *cobra.Command, args []string) error {
	amount, err := parseDecimal("amount", args[0])
	if err != nil {
		return err
	}
	density, err := optionalDecimal("density", convertDensity)
	if err != nil {
		return err
	}

	result, err := newEngine(nil).Convert(amount, args[1], args[2], density)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", amount, args[1], result, args[2])
	return nil
}

func unitNames() []string {
	return units.Default().Names()
}
