// Package cmd - shop command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recipe-cost/adapters/recipefile"
	"recipe-cost/core/output"
	"recipe-cost/core/shopping"
	apperrors "recipe-cost/internal/errors"
)

var (
	shopFormat string
	shopOut    string
)

// shopCmd represents the shop command
var shopCmd = &cobra.Command{
	Use:   "shop <book.hcl> RECIPE=BATCHES...",
	Short: "Plan purchases for a production run",
	Long: `Plan the purchases for a production run.

Each recipe's ingredient usage is scaled by its batch count and summed per
ingredient in the ingredient's pack unit. The cheapest single pack size is
chosen for every ingredient.

Examples:
  recipe-cost shop bakery.hcl shortbread=4
  recipe-cost shop bakery.hcl shortbread=4 "victoria sponge"=2 --format json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runShop,
}

func init() {
	rootCmd.AddCommand(shopCmd)

	shopCmd.Flags().StringVarP(&shopFormat, "format", "f", "", "output format (cli, json, markdown, msgpack)")
	shopCmd.Flags().StringVarP(&shopOut, "out", "o", "", "write the report to a file")
}

func runShop(cmd *cobra.Command, args []string) error {
	book, err := recipefile.Load(args[0])
	if err != nil {
		return err
	}

	requests, err := parseRequests(book, args[1:])
	if err != nil {
		return err
	}

	eng := newEngine(book.Margin)
	list, err := shopping.Build(eng.Units(), requests)
	if err != nil {
		return err
	}

	return render(cmd, &output.Report{
		Shopping: list,
		Metadata: output.Metadata{Source: book.Path, InputHash: book.Hash.Hex(), Currency: eng.Config().Currency},
	}, shopFormat, shopOut)
}

// parseRequests parses RECIPE=BATCHES arguments against the book
func parseRequests(book *recipefile.Book, args []string) ([]shopping.Request, error) {
	requests := make([]shopping.Request, 0, len(args))
	for _, arg := range args {
		name, batches, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("%q must be RECIPE=BATCHES", arg))
		}
		recipe, err := book.Recipe(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		n, err := parseDecimal("batches", strings.TrimSpace(batches))
		if err != nil {
			return nil, err
		}
		requests = append(requests, shopping.Request{Recipe: recipe, Batches: n})
	}
	return requests, nil
}
