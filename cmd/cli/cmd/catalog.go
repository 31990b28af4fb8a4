// Package cmd - Ingredient catalog management
package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-cost/adapters/catalog"
	"recipe-cost/adapters/recipefile"
	"recipe-cost/core/ui"
	"recipe-cost/internal/config"
	"recipe-cost/internal/logging"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the ingredient catalog",
	Long: `Manage the persistent ingredient catalog.

The catalog lives in SQLite by default. Set catalog.driver to pgx (or postgres)
and catalog.dsn to a connection string to use PostgreSQL instead.`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <book.hcl>",
	Short: "Import a recipe book's ingredients",
	Long: `Import every ingredient of a recipe book into the catalog.

Ingredients are matched by name; an existing entry is replaced together with its tiers.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog ingredients",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an ingredient from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogRemove,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
}

func openCatalog(ctx context.Context) (*catalog.Store, error) {
	cfg := config.Get().Catalog
	return catalog.Open(ctx, cfg.Driver, cfg.DSN)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	book, err := recipefile.Load(args[0])
	if err != nil {
		return err
	}

	store, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, book.Ingredients...); err != nil {
		return err
	}

	logging.Info("catalog import complete", zap.String("file", book.Path), zap.Int("ingredients", len(book.Ingredients)))
	ui.NewWriter(cmd.OutOrStdout(), noColor).Success("Imported %d ingredients from %s", len(book.Ingredients), book.Path)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	ingredients, err := store.List(ctx)
	if err != nil {
		return err
	}

	out := ui.NewWriter(cmd.OutOrStdout(), noColor)
	if len(ingredients) == 0 {
		out.Warning("Catalog is empty")
		return nil
	}

	opts := formatOptions()
	symbol := config.Get().Pricing.Currency.Symbol()
	table := out.NewTable("Ingredient", "Pack", "Price", "Density", "Tiers")
	for _, ing := range ingredients {
		density := "-"
		if ing.Pack.Density != nil {
			density = ing.Pack.Density.String() + " g/ml"
		}
		tiers := make([]string, 0, len(ing.Tiers))
		for _, t := range ing.Tiers {
			tiers = append(tiers, t.PackQuantity.String()+"@"+symbol+t.PackPrice.StringFixed(opts.MoneyPlaces))
		}
		table.AddRow(
			ing.Name,
			ing.Pack.PackQuantity.String()+" "+ing.Pack.PackUnit,
			symbol+ing.Pack.PackPrice.StringFixed(opts.MoneyPlaces),
			density,
			strings.Join(tiers, ", "),
		)
	}
	table.Render()
	return nil
}

func runCatalogRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(ctx, args[0]); err != nil {
		return err
	}
	ui.NewWriter(cmd.OutOrStdout(), noColor).Success("Removed %s", args[0])
	return nil
}
