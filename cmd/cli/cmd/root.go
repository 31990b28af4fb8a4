// Package cmd provides the CLI commands for recipe-cost.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"recipe-cost/core/engine"
	"recipe-cost/core/output"
	"recipe-cost/core/types"
	"recipe-cost/internal/config"
	apperrors "recipe-cost/internal/errors"
	"recipe-cost/internal/logging"
)

// Version is the CLI version, set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "recipe-cost",
	Short: "Cost recipes and price them for margin",
	Long: `recipe-cost turns ingredient purchase prices into exact recipe costs.

It converts between kitchen units, costs every recipe in an HCL recipe book,
suggests selling prices for a target margin, and plans bulk purchases.

Examples:
  recipe-cost cost bakery.hcl
  recipe-cost cost --recipe shortbread --format json bakery.hcl
  recipe-cost shop bakery.hcl shortbread=4 "victoria sponge"=2
  recipe-cost margin --cost 3.50 --price 9.50`,
	SilenceUsage: true,
}

// Execute runs the CLI; an interrupt cancels the command's context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.recipe-cost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".recipe-cost.json")
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "recipe-cost version %s\n", Version)
	},
}

// newEngine builds an engine from the loaded configuration; a non-nil policy overrides it
func newEngine(policy *types.MarginPolicy) *engine.Engine {
	cfg := config.Get()
	p := cfg.Pricing.Policy()
	if policy != nil {
		p = *policy
	}
	return engine.New(engine.Config{Currency: cfg.Pricing.Currency, Policy: p})
}

func formatOptions() output.Options {
	cfg := config.Get()
	return output.Options{
		MoneyPlaces:    cfg.Output.MoneyPlaces,
		UnitCostPlaces: cfg.Output.UnitCostPlaces,
		NoColor:        noColor,
	}
}

// render writes report in format to outPath, or to the command's stdout when outPath is empty
func render(cmd *cobra.Command, report *output.Report, format, outPath string) error {
	if format == "" {
		format = config.Get().Output.DefaultFormat
	}
	formatter, ok := output.NewRegistry(formatOptions()).Get(output.Format(format))
	if !ok {
		return apperrors.Validation(fmt.Sprintf("unknown output format %q", format))
	}

	report.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	report.Metadata.Version = Version
	if report.Metadata.Currency == "" {
		report.Metadata.Currency = config.Get().Pricing.Currency
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return apperrors.Internal("failed to create output file", err)
		}
		defer f.Close()
		w = f
	}
	return formatter.Render(w, report)
}

// parseDecimal parses a decimal flag or argument
func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperrors.Validation(fmt.Sprintf("%s: %q is not a number", name, value))
	}
	return d, nil
}

// optionalDecimal parses a flag that may be left empty
func optionalDecimal(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDecimal(name, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
