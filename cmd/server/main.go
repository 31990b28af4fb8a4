// Package main - Entry point for the recipe-cost HTTP server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-cost/adapters/catalog"
	"recipe-cost/api"
	"recipe-cost/core/engine"
	"recipe-cost/internal/config"
	"recipe-cost/internal/logging"
)

const version = "0.1.0"

var (
	cfgFile     string
	addr        string
	withCatalog bool
)

var rootCmd = &cobra.Command{
	Use:          "recipe-cost-server",
	Short:        "Serve the recipe costing API",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().BoolVar(&withCatalog, "catalog", true, "serve the ingredient catalog")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Replace(logger)
	defer logging.Sync()

	eng := engine.New(engine.Config{
		Currency: cfg.Pricing.Currency,
		Policy:   cfg.Pricing.Policy(),
	})

	var server *api.Server
	if withCatalog {
		store, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		server = api.NewServerWithStore(version, eng, store, logger)
	} else {
		server = api.NewServer(version, eng, logger)
	}

	logger.Info("recipe-cost server starting",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("currency", cfg.Pricing.Currency.String()),
		zap.Bool("catalog", withCatalog),
	)

	if err := server.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
