// Package main is the entry point for the recipe-cost CLI.
package main

import (
	"os"

	"recipe-cost/cmd/cli/cmd"
	"recipe-cost/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
