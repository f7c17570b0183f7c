package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "lint":
		if err := runLint(os.Args[2:]); err != nil {
			sugar.Fatalf("lint: %v", err)
		}
	case "describe":
		if err := runDescribe(os.Args[2:]); err != nil {
			sugar.Fatalf("describe: %v", err)
		}
	default:
		sugar.Errorf("unknown command %q", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	logger := zap.S()
	logger.Info("Usage: adminkit-tools <command> [options]")
	logger.Info("")
	logger.Info("Commands:")
	logger.Info("  lint       Verify the entity schema document is structurally consistent")
	logger.Info("  describe   Print the fields, constraints and aliases of one entity")
}
