package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"log-analyzer/internal/app"
	"log-analyzer/internal/shared/configs"
	"log-analyzer/internal/shared/svcerrors"
)

const defaultConfigPath = "./configs/configs.yml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("log-analyzer", pflag.ContinueOnError)
	configPath := flags.String("config", defaultConfigPath, "path to the config file (yaml, toml, ini or json)")
	force := flags.Bool("force", false, "re-render the report even if it already exists")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 2
	}

	// Load configuration
	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize application
	application, err := app.New(cfg, app.Options{Force: *force})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return 1
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		logger := application.Logger()
		if svcErr, ok := svcerrors.AsServiceError(err); ok && !svcErr.IsInternalError() {
			logger.Warn().Err(err).Msg("run finished without a report")
			return 0
		}
		logger.Error().Err(err).Msg("run failed")
		return 1
	}
	return 0
}
