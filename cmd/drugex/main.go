package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/logger"
)

// fileConfig holds the config file loaded by the root Before hook.
var fileConfig Config

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "drugex",
		Usage: "Recurrent molecule generator with evolutionary sampling",
		Flags: loggingFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return ctx, fmt.Errorf("config: %w", err)
			}
			fileConfig = cfg
			applyLoggingConfig(cmd, cfg)
			if debug {
				logLevel = "debug"
			}
			log := logger.Setup(os.Stderr, logLevel, logFormat, isTerminal(os.Stderr))
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			sampleCmd(),
			evolveCmd(),
			likelihoodCmd(),
			initCmd(),
			vocabCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
