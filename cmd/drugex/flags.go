package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/lstm"
)

var (
	vocabPath     string
	weightsPath   string
	crossoverPath string
	mutatePath    string
	embedSize     int64
	hiddenSize    int64
	layers        int64
	maxLen        int64
	device        string

	configFile string
	logLevel   string
	logFormat  string
	debug      bool
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vocab",
			Aliases:     []string{"v"},
			Usage:       "vocabulary file (one token per line, or .json)",
			Destination: &vocabPath,
		},
		&cli.StringFlag{
			Name:        "weights",
			Aliases:     []string{"w"},
			Usage:       "primary network weights (.safetensors); random when empty",
			Destination: &weightsPath,
		},
		&cli.Int64Flag{
			Name:        "embed-size",
			Usage:       "embedding size for randomly initialised networks",
			Value:       lstm.DefaultEmbed,
			Destination: &embedSize,
		},
		&cli.Int64Flag{
			Name:        "hidden-size",
			Usage:       "LSTM hidden size for randomly initialised networks",
			Value:       lstm.DefaultHidden,
			Destination: &hiddenSize,
		},
		&cli.Int64Flag{
			Name:        "layers",
			Usage:       "LSTM layers for randomly initialised networks",
			Value:       lstm.DefaultLayers,
			Destination: &layers,
		},
		&cli.Int64Flag{
			Name:        "max-len",
			Usage:       "maximum sequence length (0 = vocabulary file value)",
			Destination: &maxLen,
		},
		&cli.StringFlag{
			Name:        "device",
			Usage:       "execution device",
			Value:       generator.DefaultDevice,
			Destination: &device,
		},
	}
}

func auxiliaryModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "crossover-weights",
			Aliases:     []string{"crossover"},
			Usage:       "crossover network weights (.safetensors)",
			Destination: &crossoverPath,
		},
		&cli.StringFlag{
			Name:        "mutate-weights",
			Aliases:     []string{"mutate"},
			Usage:       "mutation network weights (.safetensors)",
			Destination: &mutatePath,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "config file (default $XDG_CONFIG_HOME/drugex/config.yaml)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
