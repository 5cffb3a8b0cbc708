package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the drugex configuration file
// (~/.config/drugex/config.yaml). Numeric fields are pointers so we can
// distinguish "not set" from zero values.
type Config struct {
	// Networks
	Vocab            string `yaml:"vocab"`
	Weights          string `yaml:"weights"`
	CrossoverWeights string `yaml:"crossover_weights"`
	MutateWeights    string `yaml:"mutate_weights"`
	EmbedSize        *int64 `yaml:"embed_size"`
	HiddenSize       *int64 `yaml:"hidden_size"`
	Layers           *int64 `yaml:"layers"`
	MaxLen           *int64 `yaml:"max_len"`
	Device           string `yaml:"device"`

	// Generation defaults
	BatchSize *int64   `yaml:"batch_size"`
	Epsilon   *float64 `yaml:"epsilon"`
	Seed      *int64   `yaml:"seed"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "drugex", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file or malformed YAML is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyLoggingConfig runs before the logger is built.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyModelConfig applies config file defaults to the network flags when
// the corresponding CLI flag was not explicitly set.
func applyModelConfig(c *cli.Command, cfg Config) {
	if cfg.Vocab != "" && !c.IsSet("vocab") {
		vocabPath = cfg.Vocab
	}
	if cfg.Weights != "" && !c.IsSet("weights") {
		weightsPath = cfg.Weights
	}
	if cfg.CrossoverWeights != "" && !c.IsSet("crossover-weights") {
		crossoverPath = cfg.CrossoverWeights
	}
	if cfg.MutateWeights != "" && !c.IsSet("mutate-weights") {
		mutatePath = cfg.MutateWeights
	}
	if cfg.EmbedSize != nil && !c.IsSet("embed-size") {
		embedSize = *cfg.EmbedSize
	}
	if cfg.HiddenSize != nil && !c.IsSet("hidden-size") {
		hiddenSize = *cfg.HiddenSize
	}
	if cfg.Layers != nil && !c.IsSet("layers") {
		layers = *cfg.Layers
	}
	if cfg.MaxLen != nil && !c.IsSet("max-len") {
		maxLen = *cfg.MaxLen
	}
	if cfg.Device != "" && !c.IsSet("device") {
		device = cfg.Device
	}
}

// applyGenerateConfig applies config file defaults to generation variables.
func applyGenerateConfig(c *cli.Command, cfg Config, batch *int64, epsilon *float64, seed *int64) {
	if cfg.BatchSize != nil && !c.IsSet("batch-size") {
		*batch = *cfg.BatchSize
	}
	if cfg.Epsilon != nil && !c.IsSet("epsilon") {
		*epsilon = *cfg.Epsilon
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
