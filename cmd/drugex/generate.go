package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/api"
	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/logger"
)

func sampleCmd() *cli.Command {
	return generateCmd("sample", "Sample molecules from the primary network", false)
}

func evolveCmd() *cli.Command {
	return generateCmd("evolve", "Sample with crossover and mutation networks (blend or switch)", true)
}

func generateCmd(name, usage string, evolve bool) *cli.Command {
	var (
		batchSize int64
		epsilon   float64
		seed      int64
		strategy  string
		format    string
		outPath   string
	)

	flags := append(commonModelFlags(),
		&cli.Int64Flag{
			Name:        "batch-size",
			Aliases:     []string{"n"},
			Usage:       "number of sequences to generate",
			Value:       api.DefaultBatchSize,
			Destination: &batchSize,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "sampling RNG seed (default -1 = random)",
			Value:       -1,
			Destination: &seed,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "output format (smiles, jsonl, ids)",
			Value:       formatSMILES,
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "output file (default stdout)",
			Destination: &outPath,
		},
	)
	if evolve {
		flags = append(flags, auxiliaryModelFlags()...)
		flags = append(flags,
			&cli.Float64Flag{
				Name:        "epsilon",
				Aliases:     []string{"e"},
				Usage:       "exploration rate in [0, 1]",
				Value:       api.DefaultEpsilon,
				Destination: &epsilon,
			},
			&cli.StringFlag{
				Name:        "strategy",
				Usage:       "evolution strategy (blend, switch)",
				Value:       string(generator.StrategyBlend),
				Destination: &strategy,
			},
		)
	}

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, fileConfig)
			applyGenerateConfig(cmd, fileConfig, &batchSize, &epsilon, &seed)

			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive")
			}
			if seed == -1 {
				seed = time.Now().UnixNano()
			}
			req := generator.Request{Strategy: generator.StrategySample, BatchSize: int(batchSize)}
			if evolve {
				s, err := generator.ParseStrategy(strategy)
				if err != nil {
					return err
				}
				if s == generator.StrategySample {
					return fmt.Errorf("use the sample command for plain sampling")
				}
				req.Strategy = s
				req.Epsilon = epsilon
			}

			voc, err := loadVocabulary()
			if err != nil {
				return err
			}
			net, err := loadNetwork(log, weightsPath, voc.Size(), seed)
			if err != nil {
				return err
			}
			if evolve {
				if req.Crossover, err = loadAuxiliary(log, crossoverPath, voc.Size()); err != nil {
					return err
				}
				if req.Mutate, err = loadAuxiliary(log, mutatePath, voc.Size()); err != nil {
					return err
				}
				if req.Crossover == nil && req.Mutate == nil {
					log.Warn("no auxiliary networks given, evolve reduces to plain sampling")
				}
			}

			gen, err := generator.New(voc, net, generator.Config{
				Env:    generator.NewEnv(device, seed),
				Logger: log,
			})
			if err != nil {
				return err
			}
			res, err := gen.Generate(ctx, req)
			if err != nil {
				return err
			}
			log.Info("generation finished", "strategy", string(req.Strategy), "batch", req.BatchSize,
				"steps", res.Steps, "seed", seed, "took", res.Duration)

			w, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			if err := writeSequences(w, format, voc, res.Sequences); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}
}
