package main

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/logger"
	"github.com/samcharles93/drugex/internal/lstm"
)

func initCmd() *cli.Command {
	var (
		outPath string
		seed    int64
	)

	return &cli.Command{
		Name:  "init",
		Usage: "Write randomly initialised network weights sized for a vocabulary",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .safetensors file",
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "initialisation seed (default -1 = random)",
				Value:       -1,
				Destination: &seed,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, fileConfig)
			if outPath == "" {
				return errors.New("--out is required")
			}
			if seed == -1 {
				seed = time.Now().UnixNano()
			}
			voc, err := loadVocabulary()
			if err != nil {
				return err
			}
			net, err := lstm.New(lstm.Config{
				Vocab:  voc.Size(),
				Embed:  int(embedSize),
				Hidden: int(hiddenSize),
				Layers: int(layers),
			}, seed)
			if err != nil {
				return err
			}
			if err := net.Save(outPath); err != nil {
				return err
			}
			cfg := net.Config()
			log.Info("wrote weights", "path", outPath, "vocab", cfg.Vocab, "embed", cfg.Embed,
				"hidden", cfg.Hidden, "layers", cfg.Layers, "seed", seed)
			return nil
		},
	}
}
