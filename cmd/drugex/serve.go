package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/api"
	"github.com/samcharles93/drugex/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		batchSize   int64
		epsilon     float64
		seed        int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the generation REST API",
		Flags: append(append(commonModelFlags(), auxiliaryModelFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "batch-size",
				Usage:       "default batch size for requests that omit it",
				Value:       api.DefaultBatchSize,
				Destination: &batchSize,
			},
			&cli.Float64Flag{
				Name:        "epsilon",
				Usage:       "default exploration rate for evolve requests",
				Value:       api.DefaultEpsilon,
				Destination: &epsilon,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for randomly initialised networks (default -1 = random)",
				Value:       -1,
				Destination: &seed,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, fileConfig)
			applyGenerateConfig(cmd, fileConfig, &batchSize, &epsilon, &seed)
			applyServeConfig(cmd, fileConfig, &addr)
			if seed == -1 {
				seed = time.Now().UnixNano()
			}

			voc, err := loadVocabulary()
			if err != nil {
				return err
			}
			primary, err := loadNetwork(log, weightsPath, voc.Size(), seed)
			if err != nil {
				return err
			}
			crossover, err := loadAuxiliary(log, crossoverPath, voc.Size())
			if err != nil {
				return err
			}
			mutate, err := loadAuxiliary(log, mutatePath, voc.Size())
			if err != nil {
				return err
			}
			service, err := api.NewGenerationService(api.ServiceConfig{
				Vocab:     voc,
				Primary:   primary,
				Crossover: crossover,
				Mutate:    mutate,
				Device:    device,
				BatchSize: int(batchSize),
				Epsilon:   epsilon,
				Logger:    log.With("component", "api"),
			})
			if err != nil {
				return err
			}

			server := api.NewServer(api.NewRunStore(), service)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "crossover", crossover != nil, "mutate", mutate != nil)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
