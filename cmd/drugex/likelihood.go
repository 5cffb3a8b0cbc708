package main

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/api"
	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/logger"
	"github.com/samcharles93/drugex/internal/tensor"
)

type likelihoodRecord struct {
	SMILES string    `json:"smiles"`
	Total  float64   `json:"total"`
	Scores []float32 `json:"scores"`
}

func likelihoodCmd() *cli.Command {
	var (
		inPath    string
		outPath   string
		batchSize int64
	)

	return &cli.Command{
		Name:  "likelihood",
		Usage: "Score SMILES strings with the primary network (JSONL output)",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "SMILES file, one per line (default stdin)",
				Destination: &inPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file (default stdout)",
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "batch-size",
				Aliases:     []string{"n"},
				Usage:       "rows scored per forward pass",
				Value:       api.DefaultBatchSize,
				Destination: &batchSize,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, fileConfig)
			if fileConfig.BatchSize != nil && !cmd.IsSet("batch-size") {
				batchSize = *fileConfig.BatchSize
			}
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive")
			}

			smiles, err := readLines(inPath)
			if err != nil {
				return err
			}
			if len(smiles) == 0 {
				return fmt.Errorf("no SMILES to score")
			}
			voc, err := loadVocabulary()
			if err != nil {
				return err
			}
			net, err := loadNetwork(log, weightsPath, voc.Size(), 0)
			if err != nil {
				return err
			}
			gen, err := generator.New(voc, net, generator.Config{
				Env:    generator.NewEnv(device, 0),
				Logger: log,
			})
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(w)
			enc := json.NewEncoder(bw)
			start := time.Now()
			for lo := 0; lo < len(smiles); lo += int(batchSize) {
				hi := min(lo+int(batchSize), len(smiles))
				chunk := smiles[lo:hi]
				seqs, err := voc.EncodeSMILES(chunk)
				if err != nil {
					_ = closeOut()
					return fmt.Errorf("rows %d-%d: %w", lo, hi-1, err)
				}
				scores, err := gen.Likelihood(ctx, seqs)
				if err != nil {
					_ = closeOut()
					return err
				}
				for b, s := range chunk {
					rec := likelihoodRecord{SMILES: s, Scores: scores.Row(b), Total: totalThroughEOS(scores, seqs, b, voc.EOS())}
					if err := enc.Encode(rec); err != nil {
						_ = closeOut()
						return err
					}
				}
			}
			if err := bw.Flush(); err != nil {
				_ = closeOut()
				return err
			}
			log.Info("scored", "rows", len(smiles), "took", time.Since(start))
			return closeOut()
		},
	}
}

// totalThroughEOS sums row b of scores up to and including the first EOS.
func totalThroughEOS(scores tensor.Mat, seqs tensor.IntMat, b, eos int) float64 {
	var total float64
	for t, v := range scores.Row(b) {
		total += float64(v)
		if seqs.At(b, t) == eos {
			break
		}
	}
	return total
}
