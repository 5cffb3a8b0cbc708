package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drugex/internal/logger"
	"github.com/samcharles93/drugex/internal/vocab"
)

func vocabCmd() *cli.Command {
	var (
		inPath  string
		outPath string
		length  int64
	)

	return &cli.Command{
		Name:  "vocab",
		Usage: "Build a vocabulary file from a SMILES corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "SMILES corpus, one per line (default stdin)",
				Destination: &inPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output vocabulary (.json)",
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "max-len",
				Usage:       "maximum sequence length (0 = longest molecule + EOS)",
				Destination: &length,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			if outPath == "" {
				return errors.New("--out is required")
			}
			smiles, err := readLines(inPath)
			if err != nil {
				return err
			}
			voc, longest, err := buildVocabulary(smiles, int(length))
			if err != nil {
				return err
			}
			if err := voc.SaveJSON(outPath); err != nil {
				return err
			}
			log.Info("wrote vocabulary", "path", outPath, "tokens", voc.Size(), "max_len", voc.MaxLen(),
				"molecules", len(smiles), "longest", longest)
			return nil
		},
	}
}

// buildVocabulary tokenises every SMILES string. A non-positive maxLen is
// derived from the longest molecule plus EOS.
func buildVocabulary(smiles []string, maxLen int) (*vocab.Vocabulary, int, error) {
	if len(smiles) == 0 {
		return nil, 0, errors.New("empty corpus")
	}
	var (
		words   []string
		longest int
	)
	for _, s := range smiles {
		toks := vocab.Tokenize(s)
		longest = max(longest, len(toks))
		words = append(words, toks...)
	}
	if maxLen <= 0 {
		maxLen = longest + 1
	} else if longest+1 > maxLen {
		return nil, longest, fmt.Errorf("longest molecule has %d tokens, exceeds --max-len %d", longest, maxLen)
	}
	voc, err := vocab.FromWords(words, maxLen)
	return voc, longest, err
}
