package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/logger"
	"github.com/samcharles93/drugex/internal/lstm"
	"github.com/samcharles93/drugex/internal/vocab"
)

func loadVocabulary() (*vocab.Vocabulary, error) {
	path := strings.TrimSpace(vocabPath)
	if path == "" {
		return nil, errors.New("--vocab is required")
	}
	voc, err := vocab.Load(path, int(maxLen))
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %s: %w", path, err)
	}
	return voc, nil
}

// loadNetwork loads weights from path, or builds a random network from the
// size flags when path is empty.
func loadNetwork(log logger.Logger, path string, vocabSize int, seed int64) (*lstm.Network, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		net, err := lstm.New(lstm.Config{
			Vocab:  vocabSize,
			Embed:  int(embedSize),
			Hidden: int(hiddenSize),
			Layers: int(layers),
		}, seed)
		if err != nil {
			return nil, err
		}
		log.Warn("no weights given, using a randomly initialised network", "seed", seed)
		return net, nil
	}
	net, err := lstm.Load(path)
	if err != nil {
		return nil, err
	}
	cfg := net.Config()
	if cfg.Vocab != vocabSize {
		return nil, fmt.Errorf("%s: network vocabulary %d does not match vocabulary file (%d tokens)", path, cfg.Vocab, vocabSize)
	}
	log.Info("loaded network", "path", path, "embed", cfg.Embed, "hidden", cfg.Hidden, "layers", cfg.Layers)
	return net, nil
}

// loadAuxiliary returns a nil Policy when path is empty.
func loadAuxiliary(log logger.Logger, path string, vocabSize int) (generator.Policy, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	net, err := loadNetwork(log, path, vocabSize, 0)
	if err != nil {
		return nil, err
	}
	return net, nil
}
