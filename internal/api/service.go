package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/logger"
	"github.com/samcharles93/drugex/internal/tensor"
)

const (
	DefaultBatchSize = 64
	MaxBatchSize     = 4096
	DefaultEpsilon   = 0.01
)

// Codec is the vocabulary as the API sees it: the generator's view plus
// SMILES encoding and decoding.
type Codec interface {
	generator.Vocabulary
	EncodeSMILES(smiles []string) (tensor.IntMat, error)
	DecodeBatch(seqs tensor.IntMat) []string
}

// ServiceConfig wires the loaded networks. BatchSize and Epsilon are the
// request defaults; zero selects DefaultBatchSize and DefaultEpsilon.
type ServiceConfig struct {
	Vocab     Codec
	Primary   generator.Policy
	Crossover generator.Policy
	Mutate    generator.Policy
	Device    string
	BatchSize int
	Epsilon   float64
	Logger    logger.Logger
}

// GenerationService owns the loaded networks. Calls are serialised: the
// mat-vec kernels already use every core, and policies are not required to
// be safe for concurrent use.
type GenerationService struct {
	cfg  ServiceConfig
	gen  *generator.Generator
	log  logger.Logger
	mu   sync.Mutex
	seed func() int64
}

func NewGenerationService(cfg ServiceConfig) (*GenerationService, error) {
	if cfg.Vocab == nil || cfg.Primary == nil {
		return nil, fmt.Errorf("generation service: vocabulary and primary network are required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	if cfg.Device == "" {
		cfg.Device = generator.DefaultDevice
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	gen, err := generator.New(cfg.Vocab, cfg.Primary, generator.Config{
		Env:    generator.NewEnv(cfg.Device, 0),
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	return &GenerationService{
		cfg:  cfg,
		gen:  gen,
		log:  log,
		seed: func() int64 { return time.Now().UnixNano() },
	}, nil
}

// GenerateParams is a validated generation request.
type GenerateParams struct {
	Strategy     generator.Strategy
	BatchSize    int
	Epsilon      float64
	UseCrossover bool
	UseMutate    bool
	Seed         *int64
}

// Generate runs one generation call and returns it as an unstored Run.
func (s *GenerationService) Generate(ctx context.Context, p GenerateParams) (*Run, error) {
	if p.BatchSize <= 0 {
		p.BatchSize = s.cfg.BatchSize
	}
	if p.BatchSize > MaxBatchSize {
		return nil, newInvalidRequest(fmt.Sprintf("batch_size %d exceeds %d", p.BatchSize, MaxBatchSize))
	}
	req := generator.Request{Strategy: p.Strategy, BatchSize: p.BatchSize, Epsilon: p.Epsilon}
	if p.UseCrossover {
		if s.cfg.Crossover == nil {
			return nil, newInvalidRequest("no crossover network is loaded")
		}
		req.Crossover = s.cfg.Crossover
	}
	if p.UseMutate {
		if s.cfg.Mutate == nil {
			return nil, newInvalidRequest("no mutation network is loaded")
		}
		req.Mutate = s.cfg.Mutate
	}

	seed := s.resolveSeed(p.Seed)
	var res *generator.Result
	err := s.withGenerator(ctx, seed, func(g *generator.Generator) error {
		var err error
		res, err = g.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("generation finished", "strategy", string(p.Strategy), "batch", p.BatchSize,
		"steps", res.Steps, "seed", seed, "took", res.Duration)
	return &Run{
		Strategy:   string(p.Strategy),
		BatchSize:  p.BatchSize,
		Epsilon:    p.Epsilon,
		Crossover:  req.Crossover != nil,
		Mutate:     req.Mutate != nil,
		Seed:       seed,
		Steps:      res.Steps,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
		Sequences:  res.Sequences.Rows(),
		SMILES:     s.cfg.Vocab.DecodeBatch(res.Sequences),
	}, nil
}

// Likelihood scores seqs with the primary network.
func (s *GenerationService) Likelihood(ctx context.Context, seqs tensor.IntMat, seed *int64) (tensor.Mat, error) {
	var scores tensor.Mat
	err := s.withGenerator(ctx, s.resolveSeed(seed), func(g *generator.Generator) error {
		var err error
		scores, err = g.Likelihood(ctx, seqs)
		return err
	})
	return scores, err
}

// Loss assembles the policy-gradient loss, or the MLE loss for a nil reward.
func (s *GenerationService) Loss(ctx context.Context, seqs tensor.IntMat, reward []float64, seed *int64) (generator.Loss, error) {
	var loss generator.Loss
	err := s.withGenerator(ctx, s.resolveSeed(seed), func(g *generator.Generator) error {
		var err error
		if reward == nil {
			loss, err = g.MLELoss(ctx, seqs)
		} else {
			loss, err = g.PolicyGradientLoss(ctx, seqs, reward)
		}
		return err
	})
	return loss, err
}

// Encode turns SMILES strings or raw id rows into a sequence batch.
// Exactly one of the two must be non-empty.
func (s *GenerationService) Encode(smiles []string, rows [][]int) (tensor.IntMat, error) {
	switch {
	case len(smiles) > 0 && len(rows) > 0:
		return tensor.IntMat{}, newInvalidRequest("smiles and sequences are mutually exclusive")
	case len(smiles) > 0:
		return s.cfg.Vocab.EncodeSMILES(smiles)
	case len(rows) > 0:
		m, err := tensor.IntMatFromRows(rows)
		if err != nil {
			return tensor.IntMat{}, newInvalidRequest(fmt.Sprintf("sequences: %v", err))
		}
		return m, nil
	default:
		return tensor.IntMat{}, newInvalidRequest("smiles or sequences is required")
	}
}

func (s *GenerationService) Health() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Device:    s.cfg.Device,
		VocabSize: s.cfg.Vocab.Size(),
		MaxLen:    s.cfg.Vocab.MaxLen(),
		Crossover: s.cfg.Crossover != nil,
		Mutate:    s.cfg.Mutate != nil,
	}
}

func (s *GenerationService) resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return s.seed()
}

func (s *GenerationService) withGenerator(ctx context.Context, seed int64, fn func(g *generator.Generator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.gen.WithEnv(generator.NewEnv(s.cfg.Device, seed)))
}
