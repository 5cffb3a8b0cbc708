package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Strategy selects a generation policy.
type Strategy string

const (
	// StrategySample uses the primary network alone.
	StrategySample Strategy = "sample"
	// StrategyBlend is Evolve: per-row convex crossover blend and per-row
	// mutation override.
	StrategyBlend Strategy = "blend"
	// StrategySwitch is Evolve1: whole-step network switching and an
	// epsilon-scaled mutation blend.
	StrategySwitch Strategy = "switch"
)

// ParseStrategy accepts the strategy names and the method aliases
// "evolve" and "evolve1".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", string(StrategySample):
		return StrategySample, nil
	case string(StrategyBlend), "evolve":
		return StrategyBlend, nil
	case string(StrategySwitch), "evolve1":
		return StrategySwitch, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

// Request describes one generation call.
type Request struct {
	Strategy  Strategy
	BatchSize int
	Epsilon   float64
	Crossover Policy
	Mutate    Policy
}

// Result holds the generated buffer and loop statistics.
type Result struct {
	Sequences tensor.IntMat
	Steps     int
	Duration  time.Duration
}

// Generate dispatches req to Sample, Evolve or Evolve1.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	var (
		seqs  tensor.IntMat
		steps int
		err   error
	)
	start := time.Now()
	switch req.Strategy {
	case StrategySample, "":
		if req.Crossover != nil || req.Mutate != nil {
			return nil, fmt.Errorf("generate: auxiliary networks require the %s or %s strategy", StrategyBlend, StrategySwitch)
		}
		seqs, steps, err = g.sample(ctx, req.BatchSize)
	case StrategyBlend:
		seqs, steps, err = g.evolve(ctx, req.BatchSize, req.Epsilon, req.Crossover, req.Mutate)
	case StrategySwitch:
		seqs, steps, err = g.evolve1(ctx, req.BatchSize, req.Epsilon, req.Crossover, req.Mutate)
	default:
		return nil, fmt.Errorf("generate: unknown strategy %q", req.Strategy)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Sequences: seqs, Steps: steps, Duration: time.Since(start)}, nil
}
