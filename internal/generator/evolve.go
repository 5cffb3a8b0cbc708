package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Evolve samples with the blend strategy. The primary network's
// distribution is mixed per row with the crossover network's as
// ratio*primary + (1-ratio)*crossover, ratio ~ U[0,1) drawn per row and step.
// Rows then switch wholesale to the mutation network's distribution with
// probability epsilon. Each auxiliary network runs on its own state.
//
// Either auxiliary may be nil. With both nil no extra random numbers are
// drawn, so the output matches Sample for the same seed.
func (g *Generator) Evolve(ctx context.Context, batch int, epsilon float64, crossover, mutate Policy) (tensor.IntMat, error) {
	seqs, _, err := g.evolve(ctx, batch, epsilon, crossover, mutate)
	return seqs, err
}

func (g *Generator) evolve(ctx context.Context, batch int, epsilon float64, crossover, mutate Policy) (tensor.IntMat, int, error) {
	if err := validateBatch(batch); err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("evolve: %w", err)
	}
	if err := validateEpsilon(epsilon); err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("evolve: %w", err)
	}

	primary, err := g.newTrack(g.net, g.init, batch)
	if err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("evolve: %w", err)
	}
	var cross, mut *track
	if crossover != nil {
		if cross, err = g.newTrack(crossover, g.auxInit(crossover), batch); err != nil {
			return tensor.IntMat{}, 0, fmt.Errorf("evolve: crossover: %w", err)
		}
	}
	if mutate != nil {
		if mut, err = g.newTrack(mutate, g.auxInit(mutate), batch); err != nil {
			return tensor.IntMat{}, 0, fmt.Errorf("evolve: mutate: %w", err)
		}
	}

	sampler := g.env.Sampler
	start := time.Now()
	seqs, steps, err := g.decode(ctx, batch, func(x []int) (tensor.Mat, error) {
		prob, err := g.probs(primary, x)
		if err != nil {
			return tensor.Mat{}, err
		}
		if cross != nil {
			cp, err := g.probs(cross, x)
			if err != nil {
				return tensor.Mat{}, fmt.Errorf("crossover: %w", err)
			}
			for b := 0; b < batch; b++ {
				ratio := float32(sampler.Float64())
				row := prob.Row(b)
				tensor.Mix(row, row, cp.Row(b), ratio)
			}
		}
		if mut != nil {
			mp, err := g.probs(mut, x)
			if err != nil {
				return tensor.Mat{}, fmt.Errorf("mutate: %w", err)
			}
			for b := 0; b < batch; b++ {
				if sampler.Bernoulli(epsilon) {
					copy(prob.Row(b), mp.Row(b))
				}
			}
		}
		return prob, nil
	})
	if err != nil {
		return tensor.IntMat{}, steps, fmt.Errorf("evolve: %w", err)
	}
	g.log.Debug("sampling finished", "op", "evolve", "batch", batch, "steps", steps,
		"crossover", crossover != nil, "mutate", mutate != nil, "took", time.Since(start))
	return seqs, steps, nil
}

// Evolve1 samples with the switch strategy. When a crossover network is
// given, a single fair coin per step decides whether the crossover or the
// primary network produces that step for the whole batch; only the chosen
// network is queried. The generating trajectory keeps one state that is
// threaded through whichever network runs, so the crossover network must
// use the primary's state shape.
//
// A mutation network, on its own state, is blended in per row as
// (1-r)*p + r*mutation with r = U[0,1)*epsilon, so its influence is capped
// by epsilon rather than being a hard override.
func (g *Generator) Evolve1(ctx context.Context, batch int, epsilon float64, crossover, mutate Policy) (tensor.IntMat, error) {
	seqs, _, err := g.evolve1(ctx, batch, epsilon, crossover, mutate)
	return seqs, err
}

func (g *Generator) evolve1(ctx context.Context, batch int, epsilon float64, crossover, mutate Policy) (tensor.IntMat, int, error) {
	if err := validateBatch(batch); err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("evolve1: %w", err)
	}
	if err := validateEpsilon(epsilon); err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("evolve1: %w", err)
	}
	if crossover != nil {
		if in := g.auxInit(crossover); in != g.init {
			return tensor.IntMat{}, 0, fmt.Errorf("evolve1: %w: crossover state [%d %d] differs from primary [%d %d]",
				ErrShape, in.Layers, in.Hidden, g.init.Layers, g.init.Hidden)
		}
	}

	driver, err := g.newTrack(g.net, g.init, batch)
	if err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("evolve1: %w", err)
	}
	var mut *track
	if mutate != nil {
		if mut, err = g.newTrack(mutate, g.auxInit(mutate), batch); err != nil {
			return tensor.IntMat{}, 0, fmt.Errorf("evolve1: mutate: %w", err)
		}
	}

	sampler := g.env.Sampler
	switched := 0
	start := time.Now()
	seqs, steps, err := g.decode(ctx, batch, func(x []int) (tensor.Mat, error) {
		driver.policy = g.net
		if crossover != nil && sampler.Bernoulli(0.5) {
			driver.policy = crossover
			switched++
		}
		prob, err := g.probs(driver, x)
		if err != nil {
			return tensor.Mat{}, err
		}
		if mut != nil {
			mp, err := g.probs(mut, x)
			if err != nil {
				return tensor.Mat{}, fmt.Errorf("mutate: %w", err)
			}
			for b := 0; b < batch; b++ {
				r := float32(sampler.Float64() * epsilon)
				row := prob.Row(b)
				tensor.Mix(row, row, mp.Row(b), 1-r)
			}
		}
		return prob, nil
	})
	if err != nil {
		return tensor.IntMat{}, steps, fmt.Errorf("evolve1: %w", err)
	}
	g.log.Debug("sampling finished", "op", "evolve1", "batch", batch, "steps", steps,
		"crossover_steps", switched, "mutate", mutate != nil, "took", time.Since(start))
	return seqs, steps, nil
}
