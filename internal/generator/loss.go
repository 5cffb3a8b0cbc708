package generator

import (
	"context"
	"fmt"
	"iter"
	"math"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Loss is a scalar training objective together with what an external
// optimizer needs to backpropagate it: the per-position scores it was built
// from and the gradient of Value with respect to each score.
type Loss struct {
	Value  float64
	Scores tensor.Mat
	Grad   tensor.Mat
}

// RewardBatch pairs sequences with one reward per row.
type RewardBatch struct {
	Seqs   tensor.IntMat
	Reward []float64
}

// PolicyGradientLoss computes the REINFORCE objective
// -mean_{b,t}(reward[b] * log pi(seqs[b,t])).
func (g *Generator) PolicyGradientLoss(ctx context.Context, seqs tensor.IntMat, reward []float64) (Loss, error) {
	if len(reward) != seqs.R {
		return Loss{}, fmt.Errorf("policy gradient: %w: %d rewards for batch of %d", ErrShape, len(reward), seqs.R)
	}
	for i, r := range reward {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Loss{}, fmt.Errorf("policy gradient: %w: reward[%d] = %v", ErrNonFinite, i, r)
		}
	}
	return g.weightedLoss(ctx, seqs, reward)
}

// MLELoss is the maximum-likelihood objective -mean(scores).
func (g *Generator) MLELoss(ctx context.Context, seqs tensor.IntMat) (Loss, error) {
	return g.weightedLoss(ctx, seqs, nil)
}

// weightedLoss treats a nil reward as 1 for every row.
func (g *Generator) weightedLoss(ctx context.Context, seqs tensor.IntMat, reward []float64) (Loss, error) {
	scores, err := g.Likelihood(ctx, seqs)
	if err != nil {
		return Loss{}, err
	}
	n := float64(scores.R * scores.C)
	grad := tensor.NewMat(scores.R, scores.C)
	var sum float64
	for b := 0; b < scores.R; b++ {
		w := 1.0
		if reward != nil {
			w = reward[b]
		}
		gb := float32(-w / n)
		for t, s := range scores.Row(b) {
			sum += float64(s) * w
			grad.Set(b, t, gb)
		}
	}
	return Loss{Value: -sum / n, Scores: scores, Grad: grad}, nil
}

// TrainPolicyGradient assembles the policy-gradient loss for every batch
// from the loader and hands it to opt. It stops at the first error and
// returns the loss values of the batches processed so far.
func (g *Generator) TrainPolicyGradient(ctx context.Context, batches iter.Seq[RewardBatch], opt Optimizer) ([]float64, error) {
	var losses []float64
	i := 0
	for rb := range batches {
		loss, err := g.PolicyGradientLoss(ctx, rb.Seqs, rb.Reward)
		if err != nil {
			return losses, fmt.Errorf("batch %d: %w", i, err)
		}
		if err := opt.Step(ctx, loss); err != nil {
			return losses, fmt.Errorf("batch %d: optimizer step: %w", i, err)
		}
		losses = append(losses, loss.Value)
		g.log.Debug("policy gradient step", "batch", i, "loss", loss.Value)
		i++
	}
	return losses, nil
}
