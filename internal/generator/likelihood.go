package generator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Likelihood scores target sequences with teacher forcing. scores[b,t] is
// the log-softmax probability the primary network gives target[b,t] after
// reading GO and target[b,:t]. Every position is scored, including the
// padding after EOS; there is no early exit.
func (g *Generator) Likelihood(ctx context.Context, target tensor.IntMat) (tensor.Mat, error) {
	batch, seqLen := target.R, target.C
	if err := validateBatch(batch); err != nil {
		return tensor.Mat{}, fmt.Errorf("likelihood: %w", err)
	}
	if seqLen < 1 || seqLen > g.voc.MaxLen() {
		return tensor.Mat{}, fmt.Errorf("likelihood: %w: sequence length %d outside [1, %d]", ErrShape, seqLen, g.voc.MaxLen())
	}
	vocab := g.voc.Size()
	for i, tok := range target.Data {
		if tok < 0 || tok >= vocab {
			return tensor.Mat{}, fmt.Errorf("likelihood: %w: %d at [%d %d]", ErrToken, tok, i/seqLen, i%seqLen)
		}
	}

	st, err := g.init.Init(g.env, batch, nil)
	if err != nil {
		return tensor.Mat{}, fmt.Errorf("likelihood: %w", err)
	}
	x := make([]int, batch)
	for i := range x {
		x[i] = g.goID
	}
	col := make([]int, batch)
	logp := make([]float32, vocab)
	scores := tensor.NewMat(batch, seqLen)

	start := time.Now()
	for t := 0; t < seqLen; t++ {
		if err := ctx.Err(); err != nil {
			return tensor.Mat{}, err
		}
		var logits tensor.Mat
		logits, st, err = g.step(g.net, x, st)
		if err != nil {
			return tensor.Mat{}, fmt.Errorf("likelihood: step %d: %w", t, err)
		}
		target.Col(col, t)
		for b := 0; b < batch; b++ {
			tensor.LogSoftmax(logp, logits.Row(b))
			s := logp[col[b]]
			if f := float64(s); math.IsNaN(f) || math.IsInf(f, 0) {
				return tensor.Mat{}, fmt.Errorf("likelihood: step %d row %d: %w: score %v", t, b, ErrNonFinite, s)
			}
			scores.Set(b, t, s)
		}
		x, col = col, x
	}
	g.log.Debug("likelihood scored", "batch", batch, "steps", seqLen, "took", time.Since(start))
	return scores, nil
}
