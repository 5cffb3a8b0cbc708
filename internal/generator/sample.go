package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Sample generates batch sequences from the primary network alone. Each row
// is drawn from the softmax of the policy's logits (multinomial, never
// argmax), stays at EOS once it has produced one, and the result is always
// [batch x max_len].
func (g *Generator) Sample(ctx context.Context, batch int) (tensor.IntMat, error) {
	seqs, _, err := g.sample(ctx, batch)
	return seqs, err
}

func (g *Generator) sample(ctx context.Context, batch int) (tensor.IntMat, int, error) {
	if err := validateBatch(batch); err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("sample: %w", err)
	}
	primary, err := g.newTrack(g.net, g.init, batch)
	if err != nil {
		return tensor.IntMat{}, 0, fmt.Errorf("sample: %w", err)
	}

	start := time.Now()
	seqs, steps, err := g.decode(ctx, batch, func(x []int) (tensor.Mat, error) {
		return g.probs(primary, x)
	})
	if err != nil {
		return tensor.IntMat{}, steps, fmt.Errorf("sample: %w", err)
	}
	g.log.Debug("sampling finished", "op", "sample", "batch", batch, "steps", steps, "took", time.Since(start))
	return seqs, steps, nil
}
