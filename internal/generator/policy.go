package generator

import (
	"context"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Policy is one recurrent network seen as a step function. Given the current
// token of every batch row and the recurrent state it returns next-token
// logits shaped [batch x vocab] and the updated state. Implementations keep
// no hidden state between calls; the caller owns the returned logits and
// state and may overwrite them.
type Policy interface {
	Step(env *Env, x []int, st State) (tensor.Mat, State, error)
}

// StateShaper is implemented by policies that know their recurrent state
// dimensions. Auxiliary networks that implement it get a state of their own
// shape; others share the generator's Initializer.
type StateShaper interface {
	StateShape() (layers, hidden int)
}

// Vocabulary is the part of the token alphabet the generator needs.
type Vocabulary interface {
	IndexOf(token string) (int, bool)
	Size() int
	MaxLen() int
}

// Optimizer applies one gradient step for an assembled loss. Gradient
// mechanics live outside this package.
type Optimizer interface {
	Step(ctx context.Context, loss Loss) error
}
