package generator

import (
	"fmt"

	"github.com/samcharles93/drugex/internal/tensor"
)

const (
	DefaultLayers = 3
	DefaultHidden = 512
)

// State is the recurrent (hidden, cell) pair, each [layers, batch, hidden].
type State struct {
	H, C tensor.Cube
}

// Batch returns the batch dimension.
func (s State) Batch() int { return s.H.R }

// SameShape reports whether s and o have identical dimensions.
func (s State) SameShape(o State) bool {
	return s.H.SameShape(o.H) && s.C.SameShape(o.C)
}

func (s State) String() string {
	return fmt.Sprintf("[%d %d %d]", s.H.L, s.H.R, s.H.C)
}

// Initializer produces fresh recurrent states.
type Initializer struct {
	Layers int
	Hidden int
}

// Init returns a State whose every element is drawn uniformly from [0,1)
// using env's random source. States are never zero-initialised.
//
// labels, when non-nil, must hold one value per row; row i gets
// H[0, i, 0] = labels[i].
func (in Initializer) Init(env *Env, batch int, labels []float32) (State, error) {
	if in.Layers <= 0 || in.Hidden <= 0 {
		return State{}, fmt.Errorf("init state: %w: layers=%d hidden=%d", ErrShape, in.Layers, in.Hidden)
	}
	if batch <= 0 {
		return State{}, fmt.Errorf("init state: %w: batch size %d", ErrShape, batch)
	}
	if labels != nil && len(labels) != batch {
		return State{}, fmt.Errorf("init state: %w: %d labels for batch of %d", ErrShape, len(labels), batch)
	}

	rng := env.Sampler.Rand()
	st := State{
		H: tensor.NewCube(in.Layers, batch, in.Hidden),
		C: tensor.NewCube(in.Layers, batch, in.Hidden),
	}
	tensor.FillUniform(st.H.Data, rng)
	for i, l := range labels {
		st.H.Set(0, i, 0, l)
	}
	tensor.FillUniform(st.C.Data, rng)
	return st, nil
}
