package toy

import (
	"fmt"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/tensor"
)

// Script is a stateful policy. It ignores the input tokens and keeps a step
// count per row in H[0, b, 0]: row b puts all mass on Tokens[n], where n is
// the count carried in by the incoming state (clamped to the last entry),
// then returns the state with the count advanced by one.
//
// Fresh states hold values in [0,1), so a row starts at Tokens[0] and only
// moves on if the returned state is fed back.
type Script struct {
	Vocab  int
	Tokens []int
	Calls  int
}

// NewScript returns a Script over a vocabulary of the given size.
func NewScript(vocab int, tokens ...int) *Script {
	return &Script{Vocab: vocab, Tokens: tokens}
}

// StateShape implements generator.StateShaper.
func (s *Script) StateShape() (int, int) { return 1, 4 }

// Step implements generator.Policy.
func (s *Script) Step(_ *generator.Env, x []int, st generator.State) (tensor.Mat, generator.State, error) {
	s.Calls++
	if len(s.Tokens) == 0 {
		return tensor.Mat{}, generator.State{}, fmt.Errorf("toy: empty script")
	}
	out := tensor.NewMat(len(x), s.Vocab)
	next := generator.State{H: st.H.Clone(), C: st.C.Clone()}
	for b := range x {
		n := int(st.H.At(0, b, 0))
		n = max(0, min(n, len(s.Tokens)-1))
		row := out.Row(b)
		for j := range row {
			row[j] = -30
		}
		row[s.Tokens[n]] = 30
		next.H.Set(0, b, 0, st.H.At(0, b, 0)+1)
	}
	return out, next, nil
}
