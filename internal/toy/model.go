// Package toy provides small deterministic policies for tests and demos.
package toy

import (
	"fmt"
	"math"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/tensor"
)

// Table is a bigram policy: the logits for the next token are row tok of
// Logits, where tok is the current token. The recurrent state is passed
// through unchanged (copied). Calls counts Step invocations.
type Table struct {
	Logits tensor.Mat // [Vocab x Vocab]
	Calls  int

	layers, hidden int
}

// NewTable returns a table with reproducible random logits in (-2, 2).
func NewTable(vocab int, seed int64) *Table {
	t := newTable(vocab)
	tensor.FillRand(&t.Logits, seed, 2)
	return t
}

// Uniform returns a table whose logits are identical for every token.
func Uniform(vocab int) *Table {
	return newTable(vocab)
}

// Chain returns a near-deterministic table: after token i the model puts
// almost all mass on next[i]. next must have one entry per vocabulary id.
func Chain(next []int) *Table {
	t := newTable(len(next))
	for i, n := range next {
		row := t.Logits.Row(i)
		for j := range row {
			row[j] = -30
		}
		row[n] = 30
	}
	return t
}

// Constant returns a table that puts all mass on tok after every token.
func Constant(vocab, tok int) *Table {
	next := make([]int, vocab)
	for i := range next {
		next[i] = tok
	}
	return Chain(next)
}

func newTable(vocab int) *Table {
	return &Table{Logits: tensor.NewMat(vocab, vocab), layers: 1, hidden: 4}
}

// WithStateShape changes the state shape the table reports.
func (t *Table) WithStateShape(layers, hidden int) *Table {
	t.layers, t.hidden = layers, hidden
	return t
}

// StateShape implements generator.StateShaper. Tables start at [1 x 4].
func (t *Table) StateShape() (int, int) {
	return t.layers, t.hidden
}

// Poison sets every logit after token tok to NaN.
func (t *Table) Poison(tok int) *Table {
	row := t.Logits.Row(tok)
	for j := range row {
		row[j] = float32(math.NaN())
	}
	return t
}

// Step implements generator.Policy.
func (t *Table) Step(_ *generator.Env, x []int, st generator.State) (tensor.Mat, generator.State, error) {
	t.Calls++
	out := tensor.NewMat(len(x), t.Logits.C)
	for b, tok := range x {
		if tok < 0 || tok >= t.Logits.R {
			return tensor.Mat{}, generator.State{}, fmt.Errorf("toy: %w: %d", generator.ErrToken, tok)
		}
		copy(out.Row(b), t.Logits.Row(tok))
	}
	return out, generator.State{H: st.H.Clone(), C: st.C.Clone()}, nil
}
