package generator_test

import (
	"testing"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/tensor"
)

// Id 0 is the pad value, so GO sits elsewhere.
const (
	testEOS = 1
	testGO  = 2
)

// testVocab maps GO and EOS to fixed ids; every other token is unknown.
type testVocab struct {
	size   int
	maxLen int
	noEOS  bool
}

func (v testVocab) IndexOf(tok string) (int, bool) {
	switch tok {
	case "GO":
		return testGO, true
	case "EOS":
		return testEOS, !v.noEOS
	}
	return 0, false
}

func (v testVocab) Size() int   { return v.size }
func (v testVocab) MaxLen() int { return v.maxLen }

func newGenerator(t *testing.T, voc generator.Vocabulary, net generator.Policy, seed int64) *generator.Generator {
	t.Helper()
	g, err := generator.New(voc, net, generator.Config{Env: generator.NewEnv("", seed)})
	if err != nil {
		t.Fatalf("generator.New: %v", err)
	}
	return g
}

// checkTermination asserts that every row holds EOS from its first EOS up to
// column steps, and the pad value 0 from steps on.
func checkTermination(t *testing.T, seqs tensor.IntMat, eos, steps int) {
	t.Helper()
	if steps < 1 || steps > seqs.C {
		t.Fatalf("steps = %d for %d columns", steps, seqs.C)
	}
	for b := 0; b < seqs.R; b++ {
		done := false
		for j, tok := range seqs.Row(b) {
			switch {
			case j >= steps:
				if tok != 0 {
					t.Fatalf("row %d column %d after the last step holds %d, want pad", b, j, tok)
				}
			case done && tok != eos:
				t.Fatalf("row %d reopened at column %d with token %d", b, j, tok)
			}
			if tok == eos {
				done = true
			}
		}
	}
	if steps < seqs.C {
		// An early stop means every row had finished.
		for b := 0; b < seqs.R; b++ {
			if seqs.At(b, steps-1) != eos {
				t.Fatalf("stopped after %d steps but row %d is still open: %v", steps, b, seqs.Row(b))
			}
		}
	}
}

// wrongShape returns logits with one column too many.
type wrongShape struct{ vocab int }

func (w wrongShape) Step(_ *generator.Env, x []int, st generator.State) (tensor.Mat, generator.State, error) {
	return tensor.NewMat(len(x), w.vocab+1), st, nil
}

// growState adds a layer to the state it returns.
type growState struct{ vocab int }

func (s growState) Step(_ *generator.Env, x []int, st generator.State) (tensor.Mat, generator.State, error) {
	next := generator.State{
		H: tensor.NewCube(st.H.L+1, st.H.R, st.H.C),
		C: tensor.NewCube(st.C.L+1, st.C.R, st.C.C),
	}
	return tensor.NewMat(len(x), s.vocab), next, nil
}
