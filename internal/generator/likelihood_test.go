package generator_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/tensor"
	"github.com/samcharles93/drugex/internal/toy"
	"github.com/samcharles93/drugex/internal/vocab"
)

func mustIntMat(t *testing.T, rows [][]int) tensor.IntMat {
	t.Helper()
	m, err := tensor.IntMatFromRows(rows)
	if err != nil {
		t.Fatalf("IntMatFromRows: %v", err)
	}
	return m
}

func TestLikelihoodUniform(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, testVocab{size: 5, maxLen: 10}, toy.Uniform(5), 1)
	target := mustIntMat(t, [][]int{{2, 3, 1, 0}, {4, 1, 0, 0}})
	scores, err := g.Likelihood(t.Context(), target)
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	if scores.R != 2 || scores.C != 4 {
		t.Fatalf("shape [%d %d]", scores.R, scores.C)
	}
	want := math.Log(1.0 / 5)
	for i, s := range scores.Data {
		if math.Abs(float64(s)-want) > 1e-5 {
			t.Fatalf("score %d = %f, want %f", i, s, want)
		}
	}
}

func TestLikelihoodChainIsCertain(t *testing.T) {
	t.Parallel()
	// GO -> 3 -> 4 -> EOS -> EOS.
	net := toy.Chain([]int{testEOS, testEOS, 3, 4, testEOS})
	g := newGenerator(t, testVocab{size: 5, maxLen: 10}, net, 1)
	target := mustIntMat(t, [][]int{{3, 4, testEOS, testEOS, testEOS, testEOS}})
	scores, err := g.Likelihood(t.Context(), target)
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	for i, s := range scores.Data {
		if s > 0 || s < -1e-4 {
			t.Fatalf("score %d = %g, want ~0", i, s)
		}
	}
	if net.Calls != 6 {
		t.Fatalf("calls = %d, want one per position", net.Calls)
	}

	off := mustIntMat(t, [][]int{{4}})
	scores, err = g.Likelihood(t.Context(), off)
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	if s := scores.At(0, 0); s > -50 {
		t.Fatalf("off-chain score %f, want strongly negative", s)
	}
}

func TestLikelihoodValidation(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, testVocab{size: 5, maxLen: 4}, toy.Uniform(5), 1)
	tests := []struct {
		name   string
		target tensor.IntMat
		want   error
	}{
		{"empty batch", tensor.NewIntMat(0, 3), generator.ErrShape},
		{"empty sequence", tensor.NewIntMat(2, 0), generator.ErrShape},
		{"longer than max_len", tensor.NewIntMat(1, 5), generator.ErrShape},
		{"token out of range", mustIntMat(t, [][]int{{1, 5}}), generator.ErrToken},
		{"negative token", mustIntMat(t, [][]int{{-1}}), generator.ErrToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := g.WithEnv(generator.NewEnv("", 1)).Likelihood(t.Context(), tt.target); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLikelihoodNonFinite(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, testVocab{size: 5, maxLen: 4}, toy.Uniform(5).Poison(3), 1)
	_, err := g.Likelihood(t.Context(), mustIntMat(t, [][]int{{3, 2}}))
	if !errors.Is(err, generator.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
}

// TestVocabularyRoundTrip encodes SMILES through a real vocabulary, scores
// them and decodes freshly sampled sequences.
func TestVocabularyRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "voc.json")
	voc, err := vocab.FromWords([]string{"C", "O", "N", "=", "(", ")", "1", "Cl"}, 16)
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	if err := voc.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	voc, err = vocab.Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := newGenerator(t, voc, toy.NewTable(voc.Size(), 17), 5)
	target, err := voc.EncodeSMILES([]string{"CC(=O)O", "ClC1CC1"})
	if err != nil {
		t.Fatalf("EncodeSMILES: %v", err)
	}
	scores, err := g.Likelihood(t.Context(), target)
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	if scores.R != 2 || scores.C != 16 {
		t.Fatalf("scores shape [%d %d]", scores.R, scores.C)
	}

	seqs, err := g.Sample(t.Context(), 3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i, s := range voc.DecodeBatch(seqs) {
		for _, tok := range vocab.Tokenize(s) {
			if _, ok := voc.IndexOf(tok); !ok {
				t.Fatalf("row %d decoded to unknown token %q in %q", i, tok, s)
			}
		}
	}
}
