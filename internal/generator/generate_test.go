package generator_test

import (
	"testing"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/toy"
)

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    generator.Strategy
		wantErr bool
	}{
		{"", generator.StrategySample, false},
		{"sample", generator.StrategySample, false},
		{"blend", generator.StrategyBlend, false},
		{"evolve", generator.StrategyBlend, false},
		{"switch", generator.StrategySwitch, false},
		{"evolve1", generator.StrategySwitch, false},
		{"Evolve", "", true},
		{"beam", "", true},
	}
	for _, tt := range tests {
		got, err := generator.ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseStrategy(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateRejectsMisuse(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, testVocab{size: 5, maxLen: 8}, toy.Uniform(5), 1)
	if _, err := g.Generate(t.Context(), generator.Request{BatchSize: 2, Mutate: toy.Uniform(5)}); err == nil {
		t.Fatal("expected error for auxiliary network with the sample strategy")
	}
	if _, err := g.Generate(t.Context(), generator.Request{Strategy: "beam", BatchSize: 2}); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestGenerateStrategies(t *testing.T) {
	t.Parallel()
	for _, s := range []generator.Strategy{generator.StrategySample, generator.StrategyBlend, generator.StrategySwitch} {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			g := newGenerator(t, testVocab{size: 6, maxLen: 9}, toy.NewTable(6, 1), 3)
			req := generator.Request{Strategy: s, BatchSize: 5, Epsilon: 0.2}
			if s != generator.StrategySample {
				req.Crossover = toy.NewTable(6, 2)
				req.Mutate = toy.NewTable(6, 3)
			}
			res, err := g.Generate(t.Context(), req)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if res.Sequences.R != 5 || res.Sequences.C != 9 {
				t.Fatalf("shape [%d %d]", res.Sequences.R, res.Sequences.C)
			}
			if res.Steps < 1 || res.Steps > 9 {
				t.Fatalf("steps = %d", res.Steps)
			}
			checkTermination(t, res.Sequences, testEOS, res.Steps)
		})
	}
}
