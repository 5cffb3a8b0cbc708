package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/drugex/internal/lstm"
	"github.com/samcharles93/drugex/internal/tensor"
	"github.com/samcharles93/drugex/internal/vocab"
)

func runCLI(t *testing.T, cfgPath string, args ...string) error {
	t.Helper()
	argv := append([]string{"drugex", "--config", cfgPath, "--log-level", "error"}, args...)
	return newApp().Run(context.Background(), argv)
}

func readJSONL[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	var out []T
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		out = append(out, v)
	}
	return out
}

// TestCLIPipeline builds a vocabulary, initialises weights, samples,
// evolves and scores through the command tree.
func TestCLIPipeline(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "")
	corpus := writeFile(t, dir, "corpus.smi", "CCO ethanol\nc1ccccc1\n\n# comment\nCC(=O)Cl\n")
	vocPath := filepath.Join(dir, "voc.json")
	weights := filepath.Join(dir, "agent.safetensors")
	small := []string{"--embed-size", "8", "--hidden-size", "16", "--layers", "1"}

	if err := runCLI(t, cfgPath, "vocab", "--in", corpus, "--out", vocPath); err != nil {
		t.Fatalf("vocab: %v", err)
	}
	voc, err := vocab.Load(vocPath, 0)
	if err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	// c1ccccc1 is the longest molecule: eight tokens plus EOS.
	if voc.MaxLen() != 9 {
		t.Fatalf("max_len = %d, want 9", voc.MaxLen())
	}
	if _, ok := voc.IndexOf("Cl"); !ok {
		t.Fatal("two-letter halogen missing from vocabulary")
	}

	args := append([]string{"init", "--vocab", vocPath, "--out", weights, "--seed", "3"}, small...)
	if err := runCLI(t, cfgPath, args...); err != nil {
		t.Fatalf("init: %v", err)
	}
	net, err := lstm.Load(weights)
	if err != nil {
		t.Fatalf("load weights: %v", err)
	}
	if got := net.Config(); got.Vocab != voc.Size() || got.Hidden != 16 || got.Layers != 1 {
		t.Fatalf("unexpected network config %+v", got)
	}

	samplePath := filepath.Join(dir, "sample.jsonl")
	if err := runCLI(t, cfgPath, "sample", "--vocab", vocPath, "--weights", weights,
		"-n", "5", "--seed", "11", "--format", "jsonl", "--out", samplePath); err != nil {
		t.Fatalf("sample: %v", err)
	}
	records := readJSONL[sequenceRecord](t, samplePath)
	if len(records) != 5 {
		t.Fatalf("got %d sampled records, want 5", len(records))
	}
	for _, r := range records {
		if len(r.Tokens) == 0 || len(r.Tokens) > voc.MaxLen() {
			t.Fatalf("bad token row %v", r.Tokens)
		}
	}

	evolvePath := filepath.Join(dir, "evolve.txt")
	if err := runCLI(t, cfgPath, "evolve", "--vocab", vocPath, "--weights", weights,
		"--crossover-weights", weights, "--strategy", "switch", "--epsilon", "0.2",
		"-n", "3", "--seed", "5", "--out", evolvePath); err != nil {
		t.Fatalf("evolve: %v", err)
	}
	raw, err := os.ReadFile(evolvePath)
	if err != nil {
		t.Fatalf("read evolve output: %v", err)
	}
	if n := strings.Count(string(raw), "\n"); n != 3 {
		t.Fatalf("evolve wrote %d lines, want 3", n)
	}

	scored := filepath.Join(dir, "scores.jsonl")
	if err := runCLI(t, cfgPath, "likelihood", "--vocab", vocPath, "--weights", weights,
		"--in", corpus, "--out", scored, "-n", "2"); err != nil {
		t.Fatalf("likelihood: %v", err)
	}
	scores := readJSONL[likelihoodRecord](t, scored)
	if len(scores) != 3 || scores[0].SMILES != "CCO" {
		t.Fatalf("unexpected scores %+v", scores)
	}
	for _, s := range scores {
		if s.Total >= 0 || len(s.Scores) != voc.MaxLen() {
			t.Fatalf("unexpected score record %+v", s)
		}
	}
}

func TestCLIRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "")
	vocPath := writeFile(t, dir, "voc.txt", "C\nO\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing vocab", []string{"sample"}, "--vocab is required"},
		{"bad strategy", []string{"evolve", "--vocab", vocPath, "--strategy", "beam"}, "unknown strategy"},
		{"sample strategy", []string{"evolve", "--vocab", vocPath, "--strategy", "sample"}, "sample command"},
		{"zero batch", []string{"sample", "--vocab", vocPath, "-n", "0"}, "--batch-size"},
		{"init without out", []string{"init", "--vocab", vocPath}, "--out is required"},
		{"missing weights", []string{"sample", "--vocab", vocPath, "--weights", filepath.Join(dir, "none.safetensors")}, "none.safetensors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, cfgPath, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteSequencesFormats(t *testing.T) {
	voc, err := vocab.FromWords([]string{"C", "O"}, 4)
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	c, _ := voc.IndexOf("C")
	o, _ := voc.IndexOf("O")
	seqs, err := tensor.IntMatFromRows([][]int{{c, o, voc.EOS(), 0}, {o, o, o, o}})
	if err != nil {
		t.Fatalf("IntMatFromRows: %v", err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{formatSMILES, "CO\nOOOO\n"},
		{formatIDs, joinInts(seqs.Row(0)) + "\n" + joinInts(seqs.Row(1)) + "\n"},
	}
	for _, tt := range tests {
		var sb strings.Builder
		if err := writeSequences(&sb, tt.format, voc, seqs); err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		if sb.String() != tt.want {
			t.Fatalf("%s: got %q want %q", tt.format, sb.String(), tt.want)
		}
	}

	var sb strings.Builder
	if err := writeSequences(&sb, formatJSONL, voc, seqs); err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	var first sequenceRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.SMILES != "CO" || len(first.Tokens) != 3 || first.Length != 2 {
		t.Fatalf("unexpected record %+v", first)
	}

	if err := writeSequences(&sb, "xml", voc, seqs); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestBuildVocabularyMaxLen(t *testing.T) {
	if _, _, err := buildVocabulary([]string{"CCCC"}, 3); err == nil {
		t.Fatal("expected error when molecule exceeds max-len")
	}
	voc, longest, err := buildVocabulary([]string{"[NH4+]", "CBr"}, 0)
	if err != nil {
		t.Fatalf("buildVocabulary: %v", err)
	}
	if longest != 2 || voc.MaxLen() != 3 {
		t.Fatalf("longest=%d max_len=%d", longest, voc.MaxLen())
	}
	if _, _, err := buildVocabulary(nil, 0); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}
