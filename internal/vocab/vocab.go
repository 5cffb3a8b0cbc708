// Package vocab holds the token alphabet used to encode molecule strings.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// Control tokens. Files loaded through Load always place them first, in
// this order, so index 0 is the pad value written after early termination.
const (
	Pad = "_"
	GO  = "GO"
	EOS = "EOS"
)

// DefaultMaxLen is used when neither the caller nor the file sets a limit.
const DefaultMaxLen = 100

var (
	ErrMissingControl = errors.New("vocabulary missing control token")
	ErrDuplicateToken = errors.New("duplicate vocabulary token")
	ErrPadIndex       = errors.New("pad token must have index 0")
	ErrUnknownToken   = errors.New("unknown token")
	ErrTooLong        = errors.New("sequence longer than max_len")
)

// Vocabulary is an immutable token <-> index mapping.
type Vocabulary struct {
	tokens []string
	index  map[string]int
	maxLen int
}

// New builds a vocabulary from an explicit token list. The list must contain
// GO and EOS and start with Pad; ids follow list order.
func New(tokens []string, maxLen int) (*Vocabulary, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("vocab: max_len must be positive, got %d", maxLen)
	}
	index := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if _, ok := index[tok]; ok {
			return nil, fmt.Errorf("vocab: %w: %q", ErrDuplicateToken, tok)
		}
		index[tok] = i
	}
	for _, ctl := range []string{GO, EOS} {
		if _, ok := index[ctl]; !ok {
			return nil, fmt.Errorf("vocab: %w: %s", ErrMissingControl, ctl)
		}
	}
	if tokens[0] != Pad {
		return nil, fmt.Errorf("vocab: %w: got %q", ErrPadIndex, tokens[0])
	}
	return &Vocabulary{
		tokens: slices.Clone(tokens),
		index:  index,
		maxLen: maxLen,
	}, nil
}

// FromWords builds a vocabulary with the control tokens first followed by
// the sorted, de-duplicated words. Control tokens inside words are ignored.
func FromWords(words []string, maxLen int) (*Vocabulary, error) {
	seen := map[string]bool{Pad: true, GO: true, EOS: true}
	var rest []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		rest = append(rest, w)
	}
	slices.Sort(rest)
	return New(append([]string{Pad, GO, EOS}, rest...), maxLen)
}

type fileFormat struct {
	Tokens []string `json:"tokens"`
	MaxLen int      `json:"max_len,omitempty"`
}

// Load reads a vocabulary file. Files ending in .json hold
// {"tokens": [...], "max_len": N}; anything else is one token per line.
// maxLen overrides the file value when positive.
func Load(path string, maxLen int) (*Vocabulary, error) {
	var (
		words   []string
		fileMax int
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var ff fileFormat
		if err := json.Unmarshal(raw, &ff); err != nil {
			return nil, fmt.Errorf("parse vocabulary json: %w", err)
		}
		words, fileMax = ff.Tokens, ff.MaxLen
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			words = append(words, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read vocabulary: %w", err)
		}
	}
	switch {
	case maxLen > 0:
	case fileMax > 0:
		maxLen = fileMax
	default:
		maxLen = DefaultMaxLen
	}
	return FromWords(words, maxLen)
}

// SaveJSON writes the vocabulary in the JSON file format.
func (v *Vocabulary) SaveJSON(path string) error {
	raw, err := json.MarshalIndent(fileFormat{Tokens: v.tokens, MaxLen: v.maxLen}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// IndexOf returns the id of tok.
func (v *Vocabulary) IndexOf(tok string) (int, bool) {
	i, ok := v.index[tok]
	return i, ok
}

// Token returns the string for id, or "" when out of range.
func (v *Vocabulary) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return ""
	}
	return v.tokens[id]
}

// Tokens returns a copy of the alphabet in id order.
func (v *Vocabulary) Tokens() []string { return slices.Clone(v.tokens) }

func (v *Vocabulary) Size() int   { return len(v.tokens) }
func (v *Vocabulary) MaxLen() int { return v.maxLen }

// GO and EOS cannot be missing; New rejects such alphabets.
func (v *Vocabulary) GO() int  { return v.index[GO] }
func (v *Vocabulary) EOS() int { return v.index[EOS] }
