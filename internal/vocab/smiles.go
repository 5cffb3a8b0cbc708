package vocab

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samcharles93/drugex/internal/tensor"
)

// Bracket atoms stay whole; Cl and Br are single tokens.
var smilesToken = regexp.MustCompile(`\[[^\]]+\]|Cl|Br|.`)

// Tokenize splits a SMILES string into vocabulary tokens.
func Tokenize(smiles string) []string {
	return smilesToken.FindAllString(strings.TrimSpace(smiles), -1)
}

// Encode maps tokens to ids, appends EOS and pads with 0 up to MaxLen.
// The EOS must fit, so at most MaxLen-1 tokens are accepted.
func (v *Vocabulary) Encode(tokens []string) ([]int, error) {
	if len(tokens)+1 > v.maxLen {
		return nil, fmt.Errorf("%w: %d tokens, max_len %d", ErrTooLong, len(tokens), v.maxLen)
	}
	out := make([]int, v.maxLen)
	for i, tok := range tokens {
		id, ok := v.index[tok]
		if !ok {
			return nil, fmt.Errorf("%w %q at position %d", ErrUnknownToken, tok, i)
		}
		out[i] = id
	}
	out[len(tokens)] = v.EOS()
	return out, nil
}

// EncodeSMILES tokenizes and encodes a batch of SMILES strings into a
// [len(smiles) x MaxLen] matrix.
func (v *Vocabulary) EncodeSMILES(smiles []string) (tensor.IntMat, error) {
	m := tensor.NewIntMat(len(smiles), v.maxLen)
	for i, s := range smiles {
		row, err := v.Encode(Tokenize(s))
		if err != nil {
			return tensor.IntMat{}, fmt.Errorf("sequence %d: %w", i, err)
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Decode joins tokens up to the first EOS. Pad and GO are skipped.
func (v *Vocabulary) Decode(ids []int) string {
	var b strings.Builder
	eos, goID := v.EOS(), v.GO()
	pad, hasPad := v.index[Pad]
	for _, id := range ids {
		if id == eos {
			break
		}
		if id == goID || (hasPad && id == pad) {
			continue
		}
		b.WriteString(v.Token(id))
	}
	return b.String()
}

// DecodeBatch decodes every row of seqs.
func (v *Vocabulary) DecodeBatch(seqs tensor.IntMat) []string {
	out := make([]string, seqs.R)
	for i := range out {
		out[i] = v.Decode(seqs.Row(i))
	}
	return out
}
