package generator

import "errors"

var (
	// ErrShape reports inconsistent batch, sequence, logits or state dimensions.
	ErrShape = errors.New("shape mismatch")
	// ErrVocabulary is returned by New when GO or EOS cannot be resolved.
	ErrVocabulary = errors.New("vocabulary missing control token")
	// ErrToken reports a token id outside the vocabulary.
	ErrToken = errors.New("token out of vocabulary range")
	// ErrNonFinite reports NaN or Inf probabilities or scores. They are
	// surfaced rather than masked.
	ErrNonFinite = errors.New("non-finite values")
)
