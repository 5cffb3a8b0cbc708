package logits

import (
	"errors"
	"math"
	"math/rand"
)

// ErrInvalidDistribution is returned when a probability row contains NaN,
// Inf or negative entries, or has no mass at all.
var ErrInvalidDistribution = errors.New("invalid probability distribution")

// SamplerConfig configures the behaviour of a Sampler.
type SamplerConfig struct {
	Seed int64
}

// Sampler is the random source for generation: categorical draws over
// probability rows, per-row mixing ratios and Bernoulli decisions all come
// from the same seeded stream, so a fixed seed reproduces a whole batch.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a new sampler with the provided configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	return &Sampler{
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Rand exposes the underlying stream for tensor initialisation.
func (s *Sampler) Rand() *rand.Rand {
	return s.rng
}

// Float64 draws from [0,1).
func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

// Bernoulli reports true with probability p.
func (s *Sampler) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// Draw samples a single index from prob, which must be a non-negative,
// finite vector. It need not be normalised: the draw is made against the
// row's total mass, like a multinomial over unnormalised weights.
//
// The draw uses a single uniform value r in [0,total) and returns the first
// index whose cumulative mass exceeds r. Zero-probability entries are never
// returned.
func (s *Sampler) Draw(prob []float32) (int, error) {
	total, err := mass(prob)
	if err != nil {
		return 0, err
	}
	r := s.rng.Float64() * total
	var c float64
	last := -1
	for i, p := range prob {
		if p == 0 {
			continue
		}
		c += float64(p)
		last = i
		if r < c {
			return i, nil
		}
	}
	// Rounding can leave r just above the accumulated mass.
	return last, nil
}

func mass(prob []float32) (float64, error) {
	if len(prob) == 0 {
		return 0, ErrInvalidDistribution
	}
	var total float64
	for _, p := range prob {
		f := float64(p)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return 0, ErrInvalidDistribution
		}
		total += f
	}
	if total <= 0 {
		return 0, ErrInvalidDistribution
	}
	return total, nil
}
