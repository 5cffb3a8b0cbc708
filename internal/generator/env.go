package generator

import (
	"github.com/samcharles93/drugex/internal/logits"
)

// DefaultDevice names the only execution target of the pure-Go kernels.
const DefaultDevice = "cpu"

// Env is the execution context handed to every state initialisation and
// policy step. It replaces any notion of a process-wide current device and
// carries the random source used for draws, ratios and coin flips.
// An Env must not be shared between concurrent calls.
type Env struct {
	Device  string
	Sampler *logits.Sampler
}

// NewEnv returns an Env on device with a sampler seeded by seed.
func NewEnv(device string, seed int64) *Env {
	if device == "" {
		device = DefaultDevice
	}
	return &Env{
		Device:  device,
		Sampler: logits.NewSampler(logits.SamplerConfig{Seed: seed}),
	}
}
