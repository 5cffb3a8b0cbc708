package api

// GenerateRequest is the body of POST /v1/sample and POST /v1/evolve.
// Pointer fields distinguish "unset" from zero.
type GenerateRequest struct {
	BatchSize *int     `json:"batch_size,omitempty"`
	Epsilon   *float64 `json:"epsilon,omitempty"`
	// Strategy is "blend" (default for /v1/evolve) or "switch".
	// The aliases "evolve" and "evolve1" are accepted.
	Strategy  string `json:"strategy,omitempty"`
	Crossover *bool  `json:"crossover,omitempty"`
	Mutate    *bool  `json:"mutate,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
	// Store=false skips the run store.
	Store *bool `json:"store,omitempty"`
}

// Run is a finished generation call.
type Run struct {
	ID         string   `json:"id"`
	Object     string   `json:"object"`
	CreatedAt  int64    `json:"created_at"`
	Strategy   string   `json:"strategy"`
	BatchSize  int      `json:"batch_size"`
	Epsilon    float64  `json:"epsilon"`
	Crossover  bool     `json:"crossover"`
	Mutate     bool     `json:"mutate"`
	Seed       int64    `json:"seed"`
	Steps      int      `json:"steps"`
	DurationMS float64  `json:"duration_ms"`
	Sequences  [][]int  `json:"sequences"`
	SMILES     []string `json:"smiles"`
}

// LikelihoodRequest scores SMILES strings. Sequences may be given directly
// as token ids instead.
type LikelihoodRequest struct {
	SMILES    []string `json:"smiles,omitempty"`
	Sequences [][]int  `json:"sequences,omitempty"`
	Seed      *int64   `json:"seed,omitempty"`
}

type LikelihoodResponse struct {
	Object string      `json:"object"`
	Scores [][]float32 `json:"scores"`
	// Total is the per-row sum of scores up to and including EOS.
	Total []float64 `json:"total"`
}

// LossRequest assembles the policy-gradient loss, or the MLE loss when
// Reward is omitted.
type LossRequest struct {
	SMILES    []string  `json:"smiles,omitempty"`
	Sequences [][]int   `json:"sequences,omitempty"`
	Reward    []float64 `json:"reward,omitempty"`
	Seed      *int64    `json:"seed,omitempty"`
}

type LossResponse struct {
	Object string      `json:"object"`
	Kind   string      `json:"kind"`
	Loss   float64     `json:"loss"`
	Grad   [][]float32 `json:"grad,omitempty"`
}

type DeleteRunResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Device    string `json:"device"`
	VocabSize int    `json:"vocab_size"`
	MaxLen    int    `json:"max_len"`
	Crossover bool   `json:"crossover"`
	Mutate    bool   `json:"mutate"`
}
