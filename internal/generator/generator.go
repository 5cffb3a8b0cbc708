// Package generator implements autoregressive decoding over a recurrent
// policy: plain sampling, two evolutionary sampling strategies that combine
// a primary network with crossover and mutation networks, teacher-forced
// likelihood scoring and the policy-gradient loss built on it.
package generator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samcharles93/drugex/internal/logger"
	"github.com/samcharles93/drugex/internal/tensor"
)

const (
	goToken  = "GO"
	eosToken = "EOS"
)

// Config configures a Generator. Zero values select defaults: state
// dimensions come from the primary policy when it implements StateShaper,
// otherwise DefaultLayers/DefaultHidden.
type Config struct {
	Layers int
	Hidden int
	Env    *Env
	Logger logger.Logger
}

// Generator drives a primary Policy over a Vocabulary.
type Generator struct {
	voc   Vocabulary
	net   Policy
	init  Initializer
	env   *Env
	log   logger.Logger
	goID  int
	eosID int
}

// New resolves the control tokens and returns a Generator. A vocabulary
// without GO or EOS is rejected with ErrVocabulary.
func New(voc Vocabulary, net Policy, cfg Config) (*Generator, error) {
	if voc == nil || net == nil {
		return nil, fmt.Errorf("generator: vocabulary and policy are required")
	}
	goID, ok := voc.IndexOf(goToken)
	if !ok {
		return nil, fmt.Errorf("generator: %w: %s", ErrVocabulary, goToken)
	}
	eosID, ok := voc.IndexOf(eosToken)
	if !ok {
		return nil, fmt.Errorf("generator: %w: %s", ErrVocabulary, eosToken)
	}
	if voc.Size() <= 0 || voc.MaxLen() <= 0 {
		return nil, fmt.Errorf("generator: %w: vocabulary size %d, max_len %d", ErrShape, voc.Size(), voc.MaxLen())
	}

	in := Initializer{Layers: DefaultLayers, Hidden: DefaultHidden}
	if s, ok := net.(StateShaper); ok {
		in.Layers, in.Hidden = s.StateShape()
	}
	if cfg.Layers > 0 {
		in.Layers = cfg.Layers
	}
	if cfg.Hidden > 0 {
		in.Hidden = cfg.Hidden
	}
	env := cfg.Env
	if env == nil {
		env = NewEnv(DefaultDevice, time.Now().UnixNano())
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{
		voc:   voc,
		net:   net,
		init:  in,
		env:   env,
		log:   log,
		goID:  goID,
		eosID: eosID,
	}, nil
}

// WithEnv returns a shallow copy of g that draws from env.
func (g *Generator) WithEnv(env *Env) *Generator {
	c := *g
	c.env = env
	return &c
}

// Env returns the execution context used by g.
func (g *Generator) Env() *Env { return g.env }

// Initializer returns the state initializer of the primary network.
func (g *Generator) Initializer() Initializer { return g.init }

// GO and EOS return the resolved control token ids.
func (g *Generator) GO() int  { return g.goID }
func (g *Generator) EOS() int { return g.eosID }

// auxInit returns the initializer for an auxiliary network. Networks that
// know their own state shape get it; everything else uses the primary one.
func (g *Generator) auxInit(p Policy) Initializer {
	in := g.init
	if s, ok := p.(StateShaper); ok {
		in.Layers, in.Hidden = s.StateShape()
	}
	return in
}

// step runs one policy step and checks the returned shapes.
func (g *Generator) step(p Policy, x []int, st State) (tensor.Mat, State, error) {
	logits, next, err := p.Step(g.env, x, st)
	if err != nil {
		return tensor.Mat{}, State{}, err
	}
	if logits.R != len(x) || logits.C != g.voc.Size() {
		return tensor.Mat{}, State{}, fmt.Errorf("%w: logits [%d %d], want [%d %d]",
			ErrShape, logits.R, logits.C, len(x), g.voc.Size())
	}
	if !next.SameShape(st) {
		return tensor.Mat{}, State{}, fmt.Errorf("%w: state %s became %s", ErrShape, st, next)
	}
	return logits, next, nil
}

// track is one network following its own state trajectory.
type track struct {
	policy Policy
	state  State
}

func (g *Generator) newTrack(p Policy, in Initializer, batch int) (*track, error) {
	st, err := in.Init(g.env, batch, nil)
	if err != nil {
		return nil, err
	}
	return &track{policy: p, state: st}, nil
}

// probs advances the track by one step and returns softmax probabilities.
func (g *Generator) probs(tr *track, x []int) (tensor.Mat, error) {
	logits, next, err := g.step(tr.policy, x, tr.state)
	if err != nil {
		return tensor.Mat{}, err
	}
	tr.state = next
	tensor.SoftmaxRows(&logits)
	return logits, nil
}

// nextFunc returns the per-row distributions for the current tokens.
type nextFunc func(x []int) (tensor.Mat, error)

// decode is the loop shared by every sampler: draw one token per row,
// keep finished rows at EOS, write the column and stop once every row has
// finished. Columns after an early stop keep the pad value 0. It returns
// the buffer and the number of steps run.
func (g *Generator) decode(ctx context.Context, batch int, next nextFunc) (tensor.IntMat, int, error) {
	maxLen := g.voc.MaxLen()
	seqs := tensor.NewIntMat(batch, maxLen)
	x := make([]int, batch)
	for i := range x {
		x[i] = g.goID
	}
	term := newTermination(batch, g.eosID)

	steps := 0
	for t := 0; t < maxLen; t++ {
		if err := ctx.Err(); err != nil {
			return tensor.IntMat{}, steps, err
		}
		prob, err := next(x)
		if err != nil {
			return tensor.IntMat{}, steps, fmt.Errorf("step %d: %w", t, err)
		}
		for b := range x {
			tok, err := g.env.Sampler.Draw(prob.Row(b))
			if err != nil {
				return tensor.IntMat{}, steps, fmt.Errorf("step %d row %d: %w: %w", t, b, ErrNonFinite, err)
			}
			x[b] = tok
		}
		term.force(x)
		seqs.SetCol(t, x)
		steps++
		if term.record(x) {
			break
		}
	}
	return seqs, steps, nil
}

func validateBatch(batch int) error {
	if batch <= 0 {
		return fmt.Errorf("%w: batch size %d", ErrShape, batch)
	}
	return nil
}

func validateEpsilon(epsilon float64) error {
	if math.IsNaN(epsilon) || epsilon < 0 || epsilon > 1 {
		return fmt.Errorf("%w: epsilon %v outside [0,1]", ErrShape, epsilon)
	}
	return nil
}
