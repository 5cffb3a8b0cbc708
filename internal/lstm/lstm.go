// Package lstm is the pure-Go recurrent policy used by the generator: a
// token embedding, a stacked LSTM and a linear projection to vocabulary
// logits. Weights load from and save to safetensors files using the tensor
// names of the PyTorch module they were trained with.
package lstm

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/safetensors"
	"github.com/samcharles93/drugex/internal/tensor"
)

const (
	DefaultEmbed  = 128
	DefaultHidden = generator.DefaultHidden
	DefaultLayers = generator.DefaultLayers
)

// Config holds the network dimensions. Zero Embed, Hidden or Layers select
// the defaults; Vocab is required.
type Config struct {
	Vocab  int
	Embed  int
	Hidden int
	Layers int
}

func (c Config) withDefaults() Config {
	if c.Embed <= 0 {
		c.Embed = DefaultEmbed
	}
	if c.Hidden <= 0 {
		c.Hidden = DefaultHidden
	}
	if c.Layers <= 0 {
		c.Layers = DefaultLayers
	}
	return c
}

// layer holds one LSTM layer. Gate rows are ordered input, forget, cell,
// output, each Hidden rows tall.
type layer struct {
	wih, whh tensor.Mat // [4H x in], [4H x H]
	bias     []float32  // bias_ih + bias_hh
	bih, bhh []float32  // kept separately for Save
}

// Network implements generator.Policy and generator.StateShaper.
type Network struct {
	cfg    Config
	embed  tensor.Mat // [V x E]
	layers []layer
	out    tensor.Mat // [V x H]
	outB   []float32
}

var (
	_ generator.Policy      = (*Network)(nil)
	_ generator.StateShaper = (*Network)(nil)
)

// New returns a randomly initialised network. LSTM and projection weights
// are uniform in (-1/sqrt(H), 1/sqrt(H)); embeddings are standard normal.
func New(cfg Config, seed int64) (*Network, error) {
	cfg = cfg.withDefaults()
	if cfg.Vocab <= 0 {
		return nil, fmt.Errorf("lstm: vocabulary size %d", cfg.Vocab)
	}
	rng := rand.New(rand.NewSource(seed))
	scale := float32(1 / math.Sqrt(float64(cfg.Hidden)))

	n := &Network{cfg: cfg, embed: tensor.NewMat(cfg.Vocab, cfg.Embed)}
	for i := range n.embed.Data {
		n.embed.Data[i] = float32(rng.NormFloat64())
	}
	in := cfg.Embed
	for range cfg.Layers {
		l := layer{
			wih: tensor.NewMat(4*cfg.Hidden, in),
			whh: tensor.NewMat(4*cfg.Hidden, cfg.Hidden),
			bih: make([]float32, 4*cfg.Hidden),
			bhh: make([]float32, 4*cfg.Hidden),
		}
		tensor.FillRandFrom(l.wih.Data, rng, scale)
		tensor.FillRandFrom(l.whh.Data, rng, scale)
		tensor.FillRandFrom(l.bih, rng, scale)
		tensor.FillRandFrom(l.bhh, rng, scale)
		l.bias = sumBias(l.bih, l.bhh)
		n.layers = append(n.layers, l)
		in = cfg.Hidden
	}
	n.out = tensor.NewMat(cfg.Vocab, cfg.Hidden)
	n.outB = make([]float32, cfg.Vocab)
	tensor.FillRandFrom(n.out.Data, rng, scale)
	tensor.FillRandFrom(n.outB, rng, scale)
	return n, nil
}

// Config returns the resolved dimensions.
func (n *Network) Config() Config { return n.cfg }

// StateShape implements generator.StateShaper.
func (n *Network) StateShape() (int, int) { return n.cfg.Layers, n.cfg.Hidden }

// Step implements generator.Policy. The input state is not modified.
func (n *Network) Step(_ *generator.Env, x []int, st generator.State) (tensor.Mat, generator.State, error) {
	batch := len(x)
	h := n.cfg.Hidden
	if st.H.L != n.cfg.Layers || st.H.R != batch || st.H.C != h || !st.H.SameShape(st.C) {
		return tensor.Mat{}, generator.State{}, fmt.Errorf("lstm: %w: state %s for %d layers, batch %d, hidden %d",
			generator.ErrShape, st, n.cfg.Layers, batch, h)
	}
	for b, tok := range x {
		if tok < 0 || tok >= n.cfg.Vocab {
			return tensor.Mat{}, generator.State{}, fmt.Errorf("lstm: %w: %d in row %d", generator.ErrToken, tok, b)
		}
	}

	next := generator.State{H: st.H.Clone(), C: st.C.Clone()}
	logits := tensor.NewMat(batch, n.cfg.Vocab)
	gates := make([]float32, 4*h)
	scratch := make([]float32, 4*h)

	for b, tok := range x {
		input := n.embed.Row(tok)
		for l := range n.layers {
			hl, cl := next.H.Layer(l), next.C.Layer(l)
			hRow, cRow := hl.Row(b), cl.Row(b)
			n.layers[l].gates(gates, scratch, input, hRow)
			cellUpdate(hRow, cRow, gates)
			input = hRow
		}
		row := logits.Row(b)
		tensor.MatVec(row, &n.out, input)
		tensor.Add(row, n.outB)
	}
	return logits, next, nil
}

// gates computes W_ih x + W_hh h + b into dst.
func (l *layer) gates(dst, scratch, x, h []float32) {
	tensor.MatVec(dst, &l.wih, x)
	tensor.MatVecAdd(dst, &l.whh, h, scratch)
	tensor.Add(dst, l.bias)
}

// cellUpdate applies the LSTM cell in place on one row of h and c.
func cellUpdate(h, c, gates []float32) {
	hidden := len(h)
	i := gates[0:hidden]
	f := gates[hidden : 2*hidden]
	g := gates[2*hidden : 3*hidden]
	o := gates[3*hidden : 4*hidden]
	for j := range h {
		c[j] = tensor.Sigmoid(f[j])*c[j] + tensor.Sigmoid(i[j])*tensor.Tanh(g[j])
		h[j] = tensor.Sigmoid(o[j]) * tensor.Tanh(c[j])
	}
}

func sumBias(a, b []float32) []float32 {
	out := make([]float32, len(a))
	copy(out, a)
	tensor.Add(out, b)
	return out
}

// Load reads a network from a safetensors file. Dimensions are inferred from
// the tensor shapes: vocabulary and embedding from embed.weight, hidden size
// from rnn.weight_hh_l0 and the layer count from consecutive rnn layers.
func Load(path string) (*Network, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lstm: open %s: %w", path, err)
	}
	embed, err := f.ReadMat(embedWeight)
	if err != nil {
		return nil, fmt.Errorf("lstm: %w", err)
	}
	cfg := Config{Vocab: embed.R, Embed: embed.C}

	n := &Network{embed: embed}
	in := cfg.Embed
	for k := 0; ; k++ {
		if _, ok := f.Tensor(weightIH(k)); !ok {
			break
		}
		l, hidden, err := loadLayer(f, k, in)
		if err != nil {
			return nil, fmt.Errorf("lstm: %w", err)
		}
		if k == 0 {
			cfg.Hidden = hidden
		} else if hidden != cfg.Hidden {
			return nil, fmt.Errorf("lstm: layer %d hidden size %d, layer 0 has %d", k, hidden, cfg.Hidden)
		}
		n.layers = append(n.layers, l)
		in = hidden
	}
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("lstm: %s has no %s", path, weightIH(0))
	}
	cfg.Layers = len(n.layers)

	if n.out, err = f.ReadMat(linearWeight); err != nil {
		return nil, fmt.Errorf("lstm: %w", err)
	}
	if n.out.R != cfg.Vocab || n.out.C != cfg.Hidden {
		return nil, fmt.Errorf("lstm: %s shape [%d %d], want [%d %d]", linearWeight, n.out.R, n.out.C, cfg.Vocab, cfg.Hidden)
	}
	if n.outB, err = readVector(f, linearBias, cfg.Vocab); err != nil {
		return nil, fmt.Errorf("lstm: %w", err)
	}
	n.cfg = cfg
	return n, nil
}

func loadLayer(f *safetensors.File, k, in int) (layer, int, error) {
	var (
		l   layer
		err error
	)
	if l.whh, err = f.ReadMat(weightHH(k)); err != nil {
		return layer{}, 0, err
	}
	hidden := l.whh.C
	if l.whh.R != 4*hidden {
		return layer{}, 0, fmt.Errorf("%s shape [%d %d], want [%d %d]", weightHH(k), l.whh.R, l.whh.C, 4*hidden, hidden)
	}
	if l.wih, err = f.ReadMat(weightIH(k)); err != nil {
		return layer{}, 0, err
	}
	if l.wih.R != 4*hidden || l.wih.C != in {
		return layer{}, 0, fmt.Errorf("%s shape [%d %d], want [%d %d]", weightIH(k), l.wih.R, l.wih.C, 4*hidden, in)
	}
	if l.bih, err = readVector(f, biasIH(k), 4*hidden); err != nil {
		return layer{}, 0, err
	}
	if l.bhh, err = readVector(f, biasHH(k), 4*hidden); err != nil {
		return layer{}, 0, err
	}
	l.bias = sumBias(l.bih, l.bhh)
	return l, hidden, nil
}

func readVector(f *safetensors.File, name string, n int) ([]float32, error) {
	data, info, err := f.ReadTensorF32(name)
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 1 || info.Shape[0] != n {
		return nil, fmt.Errorf("%s shape %v, want [%d]", name, info.Shape, n)
	}
	return data, nil
}

// Save writes the network as F32 safetensors with its dimensions in the
// metadata.
func (n *Network) Save(path string) error {
	ts := []safetensors.Tensor{
		{Name: embedWeight, Shape: []int{n.embed.R, n.embed.C}, Data: n.embed.Data},
		{Name: linearWeight, Shape: []int{n.out.R, n.out.C}, Data: n.out.Data},
		{Name: linearBias, Shape: []int{len(n.outB)}, Data: n.outB},
	}
	for k, l := range n.layers {
		ts = append(ts,
			safetensors.Tensor{Name: weightIH(k), Shape: []int{l.wih.R, l.wih.C}, Data: l.wih.Data},
			safetensors.Tensor{Name: weightHH(k), Shape: []int{l.whh.R, l.whh.C}, Data: l.whh.Data},
			safetensors.Tensor{Name: biasIH(k), Shape: []int{len(l.bih)}, Data: l.bih},
			safetensors.Tensor{Name: biasHH(k), Shape: []int{len(l.bhh)}, Data: l.bhh},
		)
	}
	meta := map[string]string{
		"vocab":  strconv.Itoa(n.cfg.Vocab),
		"embed":  strconv.Itoa(n.cfg.Embed),
		"hidden": strconv.Itoa(n.cfg.Hidden),
		"layers": strconv.Itoa(n.cfg.Layers),
	}
	if err := safetensors.Write(path, ts, meta); err != nil {
		return fmt.Errorf("lstm: save %s: %w", path, err)
	}
	return nil
}
