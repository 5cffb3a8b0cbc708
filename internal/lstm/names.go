package lstm

import "fmt"

// Tensor names follow the PyTorch module layout of the exported generator
// (an nn.Embedding "embed", an nn.LSTM "rnn" and an nn.Linear "linear").
const (
	embedWeight  = "embed.weight"
	linearWeight = "linear.weight"
	linearBias   = "linear.bias"
)

func weightIH(layer int) string { return fmt.Sprintf("rnn.weight_ih_l%d", layer) }
func weightHH(layer int) string { return fmt.Sprintf("rnn.weight_hh_l%d", layer) }
func biasIH(layer int) string   { return fmt.Sprintf("rnn.bias_ih_l%d", layer) }
func biasHH(layer int) string   { return fmt.Sprintf("rnn.bias_hh_l%d", layer) }
