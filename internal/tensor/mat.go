package tensor

import (
	"math/rand"
)

// Mat represents a dense row‑major matrix of float32 values.
//
// R and C represent the number of rows and columns respectively.  Stride is the
// number of elements between the starts of two consecutive rows (for row‑major
// matrices this is equal to C).  Data holds the flattened matrix values.
//
// In the generator a Mat is used with one row per batch element, so logits,
// probabilities and likelihood scores are all [batch x N] matrices.
type Mat struct {
	R, C   int
	Stride int
	Data   []float32
}

// NewMat allocates a new matrix with the given number of rows and columns.
// The underlying slice is zero initialised.  The stride is set to the
// number of columns.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   make([]float32, r*c),
	}
}

// NewMatFromData creates a matrix from existing data.
// It checks that the data length matches r*c.
func NewMatFromData(r, c int, data []float32) (Mat, error) {
	if r < 0 || c < 0 {
		return Mat{}, errNegativeDim
	}
	if r*c != len(data) {
		return Mat{}, errDataSizeMismatch
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   data,
	}, nil
}

// Row returns a view of the i‑th row of the matrix as a slice.  The slice
// has length equal to the number of columns.  Modifications to the returned
// slice update the underlying matrix values.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// At returns the element at row i, column j.
func (m *Mat) At(i, j int) float32 {
	return m.Row(i)[j]
}

// Set stores v at row i, column j.
func (m *Mat) Set(i, j int, v float32) {
	m.Row(i)[j] = v
}

// Clone returns a deep copy with a compact stride.
func (m *Mat) Clone() Mat {
	out := NewMat(m.R, m.C)
	for i := 0; i < m.R; i++ {
		copy(out.Row(i), m.Row(i))
	}
	return out
}

// FillRand fills the matrix with reproducible pseudo‑random values in
// (-scale, scale).  The seed controls the random sequence; multiple calls with
// the same seed produce identical matrices.
func FillRand(m *Mat, seed int64, scale float32) {
	FillRandFrom(m.Data, rand.New(rand.NewSource(seed)), scale)
}

// FillRandFrom fills dst with values in (-scale, scale) drawn from rng.
func FillRandFrom(dst []float32, rng *rand.Rand, scale float32) {
	for i := range dst {
		dst[i] = (rng.Float32()*2 - 1) * scale
	}
}

// FillUniform fills dst with values drawn uniformly from [0,1).
func FillUniform(dst []float32, rng *rand.Rand) {
	for i := range dst {
		dst[i] = rng.Float32()
	}
}

var (
	errNegativeDim      = fmtError("negative dimension for tensor")
	errDataSizeMismatch = fmtError("data length mismatch")
)

type fmtError string

func (e fmtError) Error() string { return string(e) }
