package tensor

// Cube is a dense [L x R x C] tensor stored layer-major. Recurrent state uses
// it as [layers, batch, hidden]; Layer exposes one layer as a [batch x hidden]
// matrix view sharing the backing slice.
type Cube struct {
	L, R, C int
	Data    []float32
}

// NewCube allocates a zeroed cube.
func NewCube(l, r, c int) Cube {
	if l < 0 || r < 0 || c < 0 {
		panic("negative dimension for cube")
	}
	return Cube{L: l, R: r, C: c, Data: make([]float32, l*r*c)}
}

// Layer returns the l-th layer as a matrix view.
func (t *Cube) Layer(l int) Mat {
	if l < 0 || l >= t.L {
		panic("layer index out of range")
	}
	n := t.R * t.C
	return Mat{R: t.R, C: t.C, Stride: t.C, Data: t.Data[l*n : (l+1)*n]}
}

// At returns element [l, r, c].
func (t *Cube) At(l, r, c int) float32 {
	return t.Data[t.index(l, r, c)]
}

// Set stores v at [l, r, c].
func (t *Cube) Set(l, r, c int, v float32) {
	t.Data[t.index(l, r, c)] = v
}

// Clone returns a deep copy.
func (t *Cube) Clone() Cube {
	out := Cube{L: t.L, R: t.R, C: t.C, Data: make([]float32, len(t.Data))}
	copy(out.Data, t.Data)
	return out
}

// SameShape reports whether t and o have identical dimensions.
func (t *Cube) SameShape(o Cube) bool {
	return t.L == o.L && t.R == o.R && t.C == o.C
}

func (t *Cube) index(l, r, c int) int {
	if l < 0 || l >= t.L || r < 0 || r >= t.R || c < 0 || c >= t.C {
		panic("cube index out of range")
	}
	return (l*t.R+r)*t.C + c
}
