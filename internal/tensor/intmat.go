package tensor

// IntMat is a dense row-major matrix of token ids. Sequence buffers and
// target batches are [batch x seq_len] IntMats.
type IntMat struct {
	R, C int
	Data []int
}

// NewIntMat allocates a zeroed [r x c] matrix.
func NewIntMat(r, c int) IntMat {
	if r < 0 || c < 0 {
		panic("negative dimension for int matrix")
	}
	return IntMat{R: r, C: c, Data: make([]int, r*c)}
}

// IntMatFromRows copies equally sized rows into a new matrix.
func IntMatFromRows(rows [][]int) (IntMat, error) {
	if len(rows) == 0 {
		return IntMat{}, nil
	}
	c := len(rows[0])
	m := NewIntMat(len(rows), c)
	for i, row := range rows {
		if len(row) != c {
			return IntMat{}, errRaggedRows
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Row returns a view of row i.
func (m *IntMat) Row(i int) []int {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	return m.Data[i*m.C : (i+1)*m.C]
}

// At returns element [i, j].
func (m *IntMat) At(i, j int) int {
	return m.Row(i)[j]
}

// Col copies column j into dst, which must have length >= R.
func (m *IntMat) Col(dst []int, j int) {
	if j < 0 || j >= m.C {
		panic("column index out of range")
	}
	for i := 0; i < m.R; i++ {
		dst[i] = m.Data[i*m.C+j]
	}
}

// SetCol writes src into column j.
func (m *IntMat) SetCol(j int, src []int) {
	if j < 0 || j >= m.C {
		panic("column index out of range")
	}
	for i := 0; i < m.R; i++ {
		m.Data[i*m.C+j] = src[i]
	}
}

// Rows returns a copy of the matrix as a slice of rows.
func (m *IntMat) Rows() [][]int {
	out := make([][]int, m.R)
	for i := range out {
		out[i] = append([]int(nil), m.Row(i)...)
	}
	return out
}

var errRaggedRows = fmtError("rows have different lengths")
